package recommend

import (
	"context"
	"errors"

	"physiotrack/backend/internal/logging"
	"physiotrack/backend/internal/model"
)

var ErrNoSuggestion = errors.New("no exercises suggested")

type Suggestion struct {
	Name      string   `json:"name"`
	Exercises []string `json:"exercises"`
	Source    string   `json:"source"`
}

type Generator interface {
	Suggest(ctx context.Context, profile model.Profile) (Suggestion, error)
}

// Fallback tries Primary and uses Secondary when it errors or returns nothing.
type Fallback struct {
	Primary   Generator
	Secondary Generator
}

func (f Fallback) Suggest(ctx context.Context, profile model.Profile) (Suggestion, error) {
	suggestion, err := f.Primary.Suggest(ctx, profile)
	if err == nil && len(suggestion.Exercises) > 0 {
		return suggestion, nil
	}
	if err == nil {
		err = ErrNoSuggestion
	}
	logging.Logger.Warn("primary recommender failed, using fallback", "error", err)
	return f.Secondary.Suggest(ctx, profile)
}
