package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "physiotrack/backend/internal/errors"
	"physiotrack/backend/internal/logging"
	"physiotrack/backend/internal/model"
	"physiotrack/backend/internal/repository"
)

const maxPainNoteLength = 500

type PainService struct {
	repo *repository.PainRepository
}

func NewPainService(repo *repository.PainRepository) *PainService {
	return &PainService{repo: repo}
}

type PainInput struct {
	Level     *int    `json:"level"`
	Area      string  `json:"area"`
	Note      string  `json:"note"`
	SessionID *string `json:"sessionId"`
}

func (s *PainService) Record(ctx context.Context, userID string, input PainInput) (*model.PainEntry, *apperrors.APIError) {
	if input.Level == nil {
		return nil, apperrors.BadRequest(apperrors.CodeInvalidPain, "level is required")
	}
	level := *input.Level
	if level < model.MinPainLevel || level > model.MaxPainLevel {
		return nil, apperrors.BadRequest(apperrors.CodeInvalidPain, "level must be between 0 and 10")
	}

	area, err := model.ParseBodyArea(strings.ToLower(strings.TrimSpace(input.Area)))
	if err != nil {
		return nil, apperrors.BadRequest(apperrors.CodeInvalidPain, err.Error())
	}

	note := strings.TrimSpace(input.Note)
	if len(note) > maxPainNoteLength {
		return nil, apperrors.BadRequest(apperrors.CodeInvalidPain, "note is too long")
	}

	var sessionID *string
	if input.SessionID != nil && strings.TrimSpace(*input.SessionID) != "" {
		value := strings.TrimSpace(*input.SessionID)
		sessionID = &value
	}

	entry := model.PainEntry{
		ID:         uuid.NewString(),
		UserID:     userID,
		SessionID:  sessionID,
		Level:      level,
		Area:       area,
		Note:       note,
		RecordedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, &entry); err != nil {
		logging.Logger.Error("record pain entry", "user_id", userID, "error", err)
		return nil, apperrors.Internal("failed to record pain entry")
	}
	return &entry, nil
}

// List returns entries from the last days days, newest first.
func (s *PainService) List(ctx context.Context, userID string, days, limit int) ([]model.PainEntry, *apperrors.APIError) {
	if days <= 0 || days > 365 {
		days = 30
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	entries, err := s.repo.List(ctx, userID, since, limit)
	if err != nil {
		logging.Logger.Error("list pain entries", "user_id", userID, "error", err)
		return nil, apperrors.Internal("failed to list pain entries")
	}
	return entries, nil
}
