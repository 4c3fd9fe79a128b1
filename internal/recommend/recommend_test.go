package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"physiotrack/backend/internal/model"
)

func TestParseSuggestion(t *testing.T) {
	text := `Here is a plan for you.
**Name:** Knee Recovery Basics
1. Quad Set - hold for 5 seconds
2) Straight Leg Raise: 3 sets of 10
- Heel Slide (both legs)
* quad set
• Mini Squat
Remember to stop if pain increases.`

	got := ParseSuggestion(text)

	assert.Equal(t, "Knee Recovery Basics", got.Name)
	assert.Equal(t, []string{"Quad Set", "Straight Leg Raise", "Heel Slide", "Mini Squat"}, got.Exercises)
}

func TestParseSuggestionWithoutTitle(t *testing.T) {
	got := ParseSuggestion("- Chin Tuck\n- Neck Side Bend")
	assert.Equal(t, defaultProgramName, got.Name)
	assert.Len(t, got.Exercises, 2)
}

func TestParseSuggestionIgnoresProse(t *testing.T) {
	got := ParseSuggestion("I cannot help with that.\n2024 was a good year")
	assert.Empty(t, got.Exercises)
}

func TestCatalogGeneratorScalesWithLevel(t *testing.T) {
	ctx := context.Background()
	beginner, err := CatalogGenerator{}.Suggest(ctx, model.Profile{Area: model.AreaKnee, Level: model.LevelBeginner})
	require.NoError(t, err)
	advanced, err := CatalogGenerator{}.Suggest(ctx, model.Profile{Area: model.AreaKnee, Level: model.LevelAdvanced})
	require.NoError(t, err)

	assert.Len(t, beginner.Exercises, 3)
	assert.Len(t, advanced.Exercises, 5)
	assert.Equal(t, "Beginner Knee Program", beginner.Name)
	assert.Equal(t, "catalog", beginner.Source)
}

func TestLLMGeneratorParsesReply(t *testing.T) {
	var received chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "Program: Shoulder Reset\n- Pendulum Swing\n- Wall Slide"}},
			},
		})
	}))
	defer server.Close()

	gen := NewLLMGenerator(LLMConfig{URL: server.URL, APIKey: "secret", Model: "test-model"})
	got, err := gen.Suggest(context.Background(), model.Profile{Area: model.AreaShoulder, Goal: "reach overhead"})
	require.NoError(t, err)

	assert.Equal(t, "Shoulder Reset", got.Name)
	assert.Equal(t, []string{"Pendulum Swing", "Wall Slide"}, got.Exercises)
	assert.Equal(t, "llm", got.Source)
	assert.Equal(t, "test-model", received.Model)
	require.Len(t, received.Messages, 2)
	assert.Contains(t, received.Messages[1].Content, "shoulder")
	assert.Contains(t, received.Messages[1].Content, "reach overhead")
}

func TestLLMGeneratorRejectsBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewLLMGenerator(LLMConfig{URL: server.URL}).Suggest(context.Background(), model.Profile{})
	assert.Error(t, err)
}

type stubGenerator struct {
	suggestion Suggestion
	err        error
}

func (s stubGenerator) Suggest(context.Context, model.Profile) (Suggestion, error) {
	return s.suggestion, s.err
}

func TestFallback(t *testing.T) {
	ctx := context.Background()
	secondary := stubGenerator{suggestion: Suggestion{Name: "backup", Exercises: []string{"A"}}}

	got, err := Fallback{Primary: stubGenerator{err: errors.New("down")}, Secondary: secondary}.Suggest(ctx, model.Profile{})
	require.NoError(t, err)
	assert.Equal(t, "backup", got.Name)

	got, err = Fallback{Primary: stubGenerator{suggestion: Suggestion{Name: "empty"}}, Secondary: secondary}.Suggest(ctx, model.Profile{})
	require.NoError(t, err)
	assert.Equal(t, "backup", got.Name)

	got, err = Fallback{Primary: stubGenerator{suggestion: Suggestion{Name: "main", Exercises: []string{"B"}}}, Secondary: secondary}.Suggest(ctx, model.Profile{})
	require.NoError(t, err)
	assert.Equal(t, "main", got.Name)
}
