package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input    string
		expected Category
		wantErr  bool
	}{
		{"", CategoryMobility, false},
		{"strength", CategoryStrength, false},
		{"breathing", CategoryBreathing, false},
		{"yoga", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExerciseJSONUsesCategoryName(t *testing.T) {
	raw, err := json.Marshal(Exercise{ID: "e1", Name: "Squat", Category: CategoryStrength})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"category":"strength"`)

	var decoded Exercise
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Reach","category":"balance"}`), &decoded))
	assert.Equal(t, CategoryBalance, decoded.Category)

	err = json.Unmarshal([]byte(`{"name":"Reach","category":"unknown"}`), &decoded)
	assert.Error(t, err)
}

func TestParseBodyAreaAndLevel(t *testing.T) {
	area, err := ParseBodyArea("knee")
	require.NoError(t, err)
	assert.Equal(t, AreaKnee, area)

	_, err = ParseBodyArea("elbow")
	assert.Error(t, err)

	level, err := ParseFitnessLevel("advanced")
	require.NoError(t, err)
	assert.Equal(t, LevelAdvanced, level)

	level, err = ParseFitnessLevel("")
	require.NoError(t, err)
	assert.Equal(t, LevelBeginner, level)
}

func TestSessionCloneDoesNotShareExercises(t *testing.T) {
	original := Session{ID: "s1", Exercises: []Exercise{{ID: "a", Name: "A"}}}
	clone := original.Clone()
	clone.Exercises[0].Completed = true

	assert.False(t, original.Exercises[0].Completed)
}

func TestTemplateEstimatedMinutes(t *testing.T) {
	tmpl := SessionTemplate{Exercises: make([]Exercise, 3)}
	assert.Equal(t, 3*MinutesPerExercise, tmpl.EstimatedMinutes())
}
