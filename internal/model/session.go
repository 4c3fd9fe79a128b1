package model

import "time"

// Reward is the fixed number of points credited for a fully completed session.
const Reward = 10

// MinutesPerExercise drives the template duration estimate.
const MinutesPerExercise = 5

type Session struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Name         string     `json:"name,omitempty"`
	Exercises    []Exercise `json:"exercises"`
	Cursor       int        `json:"cursor"`
	StartedAt    time.Time  `json:"startedAt"`
	EndedAt      *time.Time `json:"endedAt,omitempty"`
	Completed    bool       `json:"completed"`
	PointsEarned int        `json:"pointsEarned"`
}

// Clone returns a deep copy so callers never share the exercise slice.
func (s Session) Clone() Session {
	out := s
	out.Exercises = append([]Exercise(nil), s.Exercises...)
	if s.EndedAt != nil {
		endedAt := *s.EndedAt
		out.EndedAt = &endedAt
	}
	return out
}

type SessionTemplate struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Name      string     `json:"name"`
	Exercises []Exercise `json:"exercises"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (t SessionTemplate) EstimatedMinutes() int {
	return len(t.Exercises) * MinutesPerExercise
}

type Totals struct {
	Sessions int `json:"sessions"`
	Points   int `json:"points"`
}
