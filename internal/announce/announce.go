// Package announce delivers fire-and-forget notifications for session life-cycle
// events. Nothing here can fail from the caller's point of view.
package announce

import (
	"time"

	"physiotrack/backend/internal/logging"
)

type Kind string

const (
	KindStart            Kind = "start"
	KindExerciseComplete Kind = "exercise_complete"
	KindSessionComplete  Kind = "session_complete"
	KindCancel           Kind = "cancel"
)

type Event struct {
	Kind      Kind      `json:"kind"`
	UserID    string    `json:"userId"`
	SessionID string    `json:"sessionId"`
	Exercise  string    `json:"exercise,omitempty"`
	Cursor    int       `json:"cursor"`
	Total     int       `json:"total"`
	Points    int       `json:"points,omitempty"`
	At        time.Time `json:"at"`
}

// Message renders the spoken form of an event.
func (e Event) Message() string {
	switch e.Kind {
	case KindStart:
		if e.Exercise != "" {
			return "Session started. First exercise: " + e.Exercise
		}
		return "Session started"
	case KindExerciseComplete:
		if e.Exercise != "" {
			return "Well done. Next up: " + e.Exercise
		}
		return "Well done. All exercises complete"
	case KindSessionComplete:
		return "Session complete. Great work"
	case KindCancel:
		return "Session cancelled"
	default:
		return string(e.Kind)
	}
}

type Sink interface {
	Announce(Event)
}

type LogSink struct{}

func (LogSink) Announce(e Event) {
	logging.Logger.Info("announcement",
		"kind", e.Kind,
		"user_id", e.UserID,
		"session_id", e.SessionID,
		"cursor", e.Cursor,
		"total", e.Total,
		"message", e.Message(),
	)
}

type Multi []Sink

func (m Multi) Announce(e Event) {
	for _, s := range m {
		s.Announce(e)
	}
}

// Discard drops every event.
type Discard struct{}

func (Discard) Announce(Event) {}
