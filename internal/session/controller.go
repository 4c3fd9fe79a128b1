// Package session owns the life cycle of a single user's exercise session:
// the exercise queue, the progress cursor, completion, cancellation and the
// point award that moves a finished session into history.
//
// A Controller is not safe for concurrent use. Callers serialize access per
// user; see service.SessionService.
package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"physiotrack/backend/internal/model"
)

var (
	ErrEmptySelection = errors.New("session requires at least one exercise")
	ErrSessionActive  = errors.New("a session is already in progress")
)

type Option func(*Controller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDGenerator replaces uuid.NewString for session and exercise ids.
func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

type Controller struct {
	userID string
	now    func() time.Time
	newID  func() string

	active  *model.Session
	history []model.Session
	totals  model.Totals
}

func NewController(userID string, opts ...Option) *Controller {
	c := &Controller{
		userID: userID,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Restore replaces the controller state with persisted data. active may be nil.
// A snapshot that violates the cursor invariant is dropped.
func (c *Controller) Restore(history []model.Session, totals model.Totals, active *model.Session) {
	c.history = make([]model.Session, 0, len(history))
	for _, s := range history {
		c.history = append(c.history, s.Clone())
	}
	c.totals = totals
	c.active = nil
	if active != nil && validProgress(*active) {
		restored := active.Clone()
		c.active = &restored
	}
}

// Start begins a new session over a copy of exercises. It never overwrites an
// active session.
func (c *Controller) Start(name string, exercises []model.Exercise) (model.Session, error) {
	if len(exercises) == 0 {
		return model.Session{}, ErrEmptySelection
	}
	if c.active != nil {
		return model.Session{}, ErrSessionActive
	}

	copied := make([]model.Exercise, len(exercises))
	for i, e := range exercises {
		copied[i] = e
		copied[i].ID = c.newID()
		copied[i].Completed = false
	}

	c.active = &model.Session{
		ID:        c.newID(),
		UserID:    c.userID,
		Name:      name,
		Exercises: copied,
		Cursor:    0,
		StartedAt: c.now(),
	}
	return c.active.Clone(), nil
}

// CompleteCurrentExercise marks the exercise at the cursor done and advances
// the cursor by one. It reports whether anything changed.
func (c *Controller) CompleteCurrentExercise() bool {
	if c.active == nil || c.active.Cursor >= len(c.active.Exercises) {
		return false
	}

	exercises := append([]model.Exercise(nil), c.active.Exercises...)
	done := exercises[c.active.Cursor]
	done.Completed = true
	exercises[c.active.Cursor] = done

	c.active.Exercises = exercises
	c.active.Cursor++
	return true
}

// IsCurrentExerciseCompleted reports whether the exercise at the cursor, the
// next one to perform, is done. Completing an exercise advances the cursor, so
// this stays false in every state the controller produces.
func (c *Controller) IsCurrentExerciseCompleted() bool {
	if c.active == nil || c.active.Cursor >= len(c.active.Exercises) {
		return false
	}
	return c.active.Exercises[c.active.Cursor].Completed
}

// CurrentExercise returns the exercise at the cursor.
func (c *Controller) CurrentExercise() (model.Exercise, bool) {
	if c.active == nil || c.active.Cursor >= len(c.active.Exercises) {
		return model.Exercise{}, false
	}
	return c.active.Exercises[c.active.Cursor], true
}

func (c *Controller) AreAllExercisesCompleted() bool {
	return c.active != nil && c.active.Cursor >= len(c.active.Exercises)
}

// CompleteSession finalizes the active session, awards model.Reward points and
// appends it to history. This is the only path that changes the totals.
func (c *Controller) CompleteSession() (model.Session, bool) {
	if c.active == nil {
		return model.Session{}, false
	}

	finished := c.active.Clone()
	endedAt := c.now()
	finished.EndedAt = &endedAt
	finished.Completed = true
	finished.PointsEarned = model.Reward

	c.history = append(c.history, finished)
	c.totals.Sessions++
	c.totals.Points += model.Reward
	c.active = nil

	return finished.Clone(), true
}

// CancelSession discards the active session without touching history or totals.
func (c *Controller) CancelSession() (model.Session, bool) {
	if c.active == nil {
		return model.Session{}, false
	}
	discarded := *c.active
	c.active = nil
	return discarded, true
}

func (c *Controller) ActiveSession() (model.Session, bool) {
	if c.active == nil {
		return model.Session{}, false
	}
	return c.active.Clone(), true
}

// Cursor is 0 when no session is active.
func (c *Controller) Cursor() int {
	if c.active == nil {
		return 0
	}
	return c.active.Cursor
}

// History returns completed sessions in completion order.
func (c *Controller) History() []model.Session {
	out := make([]model.Session, len(c.history))
	for i, s := range c.history {
		out[i] = s.Clone()
	}
	return out
}

func (c *Controller) Totals() model.Totals {
	return c.totals
}

func validProgress(s model.Session) bool {
	if len(s.Exercises) == 0 || s.Cursor < 0 || s.Cursor > len(s.Exercises) || s.Completed {
		return false
	}
	for i, e := range s.Exercises {
		if e.Completed != (i < s.Cursor) {
			return false
		}
	}
	return true
}
