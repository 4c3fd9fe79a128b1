package session_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"physiotrack/backend/internal/model"
	"physiotrack/backend/internal/session"
)

func newTestController(t *testing.T) *session.Controller {
	t.Helper()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	next := 0
	return session.NewController("user-1",
		session.WithClock(func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Minute)
		}),
		session.WithIDGenerator(func() string {
			next++
			return fmt.Sprintf("id-%d", next)
		}),
	)
}

func exercises(names ...string) []model.Exercise {
	out := make([]model.Exercise, len(names))
	for i, name := range names {
		out[i] = model.Exercise{ID: "template-" + name, Name: name}
	}
	return out
}

func TestStartCreatesFreshSession(t *testing.T) {
	c := newTestController(t)
	input := exercises("A", "B")
	input[0].Completed = true

	s, err := c.Start("Morning", input)
	require.NoError(t, err)

	assert.Equal(t, "user-1", s.UserID)
	assert.Equal(t, "Morning", s.Name)
	assert.Equal(t, 0, s.Cursor)
	assert.Equal(t, 0, c.Cursor())
	assert.False(t, s.Completed)
	assert.Nil(t, s.EndedAt)
	assert.False(t, c.AreAllExercisesCompleted())
	for _, e := range s.Exercises {
		assert.False(t, e.Completed)
		assert.NotContains(t, e.ID, "template-")
	}
	assert.True(t, input[0].Completed, "caller slice must not be modified")
	assert.Empty(t, c.History())
	assert.Equal(t, model.Totals{}, c.Totals())
}

func TestStartRejectsEmptySelection(t *testing.T) {
	c := newTestController(t)

	_, err := c.Start("", nil)
	assert.ErrorIs(t, err, session.ErrEmptySelection)

	_, active := c.ActiveSession()
	assert.False(t, active)
}

func TestStartRejectsWhileActive(t *testing.T) {
	c := newTestController(t)
	first, err := c.Start("", exercises("A"))
	require.NoError(t, err)

	_, err = c.Start("", exercises("B", "C"))
	assert.ErrorIs(t, err, session.ErrSessionActive)

	active, ok := c.ActiveSession()
	require.True(t, ok)
	assert.Equal(t, first.ID, active.ID)
}

func TestCompleteCurrentExerciseNeverPassesEnd(t *testing.T) {
	c := newTestController(t)
	_, err := c.Start("", exercises("A", "B", "C"))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		c.CompleteCurrentExercise()
		assert.LessOrEqual(t, c.Cursor(), 3)
	}

	active, ok := c.ActiveSession()
	require.True(t, ok)
	assert.Equal(t, 3, active.Cursor)
	assert.True(t, c.AreAllExercisesCompleted())
	for _, e := range active.Exercises {
		assert.True(t, e.Completed)
	}
}

func TestProgressIsMonotonic(t *testing.T) {
	c := newTestController(t)
	_, err := c.Start("", exercises("A", "B", "C", "D"))
	require.NoError(t, err)

	for step := 1; step <= 4; step++ {
		require.True(t, c.CompleteCurrentExercise())
		active, _ := c.ActiveSession()
		for i, e := range active.Exercises {
			assert.Equal(t, i < step, e.Completed, "exercise %d after %d steps", i, step)
		}
	}
}

func TestCompleteCurrentExerciseIsIdempotentAtEnd(t *testing.T) {
	c := newTestController(t)
	_, err := c.Start("", exercises("A"))
	require.NoError(t, err)
	require.True(t, c.CompleteCurrentExercise())

	before, _ := c.ActiveSession()
	assert.False(t, c.CompleteCurrentExercise())
	after, _ := c.ActiveSession()

	assert.Equal(t, before, after)
	assert.Empty(t, c.History())
	assert.Equal(t, model.Totals{}, c.Totals())
}

func TestOperationsWithoutActiveSessionAreNoOps(t *testing.T) {
	c := newTestController(t)

	assert.False(t, c.CompleteCurrentExercise())
	assert.False(t, c.IsCurrentExerciseCompleted())
	assert.False(t, c.AreAllExercisesCompleted())
	_, completed := c.CompleteSession()
	assert.False(t, completed)
	_, cancelled := c.CancelSession()
	assert.False(t, cancelled)
	_, ok := c.CurrentExercise()
	assert.False(t, ok)

	assert.Equal(t, 0, c.Cursor())
	assert.Empty(t, c.History())
	assert.Equal(t, model.Totals{}, c.Totals())
}

func TestCurrentExerciseFollowsCursor(t *testing.T) {
	c := newTestController(t)
	_, err := c.Start("", exercises("A", "B"))
	require.NoError(t, err)

	current, ok := c.CurrentExercise()
	require.True(t, ok)
	assert.Equal(t, "A", current.Name)
	assert.False(t, c.IsCurrentExerciseCompleted())

	c.CompleteCurrentExercise()
	current, ok = c.CurrentExercise()
	require.True(t, ok)
	assert.Equal(t, "B", current.Name)
	assert.False(t, c.IsCurrentExerciseCompleted())

	c.CompleteCurrentExercise()
	_, ok = c.CurrentExercise()
	assert.False(t, ok)
}

func TestFullSessionScenario(t *testing.T) {
	c := newTestController(t)
	_, err := c.Start("", exercises("A", "B"))
	require.NoError(t, err)

	c.CompleteCurrentExercise()
	active, _ := c.ActiveSession()
	assert.True(t, active.Exercises[0].Completed)
	assert.Equal(t, 1, c.Cursor())

	c.CompleteCurrentExercise()
	assert.Equal(t, 2, c.Cursor())
	assert.True(t, c.AreAllExercisesCompleted())

	finished, ok := c.CompleteSession()
	require.True(t, ok)
	assert.True(t, finished.Completed)
	require.NotNil(t, finished.EndedAt)
	assert.True(t, finished.EndedAt.After(finished.StartedAt))
	assert.Equal(t, model.Reward, finished.PointsEarned)

	assert.Len(t, c.History(), 1)
	assert.Equal(t, model.Totals{Sessions: 1, Points: 10}, c.Totals())
	_, stillActive := c.ActiveSession()
	assert.False(t, stillActive)
	assert.Equal(t, 0, c.Cursor())
}

func TestCompleteSessionBeforeAllExercisesDone(t *testing.T) {
	c := newTestController(t)
	_, err := c.Start("", exercises("A", "B", "C"))
	require.NoError(t, err)
	c.CompleteCurrentExercise()

	finished, ok := c.CompleteSession()
	require.True(t, ok)
	assert.Equal(t, 1, finished.Cursor)
	assert.Equal(t, model.Totals{Sessions: 1, Points: model.Reward}, c.Totals())
}

func TestCancelLeavesHistoryAndTotals(t *testing.T) {
	for cursor := 0; cursor <= 2; cursor++ {
		t.Run(fmt.Sprintf("cursor %d", cursor), func(t *testing.T) {
			c := newTestController(t)
			c.Restore([]model.Session{{ID: "old", Completed: true, PointsEarned: 10}}, model.Totals{Sessions: 1, Points: 10}, nil)

			_, err := c.Start("", exercises("A", "B"))
			require.NoError(t, err)
			for i := 0; i < cursor; i++ {
				c.CompleteCurrentExercise()
			}

			_, ok := c.CancelSession()
			require.True(t, ok)
			assert.Len(t, c.History(), 1)
			assert.Equal(t, model.Totals{Sessions: 1, Points: 10}, c.Totals())
			assert.Equal(t, 0, c.Cursor())
			_, active := c.ActiveSession()
			assert.False(t, active)
		})
	}
}

func TestCancelScenario(t *testing.T) {
	c := newTestController(t)
	_, err := c.Start("", exercises("A"))
	require.NoError(t, err)

	c.CancelSession()

	assert.Empty(t, c.History())
	assert.Equal(t, model.Totals{}, c.Totals())
}

func TestNewSessionAllowedAfterCompleteOrCancel(t *testing.T) {
	c := newTestController(t)
	_, err := c.Start("", exercises("A"))
	require.NoError(t, err)
	c.CompleteSession()

	_, err = c.Start("", exercises("B"))
	require.NoError(t, err)
	c.CancelSession()

	_, err = c.Start("", exercises("C"))
	assert.NoError(t, err)
}

func TestHistoryKeepsCompletionOrder(t *testing.T) {
	c := newTestController(t)
	for _, name := range []string{"first", "second", "third"} {
		_, err := c.Start(name, exercises("A"))
		require.NoError(t, err)
		c.CompleteCurrentExercise()
		c.CompleteSession()
	}

	history := c.History()
	require.Len(t, history, 3)
	assert.Equal(t, "first", history[0].Name)
	assert.Equal(t, "third", history[2].Name)
	assert.Equal(t, model.Totals{Sessions: 3, Points: 30}, c.Totals())
}

func TestAccessorsReturnCopies(t *testing.T) {
	c := newTestController(t)
	_, err := c.Start("", exercises("A"))
	require.NoError(t, err)

	active, _ := c.ActiveSession()
	active.Exercises[0].Completed = true
	active.Cursor = 1

	assert.Equal(t, 0, c.Cursor())
	assert.False(t, c.AreAllExercisesCompleted())
}

func TestRestoreDropsInconsistentSnapshot(t *testing.T) {
	c := newTestController(t)
	broken := model.Session{
		ID:        "s",
		Exercises: []model.Exercise{{Name: "A", Completed: false}, {Name: "B", Completed: true}},
		Cursor:    1,
	}
	c.Restore(nil, model.Totals{}, &broken)

	_, ok := c.ActiveSession()
	assert.False(t, ok)
}

func TestRestoreResumesSnapshot(t *testing.T) {
	c := newTestController(t)
	snapshot := model.Session{
		ID:        "s",
		Exercises: []model.Exercise{{Name: "A", Completed: true}, {Name: "B"}},
		Cursor:    1,
	}
	c.Restore(nil, model.Totals{Sessions: 4, Points: 40}, &snapshot)

	current, ok := c.CurrentExercise()
	require.True(t, ok)
	assert.Equal(t, "B", current.Name)

	c.CompleteCurrentExercise()
	c.CompleteSession()
	assert.Equal(t, model.Totals{Sessions: 5, Points: 50}, c.Totals())
}
