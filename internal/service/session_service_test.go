package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"physiotrack/backend/internal/announce"
	apperrors "physiotrack/backend/internal/errors"
	"physiotrack/backend/internal/model"
	"physiotrack/backend/internal/repository"
	"physiotrack/backend/internal/snapshot"
)

type fakeSessionStore struct {
	mu      sync.Mutex
	saved   []model.Session
	stored  []model.Session
	saveErr error
}

func (f *fakeSessionStore) SaveCompletedSession(_ context.Context, s model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, s)
	return nil
}

func (f *fakeSessionStore) ListCompletedSessions(context.Context, string, int) ([]model.Session, error) {
	return f.stored, nil
}

type fakeUsers struct {
	totals model.Totals
	err    error
}

func (f fakeUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.User{ID: id, TotalSessions: f.totals.Sessions, TotalPoints: f.totals.Points}, nil
}

type fakeTemplates map[string]model.SessionTemplate

func (f fakeTemplates) Get(_ context.Context, _, id string) (*model.SessionTemplate, error) {
	tmpl, ok := f[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &tmpl, nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []announce.Event
}

func (r *recordingSink) Announce(e announce.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingSink) kinds() []announce.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]announce.Kind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

type failingSnapshots struct{}

func (failingSnapshots) Save(context.Context, model.Session) error { return errors.New("down") }
func (failingSnapshots) Load(context.Context, string) (*model.Session, error) {
	return nil, errors.New("down")
}
func (failingSnapshots) Delete(context.Context, string) error { return errors.New("down") }

func selection(names ...string) StartInput {
	in := StartInput{}
	for _, n := range names {
		in.Exercises = append(in.Exercises, ExerciseInput{Name: n})
	}
	return in
}

func TestSessionServiceFlowAnnouncesAndPersists(t *testing.T) {
	store := &fakeSessionStore{}
	snapshots := snapshot.NewMemoryStore()
	sink := &recordingSink{}
	svc := NewSessionService(store, fakeUsers{}, fakeTemplates{}, snapshots, sink)
	ctx := context.Background()

	started, apiErr := svc.Start(ctx, "u1", selection("Bridge", "Clamshell"))
	require.Nil(t, apiErr)
	assert.True(t, started.Changed)

	saved, err := snapshots.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, started.Active.ID, saved.ID)

	_, apiErr = svc.CompleteExercise(ctx, "u1")
	require.Nil(t, apiErr)
	saved, err = snapshots.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Cursor)

	done, apiErr := svc.Complete(ctx, "u1")
	require.Nil(t, apiErr)
	assert.Equal(t, model.Totals{Sessions: 1, Points: model.Reward}, done.Totals)

	require.Len(t, store.saved, 1)
	assert.True(t, store.saved[0].Completed)
	_, err = snapshots.Load(ctx, "u1")
	assert.ErrorIs(t, err, snapshot.ErrNotFound)

	assert.Equal(t, []announce.Kind{
		announce.KindStart,
		announce.KindExerciseComplete,
		announce.KindSessionComplete,
	}, sink.kinds())
}

func TestSessionServiceSideEffectFailuresKeepCoreState(t *testing.T) {
	store := &fakeSessionStore{saveErr: errors.New("disk full")}
	svc := NewSessionService(store, fakeUsers{}, fakeTemplates{}, failingSnapshots{}, nil)
	ctx := context.Background()

	_, apiErr := svc.Start(ctx, "u1", selection("Bridge"))
	require.Nil(t, apiErr)

	done, apiErr := svc.Complete(ctx, "u1")
	require.Nil(t, apiErr)
	assert.True(t, done.Changed)
	assert.Nil(t, done.Active)
	assert.Equal(t, 1, done.Totals.Sessions)

	history, apiErr := svc.GetHistory(ctx, "u1", 10)
	require.Nil(t, apiErr)
	assert.Len(t, history, 1)
}

func TestSessionServiceStartErrors(t *testing.T) {
	svc := NewSessionService(&fakeSessionStore{}, fakeUsers{}, fakeTemplates{}, nil, nil)
	ctx := context.Background()

	_, apiErr := svc.Start(ctx, "u1", StartInput{})
	require.NotNil(t, apiErr)
	assert.Equal(t, apperrors.CodeEmptySelection, apiErr.Code)

	_, apiErr = svc.Start(ctx, "u1", selection("Bridge", "  "))
	require.NotNil(t, apiErr)
	assert.Equal(t, apperrors.CodeInvalidExercise, apiErr.Code)

	_, apiErr = svc.Start(ctx, "u1", StartInput{Exercises: []ExerciseInput{{Name: "Bridge", Category: "yoga"}}})
	require.NotNil(t, apiErr)
	assert.Equal(t, apperrors.CodeInvalidExercise, apiErr.Code)

	_, apiErr = svc.Start(ctx, "u1", StartInput{TemplateID: "missing"})
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	_, apiErr = svc.Start(ctx, "u1", selection("Bridge"))
	require.Nil(t, apiErr)

	_, apiErr = svc.Start(ctx, "u1", selection("Clamshell"))
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, apperrors.CodeSessionActive, apiErr.Code)
}

func TestSessionServiceStartFromTemplate(t *testing.T) {
	templates := fakeTemplates{
		"t1": {ID: "t1", Name: "Knee rehab", Exercises: []model.Exercise{
			{ID: "e1", Name: "Quad Set", Category: model.CategoryStrength},
			{ID: "e2", Name: "Heel Slide"},
		}},
	}
	svc := NewSessionService(&fakeSessionStore{}, fakeUsers{}, templates, nil, nil)

	state, apiErr := svc.Start(context.Background(), "u1", StartInput{TemplateID: "t1"})
	require.Nil(t, apiErr)
	require.NotNil(t, state.Active)
	assert.Equal(t, "Knee rehab", state.Active.Name)
	require.Len(t, state.Active.Exercises, 2)
	assert.NotEqual(t, "e1", state.Active.Exercises[0].ID)
	assert.Equal(t, model.CategoryStrength, state.Active.Exercises[0].Category)
}

func TestSessionServiceHydratesFromStores(t *testing.T) {
	ended := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := &fakeSessionStore{stored: []model.Session{
		{ID: "newer", UserID: "u1", Completed: true, EndedAt: &ended, PointsEarned: model.Reward},
		{ID: "older", UserID: "u1", Completed: true, EndedAt: &ended, PointsEarned: model.Reward},
	}}
	snapshots := snapshot.NewMemoryStore()
	require.NoError(t, snapshots.Save(context.Background(), model.Session{
		ID:        "active",
		UserID:    "u1",
		Exercises: []model.Exercise{{ID: "a", Name: "Bridge", Completed: true}, {ID: "b", Name: "Clamshell"}},
		Cursor:    1,
	}))

	svc := NewSessionService(store, fakeUsers{totals: model.Totals{Sessions: 2, Points: 20}}, fakeTemplates{}, snapshots, nil)
	state, apiErr := svc.GetState(context.Background(), "u1")
	require.Nil(t, apiErr)
	require.NotNil(t, state.Active)
	assert.Equal(t, "active", state.Active.ID)
	assert.Equal(t, 1, state.Cursor)
	assert.Equal(t, model.Totals{Sessions: 2, Points: 20}, state.Totals)

	history, apiErr := svc.GetHistory(context.Background(), "u1", 10)
	require.Nil(t, apiErr)
	require.Len(t, history, 2)
	assert.Equal(t, "newer", history[0].ID)
}

func TestSessionServiceHydrationFailure(t *testing.T) {
	svc := NewSessionService(&fakeSessionStore{}, fakeUsers{err: errors.New("db closed")}, fakeTemplates{}, nil, nil)

	_, apiErr := svc.GetState(context.Background(), "u1")
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
}

func TestSessionServiceSerializesPerUser(t *testing.T) {
	store := &fakeSessionStore{}
	svc := NewSessionService(store, fakeUsers{}, fakeTemplates{}, nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Start(ctx, "u1", selection("Bridge"))
			_, _ = svc.Complete(ctx, "u1")
		}()
	}
	wg.Wait()

	totals, apiErr := svc.Totals(ctx, "u1")
	require.Nil(t, apiErr)
	history, _ := svc.GetHistory(ctx, "u1", 200)
	assert.Equal(t, len(history), totals.Sessions)
	assert.Equal(t, totals.Sessions*model.Reward, totals.Points)
	assert.Len(t, store.saved, totals.Sessions)
}

func TestWeeklyCounts(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) // Thursday
	ended := []time.Time{
		time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), // this Monday
		time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 11, 23, 59, 0, 0, time.UTC), // previous Sunday
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),     // outside the window
	}

	counts := weeklyCounts(now, ended, 4)
	require.Len(t, counts, 4)
	assert.Equal(t, time.Date(2026, 9, 21, 0, 0, 0, 0, time.UTC), counts[0].WeekStart)
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), counts[3].WeekStart)
	assert.Equal(t, 2, counts[3].Sessions)
	assert.Equal(t, 1, counts[2].Sessions)
	assert.Equal(t, 0, counts[0].Sessions)
}
