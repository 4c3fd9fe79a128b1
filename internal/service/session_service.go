package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"physiotrack/backend/internal/announce"
	apperrors "physiotrack/backend/internal/errors"
	"physiotrack/backend/internal/logging"
	"physiotrack/backend/internal/model"
	"physiotrack/backend/internal/repository"
	"physiotrack/backend/internal/session"
	"physiotrack/backend/internal/snapshot"
)

const sideEffectTimeout = 5 * time.Second

type CompletedSessionStore interface {
	SaveCompletedSession(ctx context.Context, s model.Session) error
	ListCompletedSessions(ctx context.Context, userID string, limit int) ([]model.Session, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

type TemplateReader interface {
	Get(ctx context.Context, userID, id string) (*model.SessionTemplate, error)
}

type ExerciseInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type StartInput struct {
	Name       string
	TemplateID string
	Exercises  []ExerciseInput
}

type SessionStateView struct {
	Active                   *model.Session  `json:"active"`
	Cursor                   int             `json:"cursor"`
	CurrentExercise          *model.Exercise `json:"currentExercise,omitempty"`
	CurrentExerciseCompleted bool            `json:"currentExerciseCompleted"`
	AllExercisesCompleted    bool            `json:"allExercisesCompleted"`
	Totals                   model.Totals    `json:"totals"`
	Changed                  bool            `json:"changed"`
}

// SessionService keeps one session.Controller per user. Calls for the same
// user run one at a time; persistence, snapshots and announcements happen
// after the controller transition and never undo it.
type SessionService struct {
	sessions  CompletedSessionStore
	users     UserReader
	templates TemplateReader
	snapshots snapshot.Store
	sink      announce.Sink
	opts      []session.Option

	mu    sync.Mutex
	slots map[string]*controllerSlot
}

type controllerSlot struct {
	mu   sync.Mutex
	ctrl *session.Controller
}

func NewSessionService(
	sessions CompletedSessionStore,
	users UserReader,
	templates TemplateReader,
	snapshots snapshot.Store,
	sink announce.Sink,
	opts ...session.Option,
) *SessionService {
	if snapshots == nil {
		snapshots = snapshot.NewMemoryStore()
	}
	if sink == nil {
		sink = announce.Discard{}
	}
	return &SessionService{
		sessions:  sessions,
		users:     users,
		templates: templates,
		snapshots: snapshots,
		sink:      sink,
		opts:      opts,
		slots:     make(map[string]*controllerSlot),
	}
}

func (s *SessionService) GetState(ctx context.Context, userID string) (*SessionStateView, *apperrors.APIError) {
	var view SessionStateView
	apiErr := s.withController(ctx, userID, func(c *session.Controller) *apperrors.APIError {
		view = stateView(c, false)
		return nil
	})
	if apiErr != nil {
		return nil, apiErr
	}
	return &view, nil
}

func (s *SessionService) Start(ctx context.Context, userID string, input StartInput) (*SessionStateView, *apperrors.APIError) {
	name, exercises, apiErr := s.resolveSelection(ctx, userID, input)
	if apiErr != nil {
		return nil, apiErr
	}

	var view SessionStateView
	apiErr = s.withController(ctx, userID, func(c *session.Controller) *apperrors.APIError {
		started, err := c.Start(name, exercises)
		if errors.Is(err, session.ErrEmptySelection) {
			return apperrors.BadRequest(apperrors.CodeEmptySelection, "select at least one exercise")
		}
		if errors.Is(err, session.ErrSessionActive) {
			return apperrors.Conflict(apperrors.CodeSessionActive, "finish or cancel the current session first", map[string]interface{}{
				"state": stateView(c, false),
			})
		}
		if err != nil {
			return apperrors.Internal("failed to start session")
		}

		s.saveSnapshot(ctx, started)
		s.sink.Announce(announce.Event{
			Kind:      announce.KindStart,
			UserID:    userID,
			SessionID: started.ID,
			Exercise:  started.Exercises[0].Name,
			Cursor:    0,
			Total:     len(started.Exercises),
			At:        started.StartedAt,
		})
		logging.Logger.Info("session started", "user_id", userID, "session_id", started.ID, "exercises", len(started.Exercises))

		view = stateView(c, true)
		return nil
	})
	if apiErr != nil {
		return nil, apiErr
	}
	return &view, nil
}

func (s *SessionService) CompleteExercise(ctx context.Context, userID string) (*SessionStateView, *apperrors.APIError) {
	var view SessionStateView
	apiErr := s.withController(ctx, userID, func(c *session.Controller) *apperrors.APIError {
		changed := c.CompleteCurrentExercise()
		if changed {
			active, _ := c.ActiveSession()
			s.saveSnapshot(ctx, active)

			next := ""
			if current, ok := c.CurrentExercise(); ok {
				next = current.Name
			}
			s.sink.Announce(announce.Event{
				Kind:      announce.KindExerciseComplete,
				UserID:    userID,
				SessionID: active.ID,
				Exercise:  next,
				Cursor:    active.Cursor,
				Total:     len(active.Exercises),
				At:        time.Now().UTC(),
			})
		}
		view = stateView(c, changed)
		return nil
	})
	if apiErr != nil {
		return nil, apiErr
	}
	return &view, nil
}

func (s *SessionService) Complete(ctx context.Context, userID string) (*SessionStateView, *apperrors.APIError) {
	var view SessionStateView
	apiErr := s.withController(ctx, userID, func(c *session.Controller) *apperrors.APIError {
		finished, ok := c.CompleteSession()
		if ok {
			s.persistCompleted(ctx, finished)
			s.deleteSnapshot(ctx, userID)
			s.sink.Announce(announce.Event{
				Kind:      announce.KindSessionComplete,
				UserID:    userID,
				SessionID: finished.ID,
				Cursor:    finished.Cursor,
				Total:     len(finished.Exercises),
				Points:    finished.PointsEarned,
				At:        *finished.EndedAt,
			})
			logging.Logger.Info("session completed", "user_id", userID, "session_id", finished.ID, "points", finished.PointsEarned)
		}
		view = stateView(c, ok)
		return nil
	})
	if apiErr != nil {
		return nil, apiErr
	}
	return &view, nil
}

func (s *SessionService) Cancel(ctx context.Context, userID string) (*SessionStateView, *apperrors.APIError) {
	var view SessionStateView
	apiErr := s.withController(ctx, userID, func(c *session.Controller) *apperrors.APIError {
		discarded, ok := c.CancelSession()
		if ok {
			s.deleteSnapshot(ctx, userID)
			s.sink.Announce(announce.Event{
				Kind:      announce.KindCancel,
				UserID:    userID,
				SessionID: discarded.ID,
				Cursor:    discarded.Cursor,
				Total:     len(discarded.Exercises),
				At:        time.Now().UTC(),
			})
			logging.Logger.Info("session cancelled", "user_id", userID, "session_id", discarded.ID)
		}
		view = stateView(c, ok)
		return nil
	})
	if apiErr != nil {
		return nil, apiErr
	}
	return &view, nil
}

// GetHistory returns completed sessions newest first.
func (s *SessionService) GetHistory(ctx context.Context, userID string, limit int) ([]model.Session, *apperrors.APIError) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var out []model.Session
	apiErr := s.withController(ctx, userID, func(c *session.Controller) *apperrors.APIError {
		history := c.History()
		out = make([]model.Session, 0, min(limit, len(history)))
		for i := len(history) - 1; i >= 0 && len(out) < limit; i-- {
			out = append(out, history[i])
		}
		return nil
	})
	if apiErr != nil {
		return nil, apiErr
	}
	return out, nil
}

func (s *SessionService) Totals(ctx context.Context, userID string) (model.Totals, *apperrors.APIError) {
	var totals model.Totals
	apiErr := s.withController(ctx, userID, func(c *session.Controller) *apperrors.APIError {
		totals = c.Totals()
		return nil
	})
	return totals, apiErr
}

func (s *SessionService) withController(ctx context.Context, userID string, fn func(*session.Controller) *apperrors.APIError) *apperrors.APIError {
	if userID == "" {
		return apperrors.Unauthorized("")
	}

	s.mu.Lock()
	slot, ok := s.slots[userID]
	if !ok {
		slot = &controllerSlot{}
		s.slots[userID] = slot
	}
	s.mu.Unlock()

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.ctrl == nil {
		ctrl, err := s.hydrate(ctx, userID)
		if err != nil {
			logging.Logger.Error("load session state", "user_id", userID, "error", err)
			return apperrors.Internal("failed to load session state")
		}
		slot.ctrl = ctrl
	}
	return fn(slot.ctrl)
}

func (s *SessionService) hydrate(ctx context.Context, userID string) (*session.Controller, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	stored, err := s.sessions.ListCompletedSessions(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	history := make([]model.Session, len(stored))
	for i, sess := range stored {
		history[len(stored)-1-i] = sess
	}

	active, err := s.snapshots.Load(ctx, userID)
	if err != nil {
		if !errors.Is(err, snapshot.ErrNotFound) {
			logging.Logger.Warn("load active session snapshot", "user_id", userID, "error", err)
		}
		active = nil
	}

	ctrl := session.NewController(userID, s.opts...)
	ctrl.Restore(history, user.Totals(), active)
	if active != nil {
		if _, resumed := ctrl.ActiveSession(); resumed {
			logging.Logger.Info("resumed active session", "user_id", userID, "session_id", active.ID)
		}
	}
	return ctrl, nil
}

func (s *SessionService) resolveSelection(ctx context.Context, userID string, input StartInput) (string, []model.Exercise, *apperrors.APIError) {
	if input.TemplateID != "" {
		if len(input.Exercises) > 0 {
			return "", nil, apperrors.BadRequest(apperrors.CodeInvalidExercise, "provide either templateId or exercises, not both")
		}
		tmpl, err := s.templates.Get(ctx, userID, input.TemplateID)
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, apperrors.NotFound("template_not_found", "template not found")
		}
		if err != nil {
			logging.Logger.Error("load template", "user_id", userID, "template_id", input.TemplateID, "error", err)
			return "", nil, apperrors.Internal("failed to load template")
		}
		name := tmpl.Name
		if input.Name != "" {
			name = input.Name
		}
		return name, tmpl.Exercises, nil
	}

	exercises, apiErr := toExercises(input.Exercises)
	if apiErr != nil {
		return "", nil, apiErr
	}
	return strings.TrimSpace(input.Name), exercises, nil
}

func (s *SessionService) persistCompleted(ctx context.Context, finished model.Session) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := s.sessions.SaveCompletedSession(ctx, finished); err != nil {
		logging.Logger.Error("persist completed session", "user_id", finished.UserID, "session_id", finished.ID, "error", err)
	}
}

func (s *SessionService) saveSnapshot(ctx context.Context, active model.Session) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := s.snapshots.Save(ctx, active); err != nil {
		logging.Logger.Warn("save active session snapshot", "user_id", active.UserID, "error", err)
	}
}

func (s *SessionService) deleteSnapshot(ctx context.Context, userID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := s.snapshots.Delete(ctx, userID); err != nil {
		logging.Logger.Warn("delete active session snapshot", "user_id", userID, "error", err)
	}
}

func stateView(c *session.Controller, changed bool) SessionStateView {
	view := SessionStateView{
		Cursor:                   c.Cursor(),
		CurrentExerciseCompleted: c.IsCurrentExerciseCompleted(),
		AllExercisesCompleted:    c.AreAllExercisesCompleted(),
		Totals:                   c.Totals(),
		Changed:                  changed,
	}
	if active, ok := c.ActiveSession(); ok {
		view.Active = &active
	}
	if current, ok := c.CurrentExercise(); ok {
		view.CurrentExercise = &current
	}
	return view
}

func toExercises(inputs []ExerciseInput) ([]model.Exercise, *apperrors.APIError) {
	exercises := make([]model.Exercise, 0, len(inputs))
	for i, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, apperrors.BadRequest(apperrors.CodeInvalidExercise, "exercise name is required").WithDetails(map[string]int{"index": i})
		}
		category, err := model.ParseCategory(strings.ToLower(strings.TrimSpace(in.Category)))
		if err != nil {
			return nil, apperrors.BadRequest(apperrors.CodeInvalidExercise, err.Error()).WithDetails(map[string]int{"index": i})
		}
		exercises = append(exercises, model.Exercise{
			Name:        name,
			Description: strings.TrimSpace(in.Description),
			Category:    category,
		})
	}
	return exercises, nil
}
