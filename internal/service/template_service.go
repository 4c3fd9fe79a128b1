package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "physiotrack/backend/internal/errors"
	"physiotrack/backend/internal/logging"
	"physiotrack/backend/internal/model"
	"physiotrack/backend/internal/repository"
)

const maxTemplateNameLength = 120

type TemplateService struct {
	repo *repository.TemplateRepository
}

func NewTemplateService(repo *repository.TemplateRepository) *TemplateService {
	return &TemplateService{repo: repo}
}

type TemplateView struct {
	model.SessionTemplate
	EstimatedMinutes int `json:"estimatedMinutes"`
}

func newTemplateView(tmpl model.SessionTemplate) TemplateView {
	return TemplateView{SessionTemplate: tmpl, EstimatedMinutes: tmpl.EstimatedMinutes()}
}

func (s *TemplateService) Create(ctx context.Context, userID, name string, inputs []ExerciseInput) (*TemplateView, *apperrors.APIError) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.BadRequest(apperrors.CodeInvalidTemplate, "template name is required")
	}
	if len(name) > maxTemplateNameLength {
		return nil, apperrors.BadRequest(apperrors.CodeInvalidTemplate, "template name is too long")
	}
	if len(inputs) == 0 {
		return nil, apperrors.BadRequest(apperrors.CodeEmptySelection, "select at least one exercise")
	}

	exercises, apiErr := toExercises(inputs)
	if apiErr != nil {
		return nil, apiErr
	}
	for i := range exercises {
		exercises[i].ID = uuid.NewString()
	}

	tmpl := model.SessionTemplate{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Exercises: exercises,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, &tmpl); err != nil {
		logging.Logger.Error("create template", "user_id", userID, "error", err)
		return nil, apperrors.Internal("failed to save template")
	}

	view := newTemplateView(tmpl)
	return &view, nil
}

func (s *TemplateService) List(ctx context.Context, userID string) ([]TemplateView, *apperrors.APIError) {
	templates, err := s.repo.List(ctx, userID)
	if err != nil {
		logging.Logger.Error("list templates", "user_id", userID, "error", err)
		return nil, apperrors.Internal("failed to list templates")
	}

	views := make([]TemplateView, 0, len(templates))
	for _, tmpl := range templates {
		views = append(views, newTemplateView(tmpl))
	}
	return views, nil
}

func (s *TemplateService) Get(ctx context.Context, userID, id string) (*TemplateView, *apperrors.APIError) {
	tmpl, err := s.repo.Get(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("template_not_found", "template not found")
	}
	if err != nil {
		logging.Logger.Error("get template", "user_id", userID, "template_id", id, "error", err)
		return nil, apperrors.Internal("failed to load template")
	}

	view := newTemplateView(*tmpl)
	return &view, nil
}

func (s *TemplateService) Delete(ctx context.Context, userID, id string) *apperrors.APIError {
	err := s.repo.Delete(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("template_not_found", "template not found")
	}
	if err != nil {
		logging.Logger.Error("delete template", "user_id", userID, "template_id", id, "error", err)
		return apperrors.Internal("failed to delete template")
	}
	return nil
}
