package service

import (
	"context"
	"strings"

	apperrors "physiotrack/backend/internal/errors"
	"physiotrack/backend/internal/logging"
	"physiotrack/backend/internal/model"
	"physiotrack/backend/internal/recommend"
)

const maxGoalLength = 200

type RecommendationService struct {
	generator recommend.Generator
}

func NewRecommendationService(generator recommend.Generator) *RecommendationService {
	if generator == nil {
		generator = recommend.CatalogGenerator{}
	}
	return &RecommendationService{generator: generator}
}

type ProfileInput struct {
	Area  string `json:"area"`
	Level string `json:"level"`
	Goal  string `json:"goal"`
}

func (s *RecommendationService) Suggest(ctx context.Context, userID string, input ProfileInput) (*recommend.Suggestion, *apperrors.APIError) {
	area, err := model.ParseBodyArea(strings.ToLower(strings.TrimSpace(input.Area)))
	if err != nil {
		return nil, apperrors.BadRequest(apperrors.CodeInvalidProfile, err.Error())
	}
	level, err := model.ParseFitnessLevel(strings.ToLower(strings.TrimSpace(input.Level)))
	if err != nil {
		return nil, apperrors.BadRequest(apperrors.CodeInvalidProfile, err.Error())
	}
	goal := strings.TrimSpace(input.Goal)
	if len(goal) > maxGoalLength {
		return nil, apperrors.BadRequest(apperrors.CodeInvalidProfile, "goal is too long")
	}

	suggestion, err := s.generator.Suggest(ctx, model.Profile{Area: area, Level: level, Goal: goal})
	if err != nil {
		logging.Logger.Error("generate recommendation", "user_id", userID, "error", err)
		return nil, apperrors.BadGateway("recommendation_failed", "could not generate a recommendation")
	}
	return &suggestion, nil
}
