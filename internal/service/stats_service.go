package service

import (
	"context"
	"errors"
	"time"

	"physiotrack/backend/internal/badge"
	apperrors "physiotrack/backend/internal/errors"
	"physiotrack/backend/internal/logging"
	"physiotrack/backend/internal/model"
	"physiotrack/backend/internal/repository"
)

const statsWeeks = 8

type StatsService struct {
	sessions    *SessionService
	sessionRepo *repository.SessionRepository
	painRepo    *repository.PainRepository
	now         func() time.Time
}

func NewStatsService(sessions *SessionService, sessionRepo *repository.SessionRepository, painRepo *repository.PainRepository) *StatsService {
	return &StatsService{
		sessions:    sessions,
		sessionRepo: sessionRepo,
		painRepo:    painRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type WeekCount struct {
	WeekStart time.Time `json:"weekStart"`
	Sessions  int       `json:"sessions"`
}

type StatsView struct {
	Totals        model.Totals        `json:"totals"`
	Badges        []badge.Badge       `json:"badges"`
	NextMilestone *badge.Badge        `json:"nextMilestone"`
	Weekly        []WeekCount         `json:"weekly"`
	Pain          []model.PainSummary `json:"pain"`
	LatestPain    *model.PainEntry    `json:"latestPain"`
}

func (s *StatsService) Get(ctx context.Context, userID string) (*StatsView, *apperrors.APIError) {
	totals, apiErr := s.sessions.Totals(ctx, userID)
	if apiErr != nil {
		return nil, apiErr
	}

	now := s.now()
	first := weekStart(now).AddDate(0, 0, -7*(statsWeeks-1))
	ended, err := s.sessionRepo.ListEndedSince(ctx, userID, first)
	if err != nil {
		logging.Logger.Error("list recent sessions", "user_id", userID, "error", err)
		return nil, apperrors.Internal("failed to load statistics")
	}

	summary, err := s.painRepo.Summary(ctx, userID)
	if err != nil {
		logging.Logger.Error("summarize pain entries", "user_id", userID, "error", err)
		return nil, apperrors.Internal("failed to load statistics")
	}

	latest, err := s.painRepo.Latest(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		logging.Logger.Error("latest pain entry", "user_id", userID, "error", err)
		return nil, apperrors.Internal("failed to load statistics")
	}

	return &StatsView{
		Totals:        totals,
		Badges:        badge.Evaluate(totals),
		NextMilestone: badge.Next(totals),
		Weekly:        weeklyCounts(now, ended, statsWeeks),
		Pain:          summary,
		LatestPain:    latest,
	}, nil
}

// weekStart returns Monday 00:00 UTC of the week containing t.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}

// weeklyCounts buckets ended timestamps into the last weeks weeks, oldest first.
func weeklyCounts(now time.Time, ended []time.Time, weeks int) []WeekCount {
	current := weekStart(now)
	counts := make([]WeekCount, weeks)
	for i := range counts {
		counts[i].WeekStart = current.AddDate(0, 0, -7*(weeks-1-i))
	}

	for _, at := range ended {
		start := weekStart(at)
		for i := range counts {
			if counts[i].WeekStart.Equal(start) {
				counts[i].Sessions++
				break
			}
		}
	}
	return counts
}
