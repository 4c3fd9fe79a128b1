package badge

import "physiotrack/backend/internal/model"

type Metric string

const (
	MetricSessions Metric = "sessions"
	MetricPoints   Metric = "points"
)

type Milestone struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Metric    Metric `json:"metric"`
	Threshold int    `json:"threshold"`
}

type Badge struct {
	Milestone
	Progress int `json:"progress"`
}

// Milestones is ordered by metric, then threshold.
var Milestones = []Milestone{
	{ID: "first_session", Title: "First Step", Metric: MetricSessions, Threshold: 1},
	{ID: "sessions_5", Title: "Getting Into It", Metric: MetricSessions, Threshold: 5},
	{ID: "sessions_10", Title: "Consistent Mover", Metric: MetricSessions, Threshold: 10},
	{ID: "sessions_25", Title: "Dedicated", Metric: MetricSessions, Threshold: 25},
	{ID: "sessions_50", Title: "Half Century", Metric: MetricSessions, Threshold: 50},
	{ID: "sessions_100", Title: "Centurion", Metric: MetricSessions, Threshold: 100},
	{ID: "points_100", Title: "Point Collector", Metric: MetricPoints, Threshold: 100},
	{ID: "points_500", Title: "High Scorer", Metric: MetricPoints, Threshold: 500},
	{ID: "points_1000", Title: "Thousand Club", Metric: MetricPoints, Threshold: 1000},
}

func value(metric Metric, totals model.Totals) int {
	switch metric {
	case MetricPoints:
		return totals.Points
	default:
		return totals.Sessions
	}
}

// Evaluate returns every earned badge in table order.
func Evaluate(totals model.Totals) []Badge {
	earned := make([]Badge, 0, len(Milestones))
	for _, m := range Milestones {
		v := value(m.Metric, totals)
		if v >= m.Threshold {
			earned = append(earned, Badge{Milestone: m, Progress: v})
		}
	}
	return earned
}

// Next returns the closest unearned session milestone, or nil when all are earned.
func Next(totals model.Totals) *Badge {
	for _, m := range Milestones {
		if m.Metric != MetricSessions {
			continue
		}
		v := value(m.Metric, totals)
		if v < m.Threshold {
			return &Badge{Milestone: m, Progress: v}
		}
	}
	return nil
}
