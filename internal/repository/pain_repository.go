package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"physiotrack/backend/internal/model"
)

const painColumns = `id, user_id, session_id, level, area, note, recorded_at`

type PainRepository struct {
	db *sql.DB
}

func NewPainRepository(db *sql.DB) *PainRepository {
	return &PainRepository{db: db}
}

func (r *PainRepository) Create(ctx context.Context, entry *model.PainEntry) error {
	var sessionID interface{}
	if entry.SessionID != nil {
		sessionID = *entry.SessionID
	}

	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO pain_entries (`+painColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.UserID,
		sessionID,
		entry.Level,
		entry.Area.String(),
		entry.Note,
		formatTime(entry.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("create pain entry: %w", err)
	}
	return nil
}

// List returns entries recorded at or after since, newest first.
func (r *PainRepository) List(ctx context.Context, userID string, since time.Time, limit int) ([]model.PainEntry, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+painColumns+`
		 FROM pain_entries
		 WHERE user_id = ? AND recorded_at >= ?
		 ORDER BY recorded_at DESC
		 LIMIT ?`,
		userID,
		formatTime(since),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list pain entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.PainEntry, 0, limit)
	for rows.Next() {
		entry, scanErr := scanPainEntry(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pain entries: %w", err)
	}
	return entries, nil
}

func (r *PainRepository) Latest(ctx context.Context, userID string) (*model.PainEntry, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+painColumns+` FROM pain_entries WHERE user_id = ? ORDER BY recorded_at DESC LIMIT 1`,
		userID,
	)
	return scanPainEntry(row)
}

// Summary aggregates entries per body area, in model.BodyAreas order.
func (r *PainRepository) Summary(ctx context.Context, userID string) ([]model.PainSummary, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT area, COUNT(1), AVG(level), MAX(level)
		 FROM pain_entries
		 WHERE user_id = ?
		 GROUP BY area`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("summarize pain entries: %w", err)
	}
	defer rows.Close()

	byArea := make(map[model.BodyArea]model.PainSummary)
	for rows.Next() {
		var rawArea string
		var summary model.PainSummary
		if err := rows.Scan(&rawArea, &summary.Count, &summary.Average, &summary.Max); err != nil {
			return nil, fmt.Errorf("scan pain summary: %w", err)
		}
		area, err := model.ParseBodyArea(rawArea)
		if err != nil {
			return nil, fmt.Errorf("parse pain summary area: %w", err)
		}
		summary.Area = area
		byArea[area] = summary
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pain summary: %w", err)
	}

	summaries := make([]model.PainSummary, 0, len(byArea))
	for _, area := range model.BodyAreas() {
		if summary, ok := byArea[area]; ok {
			summaries = append(summaries, summary)
		}
	}
	return summaries, nil
}

func scanPainEntry(s scanner) (*model.PainEntry, error) {
	var entry model.PainEntry
	var sessionID sql.NullString
	var rawArea string
	var recordedAt string
	err := s.Scan(
		&entry.ID,
		&entry.UserID,
		&sessionID,
		&entry.Level,
		&rawArea,
		&entry.Note,
		&recordedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan pain entry: %w", err)
	}

	if sessionID.Valid {
		value := sessionID.String
		entry.SessionID = &value
	}

	area, err := model.ParseBodyArea(rawArea)
	if err != nil {
		return nil, fmt.Errorf("parse pain area: %w", err)
	}
	entry.Area = area

	parsedRecordedAt, err := parseTime(recordedAt)
	if err != nil {
		return nil, fmt.Errorf("parse pain recorded_at: %w", err)
	}
	entry.RecordedAt = parsedRecordedAt
	return &entry, nil
}
