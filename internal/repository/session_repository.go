package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"physiotrack/backend/internal/model"
)

const sessionColumns = `id, user_id, name, exercises_json, cursor_position, points_earned, started_at, ended_at`

type SessionRepository struct {
	db    *sql.DB
	users *UserRepository
}

func NewSessionRepository(db *sql.DB, users *UserRepository) *SessionRepository {
	return &SessionRepository{db: db, users: users}
}

// SaveCompletedSession inserts a finished session and adds its reward to the
// owner's totals in one transaction, keeping the totals equal to the sum over
// stored sessions.
func (r *SessionRepository) SaveCompletedSession(ctx context.Context, session model.Session) error {
	if !session.Completed || session.EndedAt == nil {
		return errors.New("save completed session: session is not completed")
	}

	exercisesJSON, err := json.Marshal(session.Exercises)
	if err != nil {
		return fmt.Errorf("marshal exercises: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.Name,
		string(exercisesJSON),
		session.Cursor,
		session.PointsEarned,
		formatTime(session.StartedAt),
		formatTime(*session.EndedAt),
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	delta := model.Totals{Sessions: 1, Points: session.PointsEarned}
	if err := r.users.AddTotalsTx(ctx, tx, session.UserID, delta, *session.EndedAt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

// ListCompletedSessions returns sessions newest first. A limit <= 0 returns all.
func (r *SessionRepository) ListCompletedSessions(ctx context.Context, userID string, limit int) ([]model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE user_id = ? ORDER BY ended_at DESC`
	args := []interface{}{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]model.Session, 0)
	for rows.Next() {
		session, scanErr := scanSession(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		sessions = append(sessions, *session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ListEndedSince returns the end times of sessions that ended at or after since.
func (r *SessionRepository) ListEndedSince(ctx context.Context, userID string, since time.Time) ([]time.Time, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT ended_at FROM sessions WHERE user_id = ? AND ended_at >= ? ORDER BY ended_at`,
		userID,
		formatTime(since),
	)
	if err != nil {
		return nil, fmt.Errorf("list session end times: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan ended_at: %w", err)
		}
		endedAt, err := parseTime(raw)
		if err != nil {
			return nil, fmt.Errorf("parse ended_at: %w", err)
		}
		out = append(out, endedAt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session end times: %w", err)
	}
	return out, nil
}

func scanSession(s scanner) (*model.Session, error) {
	var session model.Session
	var exercisesJSON string
	var startedAt string
	var endedAt string
	err := s.Scan(
		&session.ID,
		&session.UserID,
		&session.Name,
		&exercisesJSON,
		&session.Cursor,
		&session.PointsEarned,
		&startedAt,
		&endedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	if err := json.Unmarshal([]byte(exercisesJSON), &session.Exercises); err != nil {
		return nil, fmt.Errorf("decode session exercises: %w", err)
	}

	parsedStartedAt, err := parseTime(startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse session started_at: %w", err)
	}
	session.StartedAt = parsedStartedAt

	parsedEndedAt, err := parseTime(endedAt)
	if err != nil {
		return nil, fmt.Errorf("parse session ended_at: %w", err)
	}
	session.EndedAt = &parsedEndedAt
	session.Completed = true

	return &session, nil
}
