package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"physiotrack/backend/internal/model"
)

const templateColumns = `id, user_id, name, exercises_json, created_at`

type TemplateRepository struct {
	db *sql.DB
}

func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Create(ctx context.Context, tmpl *model.SessionTemplate) error {
	exercisesJSON, err := json.Marshal(tmpl.Exercises)
	if err != nil {
		return fmt.Errorf("marshal template exercises: %w", err)
	}

	_, err = r.db.ExecContext(
		ctx,
		`INSERT INTO session_templates (`+templateColumns+`) VALUES (?, ?, ?, ?, ?)`,
		tmpl.ID,
		tmpl.UserID,
		tmpl.Name,
		string(exercisesJSON),
		formatTime(tmpl.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

func (r *TemplateRepository) Get(ctx context.Context, userID, id string) (*model.SessionTemplate, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+templateColumns+` FROM session_templates WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	return scanTemplate(row)
}

func (r *TemplateRepository) List(ctx context.Context, userID string) ([]model.SessionTemplate, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+templateColumns+` FROM session_templates WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := make([]model.SessionTemplate, 0)
	for rows.Next() {
		tmpl, scanErr := scanTemplate(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		templates = append(templates, *tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return templates, nil
}

func (r *TemplateRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM session_templates WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTemplate(s scanner) (*model.SessionTemplate, error) {
	var tmpl model.SessionTemplate
	var exercisesJSON string
	var createdAt string
	if err := s.Scan(&tmpl.ID, &tmpl.UserID, &tmpl.Name, &exercisesJSON, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan template: %w", err)
	}

	if err := json.Unmarshal([]byte(exercisesJSON), &tmpl.Exercises); err != nil {
		return nil, fmt.Errorf("decode template exercises: %w", err)
	}

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse template created_at: %w", err)
	}
	tmpl.CreatedAt = parsedCreatedAt
	return &tmpl, nil
}
