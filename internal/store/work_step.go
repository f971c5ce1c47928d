// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"pbbcms/internal/models"
)

// WorkStepStore manages the numbered work process steps.
type WorkStepStore struct {
	db *sql.DB
}

// NewWorkStepStore returns a new WorkStepStore.
func NewWorkStepStore(db *sql.DB) *WorkStepStore {
	return &WorkStepStore{db: db}
}

var workStepColumns = []string{"id", "step_number", "title", "description", "image", "created_at"}

const workStepNumberConstraint = "work_steps_step_number_key"

// List returns all steps ordered by step number.
func (s *WorkStepStore) List(ctx context.Context) ([]models.WorkStep, error) {
	items, err := selectAll[models.WorkStep](ctx, s.db,
		psql.Select(workStepColumns...).From("work_steps").OrderBy("step_number"))
	if err != nil {
		return nil, fmt.Errorf("list work steps: %w", err)
	}
	return items, nil
}

// FindByID retrieves a work step. Returns nil if not found.
func (s *WorkStepStore) FindByID(ctx context.Context, id uuid.UUID) (*models.WorkStep, error) {
	w, err := selectOne[models.WorkStep](ctx, s.db,
		psql.Select(workStepColumns...).From("work_steps").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("find work step: %w", err)
	}
	return w, nil
}

// Create inserts a work step. A taken step number yields ErrDuplicateStepNumber.
func (s *WorkStepStore) Create(ctx context.Context, w *models.WorkStep) (*models.WorkStep, error) {
	created, err := getReturning[models.WorkStep](ctx, s.db, psql.Insert("work_steps").
		Columns("step_number", "title", "description", "image").
		Values(w.StepNumber, w.Title, w.Description, w.Image).
		Suffix(returning(workStepColumns)))
	if err != nil {
		if isUniqueViolation(err, workStepNumberConstraint) {
			return nil, ErrDuplicateStepNumber
		}
		return nil, fmt.Errorf("create work step: %w", err)
	}
	return created, nil
}

// Update overwrites a work step. Returns nil if not found.
func (s *WorkStepStore) Update(ctx context.Context, w *models.WorkStep) (*models.WorkStep, error) {
	updated, err := getReturning[models.WorkStep](ctx, s.db, psql.Update("work_steps").
		Set("step_number", w.StepNumber).
		Set("title", w.Title).
		Set("description", w.Description).
		Set("image", w.Image).
		Where(sq.Eq{"id": w.ID}).
		Suffix(returning(workStepColumns)))
	if err != nil {
		if isUniqueViolation(err, workStepNumberConstraint) {
			return nil, ErrDuplicateStepNumber
		}
		return nil, fmt.Errorf("update work step: %w", err)
	}
	return updated, nil
}

// Delete removes a work step and returns it. Returns nil if not found.
func (s *WorkStepStore) Delete(ctx context.Context, id uuid.UUID) (*models.WorkStep, error) {
	w, err := getReturning[models.WorkStep](ctx, s.db, psql.Delete("work_steps").
		Where(sq.Eq{"id": id}).
		Suffix(returning(workStepColumns)))
	if err != nil {
		return nil, fmt.Errorf("delete work step: %w", err)
	}
	return w, nil
}
