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

// ProjectStore manages the project photo gallery.
type ProjectStore struct {
	db *sql.DB
}

// NewProjectStore returns a new ProjectStore.
func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

var projectColumns = []string{"id", "image", "created_at"}

// List returns all projects, newest first.
func (s *ProjectStore) List(ctx context.Context) ([]models.Project, error) {
	items, err := selectAll[models.Project](ctx, s.db,
		psql.Select(projectColumns...).From("our_projects").OrderBy("created_at DESC"))
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return items, nil
}

// Paged returns one page of projects, newest first.
func (s *ProjectStore) Paged(ctx context.Context, page Page) ([]models.Project, int, error) {
	items, total, err := paginate[models.Project](ctx, s.db,
		psql.Select().From("our_projects"), projectColumns, page, "created_at DESC")
	if err != nil {
		return nil, 0, fmt.Errorf("page projects: %w", err)
	}
	return items, total, nil
}

// Create inserts a project photo.
func (s *ProjectStore) Create(ctx context.Context, image string) (*models.Project, error) {
	p, err := getReturning[models.Project](ctx, s.db, psql.Insert("our_projects").
		Columns("image").
		Values(image).
		Suffix(returning(projectColumns)))
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// Delete removes a project and returns it. Returns nil if not found.
func (s *ProjectStore) Delete(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	p, err := getReturning[models.Project](ctx, s.db, psql.Delete("our_projects").
		Where(sq.Eq{"id": id}).
		Suffix(returning(projectColumns)))
	if err != nil {
		return nil, fmt.Errorf("delete project: %w", err)
	}
	return p, nil
}
