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

// HighlightStore manages the "why choose us" highlights.
type HighlightStore struct {
	db *sql.DB
}

// NewHighlightStore returns a new HighlightStore.
func NewHighlightStore(db *sql.DB) *HighlightStore {
	return &HighlightStore{db: db}
}

var highlightColumns = []string{"id", "title", "description", "sort_order", "is_active", "created_at"}

// ListActive returns active highlights in display order.
func (s *HighlightStore) ListActive(ctx context.Context) ([]models.Highlight, error) {
	items, err := selectAll[models.Highlight](ctx, s.db,
		psql.Select(highlightColumns...).From("why_choose_us").
			Where(sq.Eq{"is_active": true}).
			OrderBy("sort_order", "created_at"))
	if err != nil {
		return nil, fmt.Errorf("list active highlights: %w", err)
	}
	return items, nil
}

// List returns every highlight in display order.
func (s *HighlightStore) List(ctx context.Context) ([]models.Highlight, error) {
	items, err := selectAll[models.Highlight](ctx, s.db,
		psql.Select(highlightColumns...).From("why_choose_us").OrderBy("sort_order", "created_at"))
	if err != nil {
		return nil, fmt.Errorf("list highlights: %w", err)
	}
	return items, nil
}

// Create inserts a highlight.
func (s *HighlightStore) Create(ctx context.Context, h *models.Highlight) (*models.Highlight, error) {
	created, err := getReturning[models.Highlight](ctx, s.db, psql.Insert("why_choose_us").
		Columns("title", "description", "sort_order", "is_active").
		Values(h.Title, h.Description, h.Order, h.IsActive).
		Suffix(returning(highlightColumns)))
	if err != nil {
		return nil, fmt.Errorf("create highlight: %w", err)
	}
	return created, nil
}

// Update overwrites a highlight. Returns nil if not found.
func (s *HighlightStore) Update(ctx context.Context, h *models.Highlight) (*models.Highlight, error) {
	updated, err := getReturning[models.Highlight](ctx, s.db, psql.Update("why_choose_us").
		SetMap(map[string]any{
			"title":       h.Title,
			"description": h.Description,
			"sort_order":  h.Order,
			"is_active":   h.IsActive,
		}).
		Where(sq.Eq{"id": h.ID}).
		Suffix(returning(highlightColumns)))
	if err != nil {
		return nil, fmt.Errorf("update highlight: %w", err)
	}
	return updated, nil
}

// Delete removes a highlight. Returns false if it did not exist.
func (s *HighlightStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return deleteByID(ctx, s.db, "why_choose_us", id)
}
