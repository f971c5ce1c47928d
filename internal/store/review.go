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

// ReviewStore manages client reviews and their moderation flag.
type ReviewStore struct {
	db *sql.DB
}

// NewReviewStore returns a new ReviewStore.
func NewReviewStore(db *sql.DB) *ReviewStore {
	return &ReviewStore{db: db}
}

var reviewColumns = []string{"id", "full_name", "comment", "rating", "is_active", "created_at"}

// ListActive returns published reviews, newest first.
func (s *ReviewStore) ListActive(ctx context.Context) ([]models.Review, error) {
	items, err := selectAll[models.Review](ctx, s.db,
		psql.Select(reviewColumns...).From("client_reviews").
			Where(sq.Eq{"is_active": true}).
			OrderBy("created_at DESC"))
	if err != nil {
		return nil, fmt.Errorf("list active reviews: %w", err)
	}
	return items, nil
}

// Paged returns one page of reviews, optionally filtered by moderation state.
func (s *ReviewStore) Paged(ctx context.Context, isActive *bool, page Page) ([]models.Review, int, error) {
	base := psql.Select().From("client_reviews")
	if isActive != nil {
		base = base.Where(sq.Eq{"is_active": *isActive})
	}
	items, total, err := paginate[models.Review](ctx, s.db, base, reviewColumns, page, "created_at DESC")
	if err != nil {
		return nil, 0, fmt.Errorf("page reviews: %w", err)
	}
	return items, total, nil
}

// Submit stores a review from the public form. It is always hidden until
// an admin activates it.
func (s *ReviewStore) Submit(ctx context.Context, fullName, comment string, rating int) (*models.Review, error) {
	r, err := getReturning[models.Review](ctx, s.db, psql.Insert("client_reviews").
		Columns("full_name", "comment", "rating", "is_active").
		Values(fullName, comment, rating, false).
		Suffix(returning(reviewColumns)))
	if err != nil {
		return nil, fmt.Errorf("submit review: %w", err)
	}
	return r, nil
}

// SetActive publishes or hides a review. Returns nil if not found.
func (s *ReviewStore) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.Review, error) {
	r, err := getReturning[models.Review](ctx, s.db, psql.Update("client_reviews").
		Set("is_active", active).
		Where(sq.Eq{"id": id}).
		Suffix(returning(reviewColumns)))
	if err != nil {
		return nil, fmt.Errorf("set review active: %w", err)
	}
	return r, nil
}

// Delete removes a review. Returns false if it did not exist.
func (s *ReviewStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return deleteByID(ctx, s.db, "client_reviews", id)
}
