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

// CallbackStore manages callback requests left by site visitors.
type CallbackStore struct {
	db *sql.DB
}

// NewCallbackStore returns a new CallbackStore.
func NewCallbackStore(db *sql.DB) *CallbackStore {
	return &CallbackStore{db: db}
}

var callbackColumns = []string{"id", "name", "phone", "is_processed", "created_at"}

// Create stores a new, unprocessed callback request. The phone is kept
// exactly as submitted.
func (s *CallbackStore) Create(ctx context.Context, name, phone string) (*models.CallbackRequest, error) {
	c, err := getReturning[models.CallbackRequest](ctx, s.db, psql.Insert("callback_requests").
		Columns("name", "phone").
		Values(name, phone).
		Suffix(returning(callbackColumns)))
	if err != nil {
		return nil, fmt.Errorf("create callback request: %w", err)
	}
	return c, nil
}

// Paged returns one page of callback requests, newest first.
func (s *CallbackStore) Paged(ctx context.Context, isProcessed *bool, page Page) ([]models.CallbackRequest, int, error) {
	base := psql.Select().From("callback_requests")
	if isProcessed != nil {
		base = base.Where(sq.Eq{"is_processed": *isProcessed})
	}
	items, total, err := paginate[models.CallbackRequest](ctx, s.db, base, callbackColumns, page, "created_at DESC")
	if err != nil {
		return nil, 0, fmt.Errorf("page callback requests: %w", err)
	}
	return items, total, nil
}

// SetProcessed marks a request as handled or not. Returns nil if not found.
func (s *CallbackStore) SetProcessed(ctx context.Context, id uuid.UUID, processed bool) (*models.CallbackRequest, error) {
	c, err := getReturning[models.CallbackRequest](ctx, s.db, psql.Update("callback_requests").
		Set("is_processed", processed).
		Where(sq.Eq{"id": id}).
		Suffix(returning(callbackColumns)))
	if err != nil {
		return nil, fmt.Errorf("set callback processed: %w", err)
	}
	return c, nil
}

// Delete removes a callback request. Returns false if it did not exist.
func (s *CallbackStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return deleteByID(ctx, s.db, "callback_requests", id)
}
