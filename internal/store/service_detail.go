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

// ServiceDetailStore manages the image gallery attached to categories.
type ServiceDetailStore struct {
	db *sql.DB
}

// NewServiceDetailStore returns a new ServiceDetailStore.
func NewServiceDetailStore(db *sql.DB) *ServiceDetailStore {
	return &ServiceDetailStore{db: db}
}

var serviceDetailColumns = []string{"id", "category_id", "image", "sort_order", "created_at"}

// ListByCategory returns the details of one category in display order.
func (s *ServiceDetailStore) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.ServiceDetail, error) {
	items, err := selectAll[models.ServiceDetail](ctx, s.db,
		psql.Select(serviceDetailColumns...).From("service_details").
			Where(sq.Eq{"category_id": categoryID}).
			OrderBy("sort_order", "created_at"))
	if err != nil {
		return nil, fmt.Errorf("list service details: %w", err)
	}
	return items, nil
}

// ListByCategories returns the details of several categories at once,
// grouped by category id and kept in display order within each group.
func (s *ServiceDetailStore) ListByCategories(ctx context.Context, categoryIDs []uuid.UUID) (map[uuid.UUID][]models.ServiceDetail, error) {
	grouped := make(map[uuid.UUID][]models.ServiceDetail, len(categoryIDs))
	if len(categoryIDs) == 0 {
		return grouped, nil
	}

	items, err := selectAll[models.ServiceDetail](ctx, s.db,
		psql.Select(serviceDetailColumns...).From("service_details").
			Where(sq.Eq{"category_id": categoryIDs}).
			OrderBy("category_id", "sort_order", "created_at"))
	if err != nil {
		return nil, fmt.Errorf("list service details by categories: %w", err)
	}
	for _, d := range items {
		grouped[d.CategoryID] = append(grouped[d.CategoryID], d)
	}
	return grouped, nil
}

// ImageKeysUnder returns the image keys of every detail that deleting
// categoryID would cascade to, including those of its subcategories.
func (s *ServiceDetailStore) ImageKeysUnder(ctx context.Context, categoryID uuid.UUID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.image FROM service_details d
		JOIN categories c ON c.id = d.category_id
		WHERE c.id = $1 OR c.parent_id = $1
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list detail image keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan detail image key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// FindByID retrieves a service detail. Returns nil if not found.
func (s *ServiceDetailStore) FindByID(ctx context.Context, id uuid.UUID) (*models.ServiceDetail, error) {
	d, err := selectOne[models.ServiceDetail](ctx, s.db,
		psql.Select(serviceDetailColumns...).From("service_details").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("find service detail: %w", err)
	}
	return d, nil
}

// Create attaches a new image to a category.
func (s *ServiceDetailStore) Create(ctx context.Context, categoryID uuid.UUID, image string, order int) (*models.ServiceDetail, error) {
	d, err := getReturning[models.ServiceDetail](ctx, s.db, psql.Insert("service_details").
		Columns("category_id", "image", "sort_order").
		Values(categoryID, image, order).
		Suffix(returning(serviceDetailColumns)))
	if err != nil {
		return nil, fmt.Errorf("create service detail: %w", err)
	}
	return d, nil
}

// UpdateOrder changes the display position of a detail. Returns nil if not found.
func (s *ServiceDetailStore) UpdateOrder(ctx context.Context, id uuid.UUID, order int) (*models.ServiceDetail, error) {
	d, err := getReturning[models.ServiceDetail](ctx, s.db, psql.Update("service_details").
		Set("sort_order", order).
		Where(sq.Eq{"id": id}).
		Suffix(returning(serviceDetailColumns)))
	if err != nil {
		return nil, fmt.Errorf("update service detail order: %w", err)
	}
	return d, nil
}

// Delete removes a detail and returns it. Returns nil if not found.
func (s *ServiceDetailStore) Delete(ctx context.Context, id uuid.UUID) (*models.ServiceDetail, error) {
	d, err := getReturning[models.ServiceDetail](ctx, s.db, psql.Delete("service_details").
		Where(sq.Eq{"id": id}).
		Suffix(returning(serviceDetailColumns)))
	if err != nil {
		return nil, fmt.Errorf("delete service detail: %w", err)
	}
	return d, nil
}
