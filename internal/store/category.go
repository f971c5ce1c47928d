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

// CategoryStore manages the two-level category tree. Main categories have
// no parent; subcategories point at a main category.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

var categoryColumns = []string{"id", "name", "parent_id", "is_active", "created_at", "updated_at"}

// ListParams narrows the public main-category listing. A nil Page means
// the whole list is returned.
type ListParams struct {
	Search string
	Page   *Page
}

// CategoryFilter narrows the admin category listings.
type CategoryFilter struct {
	Subcategories bool // false: main categories, true: subcategories
	Search        string
	IsActive      *bool
	ParentID      *uuid.UUID // only meaningful for subcategories
	Page          Page
}

func (s *CategoryStore) roots() sq.SelectBuilder {
	return psql.Select().From("categories").Where(sq.Eq{"parent_id": nil})
}

func (s *CategoryStore) children(parentID uuid.UUID) sq.SelectBuilder {
	return psql.Select().From("categories").Where(sq.Eq{"parent_id": parentID})
}

// ListRoots returns every main category regardless of its active flag.
func (s *CategoryStore) ListRoots(ctx context.Context) ([]models.Category, error) {
	items, err := selectAll[models.Category](ctx, s.db,
		s.roots().Columns(categoryColumns...).OrderBy("name", "created_at"))
	if err != nil {
		return nil, fmt.Errorf("list root categories: %w", err)
	}
	return items, nil
}

// ListActiveRoots returns active main categories and the total number of
// matches before pagination.
func (s *CategoryStore) ListActiveRoots(ctx context.Context, p ListParams) ([]models.Category, int, error) {
	base := s.roots().Where(sq.Eq{"is_active": true})
	if p.Search != "" {
		base = base.Where(sq.ILike{"name": searchPattern(p.Search)})
	}

	if p.Page != nil {
		items, total, err := paginate[models.Category](ctx, s.db, base, categoryColumns, *p.Page, "name", "created_at")
		if err != nil {
			return nil, 0, fmt.Errorf("list active root categories: %w", err)
		}
		return items, total, nil
	}

	items, err := selectAll[models.Category](ctx, s.db, base.Columns(categoryColumns...).OrderBy("name", "created_at"))
	if err != nil {
		return nil, 0, fmt.Errorf("list active root categories: %w", err)
	}
	return items, len(items), nil
}

// ListChildren returns all subcategories of parentID.
func (s *CategoryStore) ListChildren(ctx context.Context, parentID uuid.UUID) ([]models.Category, error) {
	items, err := selectAll[models.Category](ctx, s.db,
		s.children(parentID).Columns(categoryColumns...).OrderBy("name", "created_at"))
	if err != nil {
		return nil, fmt.Errorf("list child categories: %w", err)
	}
	return items, nil
}

// ListActiveChildren returns the active subcategories of parentID.
func (s *CategoryStore) ListActiveChildren(ctx context.Context, parentID uuid.UUID) ([]models.Category, error) {
	items, err := selectAll[models.Category](ctx, s.db,
		s.children(parentID).Columns(categoryColumns...).
			Where(sq.Eq{"is_active": true}).
			OrderBy("name", "created_at"))
	if err != nil {
		return nil, fmt.Errorf("list active child categories: %w", err)
	}
	return items, nil
}

// FindByID retrieves a category of either kind. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := selectOne[models.Category](ctx, s.db,
		psql.Select(categoryColumns...).From("categories").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindActiveSubcategory retrieves id only if it is an active subcategory.
// Main categories and inactive rows yield nil.
func (s *CategoryStore) FindActiveSubcategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := selectOne[models.Category](ctx, s.db,
		psql.Select(categoryColumns...).From("categories").
			Where(sq.Eq{"id": id, "is_active": true}).
			Where(sq.NotEq{"parent_id": nil}))
	if err != nil {
		return nil, fmt.Errorf("find active subcategory: %w", err)
	}
	return c, nil
}

// ParentChoices returns the categories a subcategory may be attached to.
func (s *CategoryStore) ParentChoices(ctx context.Context) ([]models.Category, error) {
	return s.ListRoots(ctx)
}

// AdminList returns one page of main categories or subcategories.
func (s *CategoryStore) AdminList(ctx context.Context, f CategoryFilter) ([]models.Category, int, error) {
	base := psql.Select().From("categories")
	if f.Subcategories {
		base = base.Where(sq.NotEq{"parent_id": nil})
		if f.ParentID != nil {
			base = base.Where(sq.Eq{"parent_id": *f.ParentID})
		}
	} else {
		base = base.Where(sq.Eq{"parent_id": nil})
	}
	if f.Search != "" {
		base = base.Where(sq.ILike{"name": searchPattern(f.Search)})
	}
	if f.IsActive != nil {
		base = base.Where(sq.Eq{"is_active": *f.IsActive})
	}

	items, total, err := paginate[models.Category](ctx, s.db, base, categoryColumns, f.Page, "name", "created_at")
	if err != nil {
		return nil, 0, fmt.Errorf("admin list categories: %w", err)
	}
	return items, total, nil
}

// CreateMain inserts a main category. Any parent is ignored.
func (s *CategoryStore) CreateMain(ctx context.Context, name string, isActive bool) (*models.Category, error) {
	c, err := getReturning[models.Category](ctx, s.db, psql.Insert("categories").
		Columns("name", "parent_id", "is_active").
		Values(name, nil, isActive).
		Suffix(returning(categoryColumns)))
	if err != nil {
		return nil, fmt.Errorf("create main category: %w", err)
	}
	return c, nil
}

// UpdateMain updates a main category. The parent stays absent. Returns nil
// if no main category has this id.
func (s *CategoryStore) UpdateMain(ctx context.Context, id uuid.UUID, name string, isActive bool) (*models.Category, error) {
	c, err := getReturning[models.Category](ctx, s.db, psql.Update("categories").
		Set("name", name).
		Set("is_active", isActive).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "parent_id": nil}).
		Suffix(returning(categoryColumns)))
	if err != nil {
		return nil, fmt.Errorf("update main category: %w", err)
	}
	return c, nil
}

// CreateSub inserts a subcategory under parentID, which must be an
// existing main category.
func (s *CategoryStore) CreateSub(ctx context.Context, parentID uuid.UUID, name string, isActive bool) (*models.Category, error) {
	if err := s.checkParent(ctx, parentID); err != nil {
		return nil, err
	}

	c, err := getReturning[models.Category](ctx, s.db, psql.Insert("categories").
		Columns("name", "parent_id", "is_active").
		Values(name, parentID, isActive).
		Suffix(returning(categoryColumns)))
	if err != nil {
		return nil, fmt.Errorf("create subcategory: %w", err)
	}
	return c, nil
}

// UpdateSub updates a subcategory, possibly moving it under another main
// category. Returns nil if no subcategory has this id.
func (s *CategoryStore) UpdateSub(ctx context.Context, id, parentID uuid.UUID, name string, isActive bool) (*models.Category, error) {
	if id == parentID {
		return nil, ErrInvalidParent
	}
	if err := s.checkParent(ctx, parentID); err != nil {
		return nil, err
	}

	c, err := getReturning[models.Category](ctx, s.db, psql.Update("categories").
		Set("name", name).
		Set("parent_id", parentID).
		Set("is_active", isActive).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Where(sq.NotEq{"parent_id": nil}).
		Suffix(returning(categoryColumns)))
	if err != nil {
		return nil, fmt.Errorf("update subcategory: %w", err)
	}
	return c, nil
}

// checkParent verifies that parentID names an existing main category.
func (s *CategoryStore) checkParent(ctx context.Context, parentID uuid.UUID) error {
	parent, err := s.FindByID(ctx, parentID)
	if err != nil {
		return err
	}
	if parent == nil || parent.IsSubcategory() {
		return ErrInvalidParent
	}
	return nil
}

// Delete removes a category. Its subcategories and every attached service
// detail go with it. Returns nil if the row does not exist.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := getReturning[models.Category](ctx, s.db, psql.Delete("categories").
		Where(sq.Eq{"id": id}).
		Suffix(returning(categoryColumns)))
	if err != nil {
		return nil, fmt.Errorf("delete category: %w", err)
	}
	return c, nil
}
