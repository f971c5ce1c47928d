// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestCategoryStoreScopedViews(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	t.Cleanup(func() { cleanCategories(t, db, "test-scope-main", "test-scope-hidden") })

	root, err := s.CreateMain(ctx, "test-scope-main", true)
	if err != nil {
		t.Fatalf("CreateMain: %v", err)
	}
	hidden, err := s.CreateMain(ctx, "test-scope-hidden", false)
	if err != nil {
		t.Fatalf("CreateMain hidden: %v", err)
	}
	sub, err := s.CreateSub(ctx, root.ID, "test-scope-sub", true)
	if err != nil {
		t.Fatalf("CreateSub: %v", err)
	}
	inactiveSub, err := s.CreateSub(ctx, root.ID, "test-scope-sub-off", false)
	if err != nil {
		t.Fatalf("CreateSub inactive: %v", err)
	}

	roots, err := s.ListRoots(ctx)
	if err != nil {
		t.Fatalf("ListRoots: %v", err)
	}
	seen := map[uuid.UUID]bool{}
	for _, c := range roots {
		if c.IsSubcategory() {
			t.Errorf("ListRoots returned subcategory %q", c.Name)
		}
		seen[c.ID] = true
	}
	if !seen[root.ID] || !seen[hidden.ID] {
		t.Error("ListRoots should include active and inactive main categories")
	}

	active, _, err := s.ListActiveRoots(ctx, ListParams{Search: "test-scope"})
	if err != nil {
		t.Fatalf("ListActiveRoots: %v", err)
	}
	if len(active) != 1 || active[0].ID != root.ID {
		t.Errorf("ListActiveRoots = %v, want only the active main category", active)
	}

	children, err := s.ListChildren(ctx, root.ID)
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	if len(children) != 2 {
		t.Errorf("ListChildren: got %d, want 2", len(children))
	}

	activeChildren, err := s.ListActiveChildren(ctx, root.ID)
	if err != nil {
		t.Fatalf("ListActiveChildren: %v", err)
	}
	if len(activeChildren) != 1 || activeChildren[0].ID != sub.ID {
		t.Errorf("ListActiveChildren = %v, want only %s", activeChildren, sub.ID)
	}

	// Every category is in exactly one of the two views.
	for _, c := range append(roots, children...) {
		if c.IsMain() == c.IsSubcategory() {
			t.Errorf("category %q is in both or neither view", c.Name)
		}
	}

	found, err := s.FindActiveSubcategory(ctx, sub.ID)
	if err != nil || found == nil {
		t.Fatalf("FindActiveSubcategory(active sub) = %v, %v", found, err)
	}
	for name, id := range map[string]uuid.UUID{
		"inactive sub": inactiveSub.ID,
		"main":         root.ID,
		"random":       uuid.New(),
	} {
		got, err := s.FindActiveSubcategory(ctx, id)
		if err != nil {
			t.Fatalf("FindActiveSubcategory(%s): %v", name, err)
		}
		if got != nil {
			t.Errorf("FindActiveSubcategory(%s) = %v, want nil", name, got)
		}
	}
}

func TestCategoryStoreActiveRootsPagination(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	names := []string{"test-page-a", "test-page-b", "test-page-c"}
	t.Cleanup(func() { cleanCategories(t, db, names...) })
	for _, n := range names {
		if _, err := s.CreateMain(ctx, n, true); err != nil {
			t.Fatalf("CreateMain(%s): %v", n, err)
		}
	}

	page := NewPage(2, 2)
	items, total, err := s.ListActiveRoots(ctx, ListParams{Search: "test-page-", Page: &page})
	if err != nil {
		t.Fatalf("ListActiveRoots: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(items) != 1 || items[0].Name != "test-page-c" {
		t.Errorf("page 2 = %v, want [test-page-c]", items)
	}
}

func TestCategoryStoreParentRules(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	t.Cleanup(func() { cleanCategories(t, db, "test-parent-main", "test-parent-other") })

	root, _ := s.CreateMain(ctx, "test-parent-main", true)
	other, _ := s.CreateMain(ctx, "test-parent-other", true)
	sub, err := s.CreateSub(ctx, root.ID, "test-parent-sub", true)
	if err != nil {
		t.Fatalf("CreateSub: %v", err)
	}
	if sub.ParentID == nil || *sub.ParentID != root.ID {
		t.Errorf("sub parent = %v, want %s", sub.ParentID, root.ID)
	}

	// A subcategory cannot parent another subcategory.
	if _, err := s.CreateSub(ctx, sub.ID, "test-parent-deep", true); !errors.Is(err, ErrInvalidParent) {
		t.Errorf("CreateSub under sub: err = %v, want ErrInvalidParent", err)
	}
	// Nor can a missing row.
	if _, err := s.CreateSub(ctx, uuid.New(), "test-parent-orphan", true); !errors.Is(err, ErrInvalidParent) {
		t.Errorf("CreateSub under missing: err = %v, want ErrInvalidParent", err)
	}

	moved, err := s.UpdateSub(ctx, sub.ID, other.ID, "test-parent-sub", false)
	if err != nil {
		t.Fatalf("UpdateSub: %v", err)
	}
	if *moved.ParentID != other.ID || moved.IsActive {
		t.Errorf("UpdateSub result = %+v", moved)
	}
	if _, err := s.UpdateSub(ctx, sub.ID, sub.ID, "x", true); !errors.Is(err, ErrInvalidParent) {
		t.Errorf("UpdateSub self parent: err = %v, want ErrInvalidParent", err)
	}

	// Updates are scoped by kind.
	if got, err := s.UpdateMain(ctx, sub.ID, "renamed", true); err != nil || got != nil {
		t.Errorf("UpdateMain on sub = %v, %v; want nil, nil", got, err)
	}
	if got, err := s.UpdateSub(ctx, root.ID, other.ID, "renamed", true); err != nil || got != nil {
		t.Errorf("UpdateSub on main = %v, %v; want nil, nil", got, err)
	}

	choices, err := s.ParentChoices(ctx)
	if err != nil {
		t.Fatalf("ParentChoices: %v", err)
	}
	for _, c := range choices {
		if c.IsSubcategory() {
			t.Errorf("ParentChoices offered subcategory %q", c.Name)
		}
	}
}

func TestCategoryStoreDeleteCascades(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	details := NewServiceDetailStore(db)
	ctx := context.Background()

	t.Cleanup(func() { cleanCategories(t, db, "test-cascade-main") })

	root, _ := s.CreateMain(ctx, "test-cascade-main", true)
	sub, _ := s.CreateSub(ctx, root.ID, "test-cascade-sub", true)
	d1, err := details.Create(ctx, sub.ID, "service_details/a.jpg", 0)
	if err != nil {
		t.Fatalf("Create detail: %v", err)
	}
	d2, _ := details.Create(ctx, root.ID, "service_details/b.jpg", 1)

	keys, err := details.ImageKeysUnder(ctx, root.ID)
	if err != nil {
		t.Fatalf("ImageKeysUnder: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("ImageKeysUnder: got %v, want 2 keys", keys)
	}

	deleted, err := s.Delete(ctx, root.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted == nil || deleted.ID != root.ID {
		t.Fatalf("Delete returned %v", deleted)
	}

	for _, id := range []uuid.UUID{root.ID, sub.ID} {
		if c, _ := s.FindByID(ctx, id); c != nil {
			t.Errorf("category %s survived delete", id)
		}
	}
	for _, id := range []uuid.UUID{d1.ID, d2.ID} {
		if d, _ := details.FindByID(ctx, id); d != nil {
			t.Errorf("service detail %s survived delete", id)
		}
	}

	again, err := s.Delete(ctx, root.ID)
	if err != nil || again != nil {
		t.Errorf("second Delete = %v, %v; want nil, nil", again, err)
	}
}

func TestCategoryStoreAdminList(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	t.Cleanup(func() { cleanCategories(t, db, "test-admin-list") })

	root, _ := s.CreateMain(ctx, "test-admin-list", true)
	s.CreateSub(ctx, root.ID, "test-admin-list-on", true)
	s.CreateSub(ctx, root.ID, "test-admin-list-off", false)

	inactive := false
	items, total, err := s.AdminList(ctx, CategoryFilter{
		Subcategories: true,
		ParentID:      &root.ID,
		IsActive:      &inactive,
		Page:          NewPage(1, 20),
	})
	if err != nil {
		t.Fatalf("AdminList: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Name != "test-admin-list-off" {
		t.Errorf("AdminList = %v (total %d), want the inactive sub only", items, total)
	}

	mains, _, err := s.AdminList(ctx, CategoryFilter{Search: "test-admin-list", Page: NewPage(1, 20)})
	if err != nil {
		t.Fatalf("AdminList mains: %v", err)
	}
	if len(mains) != 1 || mains[0].ID != root.ID {
		t.Errorf("AdminList mains = %v", mains)
	}
}
