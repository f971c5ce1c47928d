package seed

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"pbbcms/internal/database"
	"pbbcms/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "postgres://" + envOr("POSTGRES_USER", "pbbcms") + ":" + envOr("POSTGRES_PASSWORD", "changeme") +
		"@" + envOr("POSTGRES_HOST", "localhost") + ":" + envOr("POSTGRES_PORT", "5432") +
		"/" + envOr("POSTGRES_DB", "pbbcms") + "?sslmode=disable"

	db, err := database.Connect(dsn)
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func TestDemoIsRepeatable(t *testing.T) {
	// Demo wipes tables other packages' integration tests write to.
	if os.Getenv("PBBCMS_SEED_TEST") == "" {
		t.Skip("set PBBCMS_SEED_TEST=1 to run against a dedicated database")
	}
	db := testDB(t)
	ctx := context.Background()

	// Running twice must not trip the unique step numbers.
	if err := Demo(ctx, db); err != nil {
		t.Fatalf("first Demo: %v", err)
	}
	if err := Demo(ctx, db); err != nil {
		t.Fatalf("second Demo: %v", err)
	}

	s := NewStores(db)

	roots, total, err := s.Categories.ListActiveRoots(ctx, store.ListParams{})
	if err != nil {
		t.Fatalf("ListActiveRoots: %v", err)
	}
	if total < len(categoryTree) || len(roots) < len(categoryTree) {
		t.Errorf("roots: got %d (total %d), want at least %d", len(roots), total, len(categoryTree))
	}

	steps, err := s.WorkSteps.List(ctx)
	if err != nil {
		t.Fatalf("WorkSteps.List: %v", err)
	}
	for i, step := range steps[:min(len(steps), len(workSteps))] {
		if step.StepNumber != i+1 {
			t.Errorf("step %d: number %d", i, step.StepNumber)
		}
	}

	published, err := s.Reviews.ListActive(ctx)
	if err != nil {
		t.Fatalf("Reviews.ListActive: %v", err)
	}
	if len(published) < len(reviews) {
		t.Errorf("published reviews: got %d, want at least %d", len(published), len(reviews))
	}
}
