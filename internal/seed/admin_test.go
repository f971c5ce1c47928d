package seed

import (
	"context"
	"testing"

	"pbbcms/internal/store"
)

func TestAdminIdempotent(t *testing.T) {
	db := testDB(t)
	users := store.NewUserStore(db)
	ctx := context.Background()

	// The users table is shared with other packages' tests, so it is not
	// cleared first. A second call must never add another account.
	if _, err := Admin(ctx, users); err != nil {
		t.Fatalf("first Admin: %v", err)
	}
	before, err := users.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if before < 1 {
		t.Fatalf("expected at least 1 user, got %d", before)
	}

	created, err := Admin(ctx, users)
	if err != nil {
		t.Fatalf("second Admin: %v", err)
	}
	if created {
		t.Error("second Admin reported a new account")
	}
	after, err := users.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if after != before {
		t.Errorf("user count changed from %d to %d", before, after)
	}
}
