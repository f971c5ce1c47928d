package seed

import (
	"context"
	"fmt"
	"log/slog"

	"pbbcms/internal/store"
)

// Development login. The account enrolls TOTP on first sign-in like any other.
const (
	DevAdminEmail    = "admin@pbbcms.local"
	DevAdminPassword = "admin"
)

// Admin creates the development admin unless some account already exists.
// It reports whether a user was created.
func Admin(ctx context.Context, users *store.UserStore) (bool, error) {
	n, err := users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("seed check users: %w", err)
	}
	if n > 0 {
		slog.Info("admin user already present, skipping seed")
		return false, nil
	}

	if _, err := users.Create(ctx, DevAdminEmail, DevAdminPassword, "Admin"); err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", DevAdminEmail,
		"password", DevAdminPassword,
	)
	return true, nil
}
