package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"pbbcms/internal/cache"
	"pbbcms/internal/database"
	"pbbcms/internal/models"
	"pbbcms/internal/seed"
	"pbbcms/internal/session"
	"pbbcms/internal/store"
)

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Apply pending database migrations",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "status", Usage: "List migrations after applying them"},
	},
	Action: func(c *cli.Context) error {
		_, db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if !c.Bool("status") {
			return nil
		}
		migrations, err := database.MigrationStatus(c.Context, db)
		if err != nil {
			return err
		}
		for _, m := range migrations {
			slog.Info("migration", "version", m.Version, "applied", m.Applied, "applied_at", m.AppliedAt)
		}
		return nil
	},
}

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Replace public content with demonstration data",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "admin",
			Usage: "Also create the development admin account when no user exists",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if c.Bool("admin") {
			if _, err := seed.Admin(c.Context, store.NewUserStore(db)); err != nil {
				return err
			}
		}

		if err := seed.Demo(c.Context, db); err != nil {
			return err
		}

		// Cached listings would otherwise keep serving the wiped content.
		valkeyClient, err := cache.ConnectValkey(c.Context, cfg.ValkeyAddr(), cfg.ValkeyPassword, cfg.ValkeyDB)
		if err != nil {
			slog.Warn("response cache not flushed", "error", err)
			return nil
		}
		defer valkeyClient.Close()
		cache.NewResponseCache(valkeyClient, cfg.CacheTTL).InvalidateAll(c.Context)
		return nil
	},
}

var createAdminCommand = &cli.Command{
	Name:  "create-admin",
	Usage: "Create an admin account, or reset its two-factor enrollment",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "email", Required: true, Usage: "Login email"},
		&cli.StringFlag{Name: "password", Usage: "Login password (not needed with --reset-2fa)", EnvVars: []string{"PBBCMS_ADMIN_PASSWORD"}},
		&cli.StringFlag{Name: "name", Value: "Admin", Usage: "Display name"},
		&cli.BoolFlag{Name: "reset-2fa", Usage: "Clear the TOTP secret of an existing account"},
	},
	Action: func(c *cli.Context) error {
		cfg, db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		users := store.NewUserStore(db)
		u, err := createAdmin(c.Context, users,
			c.String("email"), c.String("password"), c.String("name"), c.Bool("reset-2fa"))
		if err != nil || !c.Bool("reset-2fa") {
			return err
		}

		// Sessions that already passed 2FA must not outlive the reset.
		valkeyClient, err := cache.ConnectValkey(c.Context, cfg.ValkeyAddr(), cfg.ValkeyPassword, cfg.ValkeyDB)
		if err != nil {
			slog.Warn("existing sessions not revoked", "error", err)
			return nil
		}
		defer valkeyClient.Close()
		revoked, err := session.NewStore(valkeyClient, false).DestroyUser(c.Context, u.ID)
		if err != nil {
			return err
		}
		slog.Info("sessions revoked", "email", u.Email, "count", revoked)
		return nil
	},
}

const minAdminPassword = 8

// createAdmin creates the account, or with reset2FA clears the TOTP
// enrollment of an existing one. It returns the affected user.
func createAdmin(ctx context.Context, users *store.UserStore, email, password, name string, reset2FA bool) (*models.User, error) {
	existing, err := users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if !reset2FA {
			return nil, fmt.Errorf("%w: %s", store.ErrDuplicateEmail, email)
		}
		if err := users.ResetTOTP(ctx, existing.ID); err != nil {
			return nil, err
		}
		slog.Info("two-factor enrollment reset", "email", email)
		return existing, nil
	}
	if reset2FA {
		return nil, fmt.Errorf("no account with email %s", email)
	}

	if len(password) < minAdminPassword {
		return nil, fmt.Errorf("password must be at least %d characters", minAdminPassword)
	}

	u, err := users.Create(ctx, email, password, name)
	if err != nil {
		return nil, err
	}
	slog.Info("admin account created", "email", u.Email, "id", u.ID)
	return u, nil
}
