// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the pbbcms server and its
// maintenance commands.
package main

import (
	"database/sql"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"pbbcms/internal/config"
	"pbbcms/internal/database"
)

func main() {
	app := &cli.App{
		Name:  "pbbcms",
		Usage: "Content backend for the company marketing site",
		Before: func(c *cli.Context) error {
			setupLogger(os.Getenv("APP_ENV"))
			return nil
		},
		Commands: []*cli.Command{
			serveCommand,
			migrateCommand,
			seedCommand,
			createAdminCommand,
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application failed", "error", err)
		os.Exit(1)
	}
}

// setupLogger installs the default structured logger: text in development,
// JSON everywhere else.
func setupLogger(env string) {
	var handler slog.Handler
	if env == "" || env == "development" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}

// openDB loads configuration, connects to PostgreSQL and applies pending
// migrations. Every command needs all three.
func openDB() (*config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, nil, err
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return cfg, db, nil
}
