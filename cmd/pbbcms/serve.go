package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"pbbcms/internal/cache"
	"pbbcms/internal/handlers"
	"pbbcms/internal/middleware"
	"pbbcms/internal/router"
	"pbbcms/internal/seed"
	"pbbcms/internal/session"
	"pbbcms/internal/storage"
	"pbbcms/internal/store"
)

// loginAttemptsPerMinute bounds admin login attempts per client IP.
const loginAttemptsPerMinute = 5

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	users := store.NewUserStore(db)

	// Seed the development admin (no-op if any user exists).
	if cfg.IsDev() {
		if _, err := seed.Admin(ctx, users); err != nil {
			return err
		}
	}

	valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyAddr(), cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		return err
	}
	defer valkeyClient.Close()

	// Outside development, session and CSRF cookies are HTTPS-only.
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)
	responseCache := cache.NewResponseCache(valkeyClient, cfg.CacheTTL)

	// Object storage is optional; without it uploads answer 503.
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, image uploads disabled")
	}

	stores := handlers.Stores{
		Categories: store.NewCategoryStore(db),
		Details:    store.NewServiceDetailStore(db),
		Projects:   store.NewProjectStore(db),
		WorkSteps:  store.NewWorkStepStore(db),
		Videos:     store.NewVideoStore(db),
		Highlights: store.NewHighlightStore(db),
		Reviews:    store.NewReviewStore(db),
		Callbacks:  store.NewCallbackStore(db),
	}

	submitLimiter := middleware.NewRateLimiter(cfg.SubmitRateLimit, time.Minute)
	defer submitLimiter.Stop()
	loginLimiter := middleware.NewRateLimiter(loginAttemptsPerMinute, time.Minute)
	defer loginLimiter.Stop()

	r := router.New(router.Deps{
		Sessions:      sessionStore,
		SecureCookies: secureCookies,
		SubmitLimiter: submitLimiter,
		LoginLimiter:  loginLimiter,
		API:           handlers.NewAPI(stores, storageClient, responseCache),
		Admin:         handlers.NewAdmin(stores, storageClient, responseCache),
		Auth:          handlers.NewAuth(sessionStore, users),
	})

	// WriteTimeout leaves room for image uploads to object storage.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
