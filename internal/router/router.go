// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for pbbcms.
// It organizes routes into the public API and the admin API, each with its
// own middleware stack.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"pbbcms/internal/handlers"
	"pbbcms/internal/middleware"
	"pbbcms/internal/session"
)

// Deps are the handler groups and shared middleware state the router wires.
type Deps struct {
	Sessions      *session.Store
	SecureCookies bool

	// SubmitLimiter guards the public create endpoints, LoginLimiter the
	// admin login. Either may be nil to disable limiting.
	SubmitLimiter *middleware.RateLimiter
	LoginLimiter  *middleware.RateLimiter

	API   *handlers.API
	Admin *handlers.Admin
	Auth  *handlers.Auth
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(chimw.StripSlashes)

	r.NotFound(middleware.NotFound)
	r.MethodNotAllowed(middleware.MethodNotAllowed)

	// Health check: no session, no CSRF.
	r.Get("/health", healthHandler)

	// Public read API plus the three anonymous mutations.
	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", d.API.Categories)
		r.Get("/service-details", d.API.ServiceDetails)
		r.Get("/projects", d.API.Projects)
		r.Get("/work-steps", d.API.WorkSteps)
		r.Get("/youtube-videos", d.API.Videos)
		r.Post("/youtube-videos/increment-views", d.API.IncrementViews)
		r.Get("/why-choose-us", d.API.Highlights)
		r.Get("/client-reviews", d.API.Reviews)

		r.Group(func(r chi.Router) {
			r.Use(limit(d.SubmitLimiter))
			r.Post("/client-reviews/create", d.API.CreateReview)
			r.Post("/callback-request", d.API.CreateCallback)
		})
	})

	// Admin API: session cookie plus double-submit CSRF.
	r.Route("/admin/api", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(middleware.LoadSession(d.Sessions))
		r.Use(middleware.NewCSRF(d.SecureCookies))

		// Accessible without a session.
		r.Get("/csrf", d.Auth.CSRFToken)
		r.With(limit(d.LoginLimiter)).Post("/login", d.Auth.Login)

		// 2FA: requires a session but NOT completed 2FA.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/logout", d.Auth.Logout)
			r.Get("/2fa/setup", d.Auth.TwoFASetup)
			r.Post("/2fa/verify", d.Auth.TwoFAVerify)
		})

		// Authenticated and 2FA-verified.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Get("/me", d.Auth.Me)

			r.Route("/main-categories", func(r chi.Router) {
				r.Get("/", d.Admin.MainCategoriesList)
				r.Post("/", d.Admin.MainCategoryCreate)
				r.Put("/{id}", d.Admin.MainCategoryUpdate)
				r.Delete("/{id}", d.Admin.MainCategoryDelete)
			})

			r.Route("/subcategories", func(r chi.Router) {
				r.Get("/", d.Admin.SubcategoriesList)
				r.Post("/", d.Admin.SubcategoryCreate)
				r.Get("/parent-choices", d.Admin.ParentChoices)
				r.Put("/{id}", d.Admin.SubcategoryUpdate)
				r.Delete("/{id}", d.Admin.SubcategoryDelete)
				r.Get("/{id}/details", d.Admin.DetailsList)
				r.Post("/{id}/details", d.Admin.DetailCreate)
			})

			r.Route("/details", func(r chi.Router) {
				r.Put("/{id}", d.Admin.DetailUpdate)
				r.Delete("/{id}", d.Admin.DetailDelete)
			})

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", d.Admin.ProjectsList)
				r.Post("/", d.Admin.ProjectCreate)
				r.Delete("/{id}", d.Admin.ProjectDelete)
			})

			r.Route("/work-steps", func(r chi.Router) {
				r.Get("/", d.Admin.WorkStepsList)
				r.Post("/", d.Admin.WorkStepCreate)
				r.Put("/{id}", d.Admin.WorkStepUpdate)
				r.Delete("/{id}", d.Admin.WorkStepDelete)
			})

			r.Route("/videos", func(r chi.Router) {
				r.Get("/", d.Admin.VideosList)
				r.Post("/", d.Admin.VideoCreate)
				r.Put("/{id}", d.Admin.VideoUpdate)
				r.Delete("/{id}", d.Admin.VideoDelete)
			})

			r.Route("/highlights", func(r chi.Router) {
				r.Get("/", d.Admin.HighlightsList)
				r.Post("/", d.Admin.HighlightCreate)
				r.Put("/{id}", d.Admin.HighlightUpdate)
				r.Delete("/{id}", d.Admin.HighlightDelete)
			})

			r.Route("/reviews", func(r chi.Router) {
				r.Get("/", d.Admin.ReviewsList)
				r.Put("/{id}/active", d.Admin.ReviewSetActive)
				r.Delete("/{id}", d.Admin.ReviewDelete)
			})

			r.Route("/callbacks", func(r chi.Router) {
				r.Get("/", d.Admin.CallbacksList)
				r.Put("/{id}/processed", d.Admin.CallbackSetProcessed)
				r.Delete("/{id}", d.Admin.CallbackDelete)
			})
		})
	})

	return r
}

// limit returns rl's middleware, or a pass-through when rl is nil.
func limit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
