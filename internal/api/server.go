// Copyright (c) 2026 Taskora. All rights reserved.

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taskora/taskora/internal/core/task"
	"github.com/taskora/taskora/internal/platform/config"
	"github.com/taskora/taskora/internal/platform/constants"
	"github.com/taskora/taskora/internal/platform/middleware"
	"github.com/taskora/taskora/internal/platform/ratelimit"
	"github.com/taskora/taskora/internal/users/account"
	"github.com/taskora/taskora/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here; no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler. Always returns 200 if the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. Returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles credential lifecycle routes (register, login, OAuth).
	Auth *auth.Handler

	// Account handles the /me profile routes.
	Account *account.Handler

	// Task handles the task CRUD routes.
	Task *task.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
//
// # Endpoint Classes
//
// Each route carries a fixed-window budget on top of the coarse whole-API
// token bucket: authentication endpoints get the tight auth profile, reads
// the generous read profile, writes the standard api profile, and the
// password endpoint the sensitive profile. The profile-to-route binding
// lives in each handler's Routes method via the limit factory.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, resolver middleware.PrincipalResolver, limiter *ratelimit.Limiter, h Handlers) *Server {
	r := chi.NewRouter()
	limit := middleware.NewLimitFactory(limiter)

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(resolver))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)
	r.Use(middleware.RouteGuard(middleware.GuardRoutes{
		Protected: []string{constants.AppPath},
		AuthEntry: []string{constants.LoginPath, "/register"},
	}))

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes(limit))
		api.Mount("/me", h.Account.Routes(limit))
		api.Mount("/tasks", h.Task.Routes(limit))
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
