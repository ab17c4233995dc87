// Package api provides the HTTP API server and handlers for the BookDue application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bookdueapp/bookdue-server/internal/http/response"
	"github.com/bookdueapp/bookdue-server/internal/importer"
	"github.com/bookdueapp/bookdue-server/internal/ratelimit"
	"github.com/bookdueapp/bookdue-server/internal/service"
	"github.com/bookdueapp/bookdue-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store              *store.Store
	authService        *service.AuthService
	deadlineService    *service.DeadlineService
	paceService        *service.PaceService
	achievementService *service.AchievementService
	searchService      *service.SearchService
	importer           *importer.Importer
	limiter            *ratelimit.KeyedRateLimiter
	router             *chi.Mux
	logger             *slog.Logger
}

// Options bundles the server's dependencies.
type Options struct {
	Store              *store.Store
	AuthService        *service.AuthService
	DeadlineService    *service.DeadlineService
	PaceService        *service.PaceService
	AchievementService *service.AchievementService
	SearchService      *service.SearchService
	Importer           *importer.Importer
	Limiter            *ratelimit.KeyedRateLimiter
	Logger             *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(opts Options) *Server {
	s := &Server{
		store:              opts.Store,
		authService:        opts.AuthService,
		deadlineService:    opts.DeadlineService,
		paceService:        opts.PaceService,
		achievementService: opts.AchievementService,
		searchService:      opts.SearchService,
		importer:           opts.Importer,
		limiter:            opts.Limiter,
		router:             chi.NewRouter(),
		logger:             opts.Logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if s.limiter != nil {
		s.router.Use(s.rateLimit)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints (public).
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
		})

		// Protected user endpoints.
		r.Route("/users", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/me", s.handleGetCurrentUser)
		})

		// Deadlines (require auth for ownership checks).
		r.Route("/deadlines", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleCreateDeadline)
			r.Get("/", s.handleListDeadlines)
			r.Get("/{id}", s.handleGetDeadline)
			r.Patch("/{id}", s.handleUpdateDeadline)
			r.Delete("/{id}", s.handleDeleteDeadline)
			r.Post("/{id}/progress", s.handleAddProgress)
			r.Get("/{id}/status", s.handleDeadlineStatus)
		})

		// Pace (require auth).
		r.Route("/pace", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleGetPace)
			r.Get("/listening", s.handleGetListeningPace)
		})

		// Streaks and achievements (require auth).
		r.With(s.requireAuth).Get("/streaks", s.handleGetStreaks)
		r.Route("/achievements", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleListAchievements)
			r.Post("/check", s.handleCheckAchievements)
		})

		// Search (require auth; results are scoped to the caller).
		r.With(s.requireAuth).Get("/search", s.handleSearch)

		// Device backup import (require auth).
		r.With(s.requireAuth).Post("/import", s.handleImport)
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
