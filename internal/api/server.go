package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/stagecrew/onboard-engine/internal/config"
	"github.com/stagecrew/onboard-engine/internal/roster"
	"github.com/stagecrew/onboard-engine/internal/solver"
	"github.com/stagecrew/onboard-engine/internal/store"
	"github.com/stagecrew/onboard-engine/internal/storage"
)

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	router         *chi.Mux
	allocator      *solver.Allocator
	detector       *solver.Detector
	solutions      store.SolutionStore
	repo           storage.Repository
	catalog        *roster.Loader
	authMiddleware *AuthMiddleware
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	allocator *solver.Allocator,
	solutions store.SolutionStore,
	repo storage.Repository,
	catalog *roster.Loader,
) *Server {
	s := &Server{
		config:         cfg,
		allocator:      allocator,
		detector:       solver.NewDetector(solutions, repo),
		solutions:      solutions,
		repo:           repo,
		catalog:        catalog,
		authMiddleware: NewAuthMiddleware(repo),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (outside versioned API - public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	// API v1 routes (protected by authentication)
	r.Route("/api/v1", func(r chi.Router) {
		// Apply authentication middleware to all /api/v1/* routes
		r.Use(s.authMiddleware.Authenticate)

		// Solutions
		r.Route("/solutions", func(r chi.Router) {
			r.With(s.authMiddleware.RequirePermission("solutions:write")).Post("/", s.handleSolve)

			r.Route("/{id}", func(r chi.Router) {
				r.With(s.authMiddleware.RequirePermission("solutions:read")).Get("/", s.handleGetSolution)
				r.With(s.authMiddleware.RequirePermission("solutions:write")).Delete("/", s.handleDeleteSolution)
				r.With(s.authMiddleware.RequirePermission("solutions:read")).Get("/conflicts", s.handleGetConflicts)
			})
		})

		// Groups
		r.With(s.authMiddleware.RequirePermission("groups:read")).Get("/groups", s.handleListGroups)

		// Candidates
		r.With(s.authMiddleware.RequirePermission("candidates:read")).Get("/candidates", s.handleListCandidates)
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
