// Package server exposes the snapshot engine and ingest pipeline over HTTP.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/vitalsnap/internal/cache"
	"github.com/claude/vitalsnap/internal/ingest"
	"github.com/claude/vitalsnap/internal/sleep"
	"github.com/claude/vitalsnap/internal/snapshot"
	"github.com/claude/vitalsnap/internal/storage"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store  storage.Store
	agg    *snapshot.Aggregator
	sleep  *sleep.Builder
	proc   *ingest.Processor
	cache  *cache.Cache
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured. snapCache may be nil
// when Redis is not configured.
func New(store storage.Store, agg *snapshot.Aggregator, snapCache *cache.Cache, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:  store,
		agg:    agg,
		sleep:  sleep.New(store),
		proc:   ingest.New(store, log),
		cache:  snapCache,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealthz)

	// Ingest endpoint (API key required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleIngest)
	})

	// Read endpoints (no auth — tsnet handles access)
	s.router.Get("/api/v1/snapshot", s.handleSnapshot)
	s.router.Post("/api/v1/authorize", s.handleAuthorize)
	s.router.Get("/api/v1/sleep/summary", s.handleSleepSummary)
	s.router.Get("/api/v1/apnea", s.handleApnea)
	s.router.Get("/api/v1/workouts", s.handleWorkouts)
}
