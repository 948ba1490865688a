// Package server is the thin HTTP layer over the workout core: request
// parsing, identity resolution, and error-to-status mapping live here;
// all invariants live in the session, records, and stats packages.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/session"
	"github.com/claude/ironlog/internal/stats"
	"github.com/claude/ironlog/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Store is the storage surface the HTTP layer reads and writes directly,
// bypassing the engines. *storage.DB satisfies it.
type Store interface {
	InsertTemplate(ctx context.Context, t models.WorkoutTemplate) error
	GetTemplate(ctx context.Context, ownerID, templateID uuid.UUID) (*models.WorkoutTemplate, error)
	ListTemplates(ctx context.Context, ownerID uuid.UUID) ([]models.WorkoutTemplate, error)
	DeleteTemplate(ctx context.Context, ownerID, templateID uuid.UUID) error
	ListRecords(ctx context.Context, ownerID uuid.UUID, exerciseID string) ([]models.PersonalRecord, error)
	SessionsInRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]models.WorkoutSession, error)
	GetOrCreateUser(ctx context.Context, login, displayName string) (uuid.UUID, error)
}

// Compile-time check: *storage.DB satisfies Store.
var _ Store = (*storage.DB)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	engine *session.Engine
	stats  *stats.Aggregator
	store  Store
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(engine *session.Engine, aggregator *stats.Aggregator, store Store, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		engine: engine,
		stats:  aggregator,
		store:  store,
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
	s.router.Use(Metrics)
	s.router.Use(CORS)

	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Use(UserAuth(s.store, s.log))

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleStartSession)
			r.Get("/", s.handleListSessions)
			r.Get("/{id}", s.handleGetSession)
			r.Post("/{id}/sets", s.handleLogSet)
			r.Post("/{id}/exercises", s.handleAddExercise)
			r.Post("/{id}/complete", s.handleCompleteSession)
			r.Post("/{id}/abandon", s.handleAbandonSession)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Post("/", s.handleCreateTemplate)
			r.Get("/", s.handleListTemplates)
			r.Get("/{id}", s.handleGetTemplate)
			r.Delete("/{id}", s.handleDeleteTemplate)
		})

		r.Get("/stats/period", s.handlePeriodStats)
		r.Get("/stats/alltime", s.handleAllTimeStats)
		r.Get("/records", s.handleListRecords)
	})
}
