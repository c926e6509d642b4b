package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/brightpath-labs/textbookd/internal/config"
	"github.com/brightpath-labs/textbookd/internal/pipeline"
	"github.com/brightpath-labs/textbookd/internal/retrieval"
)

// Server is the HTTP API server for textbookd.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	engine       *retrieval.Engine
	stats        *retrieval.QueryStats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, engine *retrieval.Engine, stats *retrieval.QueryStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		engine:       engine,
		stats:        stats,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.ServiceAPIKey, s.log))

		r.Post("/api/ingest", s.handleIngest)
		r.Post("/api/ingest/import", s.handleImport)
		r.Get("/api/ingest/{jobID}/status", s.handleIngestStatus)

		r.Post("/api/retrieve", s.handleRetrieve)
		r.Get("/api/stats/retrieval", s.handleRetrievalStats)

		r.Delete("/api/textbooks/{textbookID}", s.handleDeleteTextbook)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
