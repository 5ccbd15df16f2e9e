package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kxiao02/pptweaver/internal/assist"
	"github.com/kxiao02/pptweaver/internal/config"
	"github.com/kxiao02/pptweaver/internal/induct"
	"github.com/kxiao02/pptweaver/internal/pipeline"
	"github.com/kxiao02/pptweaver/internal/schemacache"
)

// Server is the HTTP API server for pptweaver.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	cache        *schemacache.Store
	inducer      *induct.Inducer
	assist       *assist.Client // nil when running heuristics-only
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, cache *schemacache.Store, inducer *induct.Inducer, assistClient *assist.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		cache:        cache,
		inducer:      inducer,
		assist:       assistClient,
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
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/templates", s.handleRegisterTemplate)
		r.Get("/api/templates", s.handleListTemplates)
		r.Get("/api/templates/{templateID}", s.handleGetTemplate)
		r.Delete("/api/templates/{templateID}", s.handleDeleteTemplate)

		r.Post("/api/generate", s.handleGenerate)
		r.Get("/api/generate/{jobID}/status", s.handleGenerateStatus)
		r.Get("/api/generate/{jobID}/result", s.handleGenerateResult)

		r.Get("/api/stats/assist", s.handleAssistStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
