package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"athena-kb/internal/handlers"
	"athena-kb/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Service      service.KnowledgeService
	HealthChecks []handlers.HealthCheck
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/ingest", handlers.NewIngestHandler(deps.Service))
		r.Method(http.MethodGet, "/documents", handlers.NewDocumentsHandler(deps.Service))
		r.Method(http.MethodGet, "/chunks", handlers.NewChunksHandler(deps.Service))
		r.Method(http.MethodGet, "/stats", handlers.NewStatsHandler(deps.Service))
		r.Method(http.MethodGet, "/search", handlers.NewSearchHandler(deps.Service))
		r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.HealthChecks...))
	})

	return r
}
