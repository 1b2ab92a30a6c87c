package handlers

import (
	"net/http"

	"athena-kb/internal/service"
)

// StatsHandler handles GET /api/stats.
type StatsHandler struct {
	svc service.KnowledgeService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(svc service.KnowledgeService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !methodAllowed(w, r, http.MethodGet) {
		return
	}

	stats, err := h.svc.Stats(ctx)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, stats)
}
