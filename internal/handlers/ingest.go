package handlers

import (
	"net/http"
	"strconv"

	"athena-kb/internal/contextutil"
	"athena-kb/internal/service"
)

// IngestHandler handles HTTP requests for indexing the documents directory.
type IngestHandler struct {
	svc service.KnowledgeService
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(svc service.KnowledgeService) *IngestHandler {
	return &IngestHandler{svc: svc}
}

// ServeHTTP runs an ingestion synchronously and returns the report.
// ?force=true clears the index first.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if !methodAllowed(w, r, http.MethodPost) {
		return
	}

	force := false
	if raw := r.URL.Query().Get("force"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "force must be a boolean")
			return
		}
		force = parsed
	}

	logger.InfoContext(ctx, "ingestion triggered via API", "force", force)

	report, err := h.svc.Ingest(ctx, service.IngestRequest{Force: force})
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, report)
}
