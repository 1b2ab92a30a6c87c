package handlers

import (
	"net/http"

	"athena-kb/internal/document"
	"athena-kb/internal/service"
	"athena-kb/internal/storage"
)

// DocumentsResponse lists indexed documents.
type DocumentsResponse struct {
	Documents []*storage.DocumentRecord `json:"documents"`
}

// ChunksResponse lists the chunks of one document.
type ChunksResponse struct {
	Source string           `json:"source"`
	Chunks []document.Chunk `json:"chunks"`
}

// DocumentsHandler handles GET /api/documents.
type DocumentsHandler struct {
	svc service.KnowledgeService
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(svc service.KnowledgeService) *DocumentsHandler {
	return &DocumentsHandler{svc: svc}
}

func (h *DocumentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !methodAllowed(w, r, http.MethodGet) {
		return
	}

	docs, err := h.svc.Documents(ctx)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	if docs == nil {
		docs = []*storage.DocumentRecord{}
	}

	writeJSON(ctx, w, http.StatusOK, DocumentsResponse{Documents: docs})
}

// ChunksHandler handles GET /api/chunks?source=<path>.
type ChunksHandler struct {
	svc service.KnowledgeService
}

// NewChunksHandler creates a new ChunksHandler.
func NewChunksHandler(svc service.KnowledgeService) *ChunksHandler {
	return &ChunksHandler{svc: svc}
}

func (h *ChunksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !methodAllowed(w, r, http.MethodGet) {
		return
	}

	source := r.URL.Query().Get("source")
	chunks, err := h.svc.Chunks(ctx, source)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, ChunksResponse{Source: source, Chunks: chunks})
}
