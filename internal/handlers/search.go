package handlers

import (
	"net/http"
	"strconv"

	"athena-kb/internal/indexer"
	"athena-kb/internal/service"
)

// SearchResponse holds the chunks most similar to a query.
type SearchResponse struct {
	Query string              `json:"query"`
	Hits  []indexer.SearchHit `json:"hits"`
}

// SearchHandler handles GET /api/search?q=<text>&k=<n>&source=<path>.
type SearchHandler struct {
	svc service.KnowledgeService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(svc service.KnowledgeService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !methodAllowed(w, r, http.MethodGet) {
		return
	}

	query := r.URL.Query()
	req := service.SearchRequest{
		Query:  query.Get("q"),
		Source: query.Get("source"),
	}
	if raw := query.Get("k"); raw != "" {
		k, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "k must be an integer")
			return
		}
		req.K = k
	}

	hits, err := h.svc.Search(ctx, req)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	if hits == nil {
		hits = []indexer.SearchHit{}
	}

	writeJSON(ctx, w, http.StatusOK, SearchResponse{Query: req.Query, Hits: hits})
}
