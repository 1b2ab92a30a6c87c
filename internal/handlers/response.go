package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"athena-kb/internal/contextutil"
	"athena-kb/internal/document"
	"athena-kb/internal/indexer"
	"athena-kb/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}

// handleServiceError maps service and domain errors to HTTP status codes.
func handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := contextutil.LoggerFromContext(ctx)

	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, document.ErrInvalidConfig):
		logger.WarnContext(ctx, "invalid request", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound), errors.Is(err, document.ErrDirectoryNotFound):
		logger.WarnContext(ctx, "resource not found", "error", err)
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrIngestInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, indexer.ErrVectorsDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.Canceled):
		logger.InfoContext(ctx, "request cancelled", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Request cancelled")
	default:
		logger.ErrorContext(ctx, "request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// methodAllowed writes 405 and returns false unless r uses method.
func methodAllowed(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	ctx := r.Context()
	contextutil.LoggerFromContext(ctx).WarnContext(ctx, "method not allowed", "method", r.Method)
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}
