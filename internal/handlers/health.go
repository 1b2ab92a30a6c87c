package handlers

import (
	"context"
	"net/http"
	"time"

	"athena-kb/internal/contextutil"
)

// HealthCheck tests one dependency. Check returns nil when it is usable.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	checks             []HealthCheck
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler running checks in order.
func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{
		checks:             checks,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status: "healthy" or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// List of issues (only present if status is unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
// Returns 200 OK if every check passes, 503 Service Unavailable otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if !methodAllowed(w, r, http.MethodGet) {
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string, len(h.checks))
	var issues []string
	for _, c := range h.checks {
		if err := c.Check(checkCtx); err != nil {
			logger.WarnContext(ctx, "health check failed", "check", c.Name, "error", err)
			checks[c.Name] = "error"
			issues = append(issues, c.Name+"_unavailable")
			continue
		}
		checks[c.Name] = "ok"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if len(issues) > 0 {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(ctx, w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	})
}
