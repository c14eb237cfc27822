package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"docbase/internal/contextutil"
)

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	metaDB             *sql.DB
	vectorDB           *sql.DB
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(metaDB, vectorDB *sql.DB) *HealthHandler {
	return &HealthHandler{
		metaDB:             metaDB,
		vectorDB:           vectorDB,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Issues    []string          `json:"issues,omitempty"`
}

// ServeHTTP handles GET /healthz. Returns 200 when both databases answer
// a ping, 503 otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string

	if err := h.metaDB.PingContext(checkCtx); err != nil {
		logger.WarnContext(ctx, "metadata database health check failed", "error", err)
		checks["metadata_db"] = "error"
		issues = append(issues, "metadata_db_unavailable")
	} else {
		checks["metadata_db"] = "ok"
	}

	if err := h.vectorDB.PingContext(checkCtx); err != nil {
		logger.WarnContext(ctx, "vector database health check failed", "error", err)
		checks["vector_db"] = "error"
		issues = append(issues, "vector_db_unavailable")
	} else {
		checks["vector_db"] = "ok"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if len(issues) > 0 {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	})
}
