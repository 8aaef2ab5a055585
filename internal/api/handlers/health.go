package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/producerfilm/backend/pkg/database"
	"github.com/producerfilm/backend/pkg/logger"
)

const serviceName = "producerfilm-api"

// DatabaseChecker reports connection pool health
type DatabaseChecker interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

// MovieCounter reports the size of the stored history
type MovieCounter interface {
	CountMovies(ctx context.Context) (int, error)
}

// HealthHandler reports service and database health
type HealthHandler struct {
	db      DatabaseChecker
	counter MovieCounter
	logger  *logger.Logger
}

// NewHealthHandler creates a health handler. db may be nil when the service
// runs without Postgres.
func NewHealthHandler(db DatabaseChecker, counter MovieCounter, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:      db,
		counter: counter,
		logger:  log,
	}
}

// Health returns server health status
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	body := map[string]interface{}{
		"status":  "ok",
		"service": serviceName,
	}

	if h.db != nil {
		health, err := h.db.HealthCheck(ctx)
		body["database"] = health
		if err != nil {
			h.logger.WithError(err).Warn("Database health check failed")
			body["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	if h.counter != nil && status == http.StatusOK {
		if n, err := h.counter.CountMovies(ctx); err == nil {
			body["movies"] = n
		}
	}

	respondJSON(w, status, body)
}
