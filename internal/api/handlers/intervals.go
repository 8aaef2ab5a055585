package handlers

import (
	"context"
	"net/http"

	"github.com/producerfilm/backend/internal/contracts"
	"github.com/producerfilm/backend/pkg/logger"
)

// IntervalService produces the producer interval report
type IntervalService interface {
	WinnerIntervals(ctx context.Context) (*contracts.WinnerIntervalResult, error)
}

// IntervalHandler serves the producer interval report
type IntervalHandler struct {
	service IntervalService
	logger  *logger.Logger
}

// NewIntervalHandler creates a new interval handler
func NewIntervalHandler(service IntervalService, log *logger.Logger) *IntervalHandler {
	return &IntervalHandler{
		service: service,
		logger:  log,
	}
}

// WinnerInterval returns the producers with the shortest and longest gap
// between two consecutive wins. An empty history yields empty lists.
// GET /api/movies/winner-interval
func (h *IntervalHandler) WinnerInterval(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.WinnerIntervals(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "computing winner intervals")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
