package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/producerfilm/backend/internal/api/handlers"
	"github.com/producerfilm/backend/pkg/logger"
	"github.com/producerfilm/backend/pkg/metrics"
)

// Handlers groups the endpoint handlers mounted by NewRouter
type Handlers struct {
	Health    *handlers.HealthHandler
	Movies    *handlers.MovieHandler
	Intervals *handlers.IntervalHandler
	Import    *handlers.ImportHandler
}

// NewRouter creates and configures the HTTP router.
// m and limiter may be nil to disable metrics and rate limiting.
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, m *metrics.Manager, limiter *rate.Limiter, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", h.Health.Health).Methods("GET")

	// Prometheus exposition
	if m != nil {
		r.Handle("/metrics", m.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()

	// Movie endpoints (fixed paths before {id})
	api.HandleFunc("/movies", h.Movies.List).Methods("GET")
	api.HandleFunc("/movies", h.Movies.Create).Methods("POST")
	api.HandleFunc("/movies/winners", h.Movies.Winners).Methods("GET")
	api.HandleFunc("/movies/statistics", h.Movies.Statistics).Methods("GET")
	api.HandleFunc("/movies/winner-interval", h.Intervals.WinnerInterval).Methods("GET")
	api.HandleFunc("/movies/import", h.Import.Import).Methods("POST")
	api.HandleFunc("/movies/{id:[0-9]+}", h.Movies.Get).Methods("GET")
	api.HandleFunc("/movies/{id:[0-9]+}", h.Movies.Update).Methods("PUT")
	api.HandleFunc("/movies/{id:[0-9]+}", h.Movies.Delete).Methods("DELETE")

	if limiter != nil {
		api.Use(rateLimitMiddleware(limiter, log))
	}

	return withMiddleware(r, m, log)
}

// withMiddleware wraps the whole router so unmatched (404/405) and panicking
// requests are still logged and counted.
// Order, outermost first: request id, logging, metrics, recovery.
func withMiddleware(r *mux.Router, m *metrics.Manager, log *logger.Logger) http.Handler {
	r.Use(routeLabelMiddleware)

	var h http.Handler = r
	h = recoveryMiddleware(log)(h)
	if m != nil {
		h = metricsMiddleware(m)(h)
	}
	h = loggingMiddleware(log)(h)
	return requestIDMiddleware(h)
}
