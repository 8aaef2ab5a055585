// Package metrics provides Prometheus metrics for the producerfilm service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Import row outcomes
const (
	OutcomeImported = "imported"
	OutcomeSkipped  = "skipped"
)

// Manager owns the service metrics and the registry they live on.
// ⭐ SSOT: Prometheus 메트릭 정의는 여기서만
//
// A nil *Manager is valid and records nothing, so callers never need to
// check whether metrics are enabled.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Import
	importRows *prometheus.CounterVec

	// Winner intervals
	intervalComputation prometheus.Histogram
	intervalCache       *prometheus.CounterVec
}

// NewManager creates a metrics manager on its own registry (no default Go collectors).
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "producerfilm",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"method", "route"})

	m.importRows = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "import_rows_total",
		Help:      "Imported and skipped rows across all import sources",
	}, []string{"outcome"})

	m.intervalComputation = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "interval_computation_seconds",
		Help:      "Time spent computing producer winner intervals",
		Buckets:   m.histogramBuckets,
	})

	m.intervalCache = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "interval_cache_total",
		Help:      "Winner interval cache lookups by result",
	}, []string{"result"})
}

// Registry returns the registry backing this manager
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest counts one request and observes its duration
func (m *Manager) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordImportRows adds the outcome of one import run
func (m *Manager) RecordImportRows(imported, skipped int) {
	if m == nil {
		return
	}
	m.importRows.WithLabelValues(OutcomeImported).Add(float64(imported))
	m.importRows.WithLabelValues(OutcomeSkipped).Add(float64(skipped))
}

// ObserveIntervalComputation records how long one interval computation took
func (m *Manager) ObserveIntervalComputation(duration time.Duration) {
	if m == nil {
		return
	}
	m.intervalComputation.Observe(duration.Seconds())
}

// RecordIntervalCache counts a cache hit or miss for the interval result
func (m *Manager) RecordIntervalCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.intervalCache.WithLabelValues(result).Inc()
}
