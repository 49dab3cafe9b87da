package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels of a bulk action.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailure = "failure"
	OutcomeInvalid = "invalid"
)

// Result labels of a single item or lifecycle operation.
const (
	ResultSucceeded = "succeeded"
	ResultFailed    = "failed"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	bulkActions     *prometheus.CounterVec
	bulkActionItems *prometheus.CounterVec
	lifecycleOps    *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry
// together with the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		bulkActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bulk_actions_total",
			Help: "Bulk action requests by action and overall outcome.",
		}, []string{"action", "outcome"}),
		bulkActionItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bulk_action_items_total",
			Help: "Per-asset results of bulk actions.",
		}, []string{"action", "result"}),
		lifecycleOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lifecycle_operations_total",
			Help: "Single-asset lifecycle operations by result.",
		}, []string{"operation", "result"}),
	}

	m.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		m.httpInFlight,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.bulkActions,
		m.bulkActionItems,
		m.lifecycleOps,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveBulkAction records one bulk request and its per-item counts.
func (m *Metrics) ObserveBulkAction(action, outcome string, succeeded, failed int) {
	if m == nil {
		return
	}
	m.bulkActions.WithLabelValues(action, outcome).Inc()
	if succeeded > 0 {
		m.bulkActionItems.WithLabelValues(action, ResultSucceeded).Add(float64(succeeded))
	}
	if failed > 0 {
		m.bulkActionItems.WithLabelValues(action, ResultFailed).Add(float64(failed))
	}
}

// ObserveLifecycle records one lifecycle operation.
func (m *Metrics) ObserveLifecycle(operation string, err error) {
	if m == nil {
		return
	}
	result := ResultSucceeded
	if err != nil {
		result = ResultFailed
	}
	m.lifecycleOps.WithLabelValues(operation, result).Inc()
}

// Instrument measures request count, latency and in-flight requests. The path
// label is the matched route template so ids do not explode cardinality.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := routeTemplate(r)
		status := strconv.Itoa(sw.code)
		m.httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
	})
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
