package internal

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics collection for HTTP requests and
// workflow activity.
type Metrics struct {
	reqTotal      *prometheus.CounterVec
	reqLatency    *prometheus.HistogramVec
	workflowTotal *prometheus.CounterVec
	scansTotal    prometheus.Counter
	docsTotal     *prometheus.CounterVec
	registry      *prometheus.Registry
}

// NewMetrics creates a new Metrics instance with a private Prometheus registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	reqTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	reqLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	workflowTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_decisions_total",
			Help: "Transfer and disposal requests by kind and decision",
		},
		[]string{"kind", "decision"},
	)

	scansTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "verification_scans_total",
			Help: "Asset verification scans recorded",
		},
	)

	docsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documents_generated_total",
			Help: "PDF documents generated by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	registry.MustRegister(reqTotal, reqLatency, workflowTotal, scansTotal, docsTotal)

	return &Metrics{
		reqTotal:      reqTotal,
		reqLatency:    reqLatency,
		workflowTotal: workflowTotal,
		scansTotal:    scansTotal,
		docsTotal:     docsTotal,
		registry:      registry,
	}
}

// RecordWorkflowDecision counts a transfer or disposal event.
// kind is "transfer" or "disposal"; decision is the resulting status.
func (m *Metrics) RecordWorkflowDecision(kind, decision string) {
	m.workflowTotal.WithLabelValues(kind, decision).Inc()
}

// RecordScan counts one verification scan.
func (m *Metrics) RecordScan() {
	m.scansTotal.Inc()
}

// RecordDocument counts a PDF generation attempt.
// outcome is "ok" or "error".
func (m *Metrics) RecordDocument(kind, outcome string) {
	m.docsTotal.WithLabelValues(kind, outcome).Inc()
}

// Middleware returns a Chi middleware that collects metrics
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

			next.ServeHTTP(rw, r)

			// Use Chi's route pattern if available so paths stay low-cardinality
			path := r.URL.Path
			if chiCtx := chi.RouteContext(r.Context()); chiCtx != nil && len(chiCtx.RoutePatterns) > 0 {
				path = chiCtx.RoutePatterns[len(chiCtx.RoutePatterns)-1]
			}

			status := http.StatusText(rw.code)
			m.reqTotal.WithLabelValues(r.Method, path, status).Inc()
			m.reqLatency.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler returns an http.Handler that serves Prometheus metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// statusRecorder captures the HTTP status code for metrics
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.code = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	return sr.ResponseWriter.Write(b)
}
