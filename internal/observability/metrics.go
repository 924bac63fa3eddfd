package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the console's Prometheus collectors on a private registry.
// All recording methods are safe on a nil receiver.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	signIns         *prometheus.CounterVec
	backendRetries  *prometheus.CounterVec
	shapes          *prometheus.CounterVec
	enrichments     *prometheus.CounterVec
	sessionEvents   *prometheus.CounterVec
}

// NewMetrics registers the console collectors plus the Go and process
// collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_http_requests_total",
			Help: "HTTP requests served by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "console_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_http_errors_total",
			Help: "Error responses by route, method and error code.",
		}, []string{"route", "method", "code"}),
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_sign_ins_total",
			Help: "Sign-in attempts by method and outcome.",
		}, []string{"method", "status"}),
		backendRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_backend_retries_total",
			Help: "Backend calls retried after a connection-level failure.",
		}, []string{"method"}),
		shapes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_backend_payload_shapes_total",
			Help: "Backend payload envelopes recognised per resource.",
		}, []string{"resource", "shape"}),
		enrichments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_profile_enrichments_total",
			Help: "Background profile enrichments by outcome.",
		}, []string{"outcome"}),
		sessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_session_events_total",
			Help: "Session lifecycle events by type.",
		}, []string{"type"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.errors,
		m.signIns,
		m.backendRetries,
		m.shapes,
		m.enrichments,
		m.sessionEvents,
	)
	return m
}

// Registry exposes the underlying registry for tests and custom exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordSignIn counts a sign-in attempt; method is "credentials" or a
// provider name.
func (m *Metrics) RecordSignIn(method, status string) {
	if m == nil {
		return
	}
	m.signIns.WithLabelValues(method, status).Inc()
}

func (m *Metrics) RecordBackendRetry(method string) {
	if m == nil {
		return
	}
	m.backendRetries.WithLabelValues(method).Inc()
}

// RecordShape counts which envelope a backend payload arrived in.
func (m *Metrics) RecordShape(resource, shape string) {
	if m == nil {
		return
	}
	m.shapes.WithLabelValues(resource, shape).Inc()
}

func (m *Metrics) RecordEnrichment(outcome string) {
	if m == nil {
		return
	}
	m.enrichments.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordSessionEvent(eventType string) {
	if m == nil {
		return
	}
	m.sessionEvents.WithLabelValues(eventType).Inc()
}
