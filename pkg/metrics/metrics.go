// Package metrics groups the Prometheus instruments exported at /metrics.
// Every method is safe on a nil *Metrics so components can run without
// instrumentation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "leadline"

// Request outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeFastPath = "fast_path"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// Analytics drop reasons.
const (
	DropQueueFull    = "queue_full"
	DropPublishError = "publish_error"
	DropPoolClosed   = "pool_closed"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	Requests            *prometheus.CounterVec
	PhaseLatency        *prometheus.HistogramVec
	RetrievalFailures   prometheus.Counter
	GenerationFallbacks prometheus.Counter
	AnalyticsDropped    *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the instruments on a fresh registry that also carries the Go
// and process collectors.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(namespace, reg)
}

// NewWithRegistry registers the instruments on reg.
func NewWithRegistry(namespace string, reg *prometheus.Registry) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Chat requests by conversation stage and outcome.",
		}, []string{"stage", "outcome"}),
		PhaseLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_latency_seconds",
			Help:      "Latency of each request phase in seconds.",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		}, []string{"phase"}),
		RetrievalFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_failures_total",
			Help:      "Retrieval calls that failed and degraded to empty context.",
		}),
		GenerationFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_stream_fallbacks_total",
			Help:      "Streaming generations that fell back to a one-shot call.",
		}),
		AnalyticsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_events_dropped_total",
			Help:      "Analytics events dropped by reason.",
		}, []string{"reason"}),
		gatherer: reg,
	}
}

// ObserveRequest counts a finished chat request.
func (m *Metrics) ObserveRequest(stage, outcome string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(stage, outcome).Inc()
}

// ObservePhase records the latency of a request phase.
func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.PhaseLatency.WithLabelValues(phase).Observe(d.Seconds())
}

// RetrievalFailed counts a degraded retrieval.
func (m *Metrics) RetrievalFailed() {
	if m == nil {
		return
	}
	m.RetrievalFailures.Inc()
}

// GenerationFellBack counts a streaming to one-shot fallback.
func (m *Metrics) GenerationFellBack() {
	if m == nil {
		return
	}
	m.GenerationFallbacks.Inc()
}

// AnalyticsDrop counts a dropped analytics event.
func (m *Metrics) AnalyticsDrop(reason string) {
	if m == nil {
		return
	}
	m.AnalyticsDropped.WithLabelValues(reason).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
