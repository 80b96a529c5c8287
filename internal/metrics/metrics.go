// Package metrics exports engine outcomes in the Prometheus format
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ecmo"

// Operation names used by the engine
const (
	OpPredict   = "predict"
	OpInterpret = "interpret"
)

// PrometheusRecorder counts backend call outcomes and their latency.
// Each recorder owns its registry so tests can create as many as they like.
type PrometheusRecorder struct {
	registry *prometheus.Registry
	results  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	stale    *prometheus.CounterVec
	edits    prometheus.Counter
}

// NewPrometheusRecorder creates a recorder with Go runtime and process collectors
func NewPrometheusRecorder() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	r := &PrometheusRecorder{
		registry: reg,
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_calls_total",
			Help:      "Backend calls by operation and result.",
		}, []string{"operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_call_duration_seconds",
			Help:      "Backend call latency by operation.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		stale: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_total",
			Help:      "Responses discarded because a newer request superseded them.",
		}, []string{"operation"}),
		edits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parameter_edits_total",
			Help:      "Parameter edits applied to the simulation state.",
		}),
	}
	reg.MustRegister(
		r.results,
		r.duration,
		r.stale,
		r.edits,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Observe records one completed backend call
func (r *PrometheusRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "error"
	}
	r.results.WithLabelValues(operation, result).Inc()
	r.duration.WithLabelValues(operation).Observe(duration.Seconds())
}

// Stale records a discarded response
func (r *PrometheusRecorder) Stale(operation string) {
	r.stale.WithLabelValues(operation).Inc()
}

// Edit records a parameter edit
func (r *PrometheusRecorder) Edit() {
	r.edits.Inc()
}

// Registry returns the underlying registry
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the exposition format
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
