package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder publishes operation metrics to a Prometheus
// registry. It fulfills MetricsRecorder for deployments scraped by an
// external collector.
type PrometheusMetricsRecorder struct {
	results   *prometheus.CounterVec
	durations *prometheus.HistogramVec
	fallbacks prometheus.Counter
}

// NewPrometheusMetricsRecorder registers the mazecore collectors with reg and
// returns the recorder. Registering the same recorder twice on one registry
// panics, matching prometheus.MustRegister semantics.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) *PrometheusMetricsRecorder {
	r := &PrometheusMetricsRecorder{
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mazecore",
			Name:      "operations_total",
			Help:      "Service operation outcomes by status.",
		}, []string{"operation", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mazecore",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mazecore",
			Name:      "trial_sequence_fallbacks_total",
			Help:      "Trial sequences that degraded to the unconstrained pool order.",
		}),
	}
	reg.MustRegister(r.results, r.durations, r.fallbacks)
	return r
}

// Observe records a service operation outcome.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.results.WithLabelValues(operation, status).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// AddFallbacks accumulates trial-sequence degradations.
func (r *PrometheusMetricsRecorder) AddFallbacks(_ context.Context, n int) {
	if n <= 0 {
		return
	}
	r.fallbacks.Add(float64(n))
}
