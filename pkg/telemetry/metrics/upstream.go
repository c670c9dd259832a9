package metrics

import (
	"wavecast-hq/tunegate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics tracks calls against the upstream media API.
//
// Metrics:
//   - tunegate_gateway_upstream_requests_total: Calls by operation and status
//   - tunegate_gateway_upstream_latency_seconds: Call latency by operation
//   - tunegate_gateway_upstream_errors_total: Errors by operation and type
type UpstreamMetrics struct {
	// Upstream call counter
	requests *prometheus.CounterVec

	// Upstream call latency histogram
	latency *prometheus.HistogramVec

	// Upstream error counter
	errors *prometheus.CounterVec
}

// NewUpstreamMetrics creates and registers upstream metrics with the provided registry.
func NewUpstreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UpstreamMetrics {
	um := &UpstreamMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_requests_total",
				Help:      "Total number of upstream API calls",
			},
			[]string{"operation", "status"},
		),

		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_latency_seconds",
				Help:      "Upstream API call latency in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"operation"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_errors_total",
				Help:      "Total number of upstream errors by type",
			},
			[]string{"operation", "error_type"},
		),
	}

	// Register all metrics
	registry.MustRegister(
		um.requests,
		um.latency,
		um.errors,
	)

	return um
}

// RecordRequest records an upstream API call.
//
// Parameters:
//   - operation: Upstream operation ("player", "search", "stream")
//   - status: "success" or "error"
//   - latencySeconds: Call latency in seconds
func (um *UpstreamMetrics) RecordRequest(operation, status string, latencySeconds float64) {
	um.requests.WithLabelValues(operation, status).Inc()
	um.latency.WithLabelValues(operation).Observe(latencySeconds)
}

// RecordError records an upstream failure.
//
// Parameters:
//   - operation: Upstream operation
//   - errorType: Error classification
//
// Common error types:
//   - "timeout": Deadline hit talking to the upstream
//   - "upstream": Upstream answered with a failure status
//   - "parse": Response body did not decode
//   - "not_found": Media rejected as unknown or unplayable
//   - "validation": Input rejected before any network call
//   - "network": Connection-level failure
func (um *UpstreamMetrics) RecordError(operation, errorType string) {
	um.errors.WithLabelValues(operation, errorType).Inc()
}
