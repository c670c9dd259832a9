package metrics

import (
	"wavecast-hq/tunegate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RateLimitMetrics tracks the per-client rate limiter.
//
// Metrics:
//   - tunegate_gateway_ratelimit_throttled_total: Requests rejected with 429
//   - tunegate_gateway_ratelimit_tracked_clients: Clients with live windows
//   - tunegate_gateway_ratelimit_evictions_total: Expired windows removed
type RateLimitMetrics struct {
	throttledTotal *prometheus.CounterVec

	trackedClients prometheus.Gauge

	evictionsTotal prometheus.Counter
}

// NewRateLimitMetrics creates and registers rate limiter metrics with the
// provided registry.
func NewRateLimitMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RateLimitMetrics {
	rlm := &RateLimitMetrics{
		throttledTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "ratelimit_throttled_total",
				Help:      "Total number of requests rejected by the rate limiter",
			},
			[]string{"route"},
		),

		trackedClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "ratelimit_tracked_clients",
				Help:      "Number of clients the rate limiter currently tracks",
			},
		),

		evictionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "ratelimit_evictions_total",
				Help:      "Total number of expired limiter windows evicted",
			},
		),
	}

	registry.MustRegister(
		rlm.throttledTotal,
		rlm.trackedClients,
		rlm.evictionsTotal,
	)

	return rlm
}

// RecordThrottled records a request rejected with 429.
func (rlm *RateLimitMetrics) RecordThrottled(route string) {
	rlm.throttledTotal.WithLabelValues(route).Inc()
}

// UpdateTrackedClients sets the number of clients with live windows.
// The client identity itself is never a label.
func (rlm *RateLimitMetrics) UpdateTrackedClients(n int) {
	rlm.trackedClients.Set(float64(n))
}

// RecordEvictions adds n to the eviction counter.
func (rlm *RateLimitMetrics) RecordEvictions(n int) {
	rlm.evictionsTotal.Add(float64(n))
}
