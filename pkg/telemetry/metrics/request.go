package metrics

import (
	"time"

	"wavecast-hq/tunegate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks metrics for HTTP requests through the gateway.
//
// Metrics:
//   - tunegate_gateway_requests_total: Total request count by route, method, status
//   - tunegate_gateway_request_duration_seconds: Request duration histogram by route
//   - tunegate_gateway_requests_in_flight: Requests currently being served
type RequestMetrics struct {
	// Total request count
	requestsTotal *prometheus.CounterVec

	// Request duration histogram
	requestDuration *prometheus.HistogramVec

	// Requests currently in flight
	inFlight prometheus.Gauge
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"route", "method", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"route"},
		),

		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_in_flight",
				Help:      "Number of HTTP requests currently being served",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.inFlight,
	)

	return rm
}

// RecordRequest records metrics for a completed request.
//
// Parameters:
//   - route: Route pattern, never the raw URL (media URLs would explode
//     label cardinality)
//   - method: HTTP method
//   - status: HTTP status code as a string
//   - duration: Request duration
func (rm *RequestMetrics) RecordRequest(route, method, status string, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(route, method, status).Inc()
	rm.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RequestStarted marks a request as in flight.
func (rm *RequestMetrics) RequestStarted() {
	rm.inFlight.Inc()
}

// RequestFinished marks a request as done.
func (rm *RequestMetrics) RequestFinished() {
	rm.inFlight.Dec()
}
