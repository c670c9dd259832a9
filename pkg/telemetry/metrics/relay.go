package metrics

import (
	"time"

	"wavecast-hq/tunegate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RelayMetrics tracks media relay outcomes and throughput.
//
// Metrics:
//   - tunegate_gateway_relays_total: Finished relays by kind and outcome
//   - tunegate_gateway_relay_bytes: Payload bytes per relay
//   - tunegate_gateway_relay_duration_seconds: Relay duration
//   - tunegate_gateway_relays_active: Relays currently in flight
type RelayMetrics struct {
	relaysTotal *prometheus.CounterVec

	relayBytes *prometheus.HistogramVec

	relayDuration *prometheus.HistogramVec

	active *prometheus.GaugeVec
}

// NewRelayMetrics creates and registers relay metrics with the provided registry.
func NewRelayMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RelayMetrics {
	rm := &RelayMetrics{
		relaysTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "relays_total",
				Help:      "Total number of finished media relays by outcome",
			},
			[]string{"kind", "outcome"},
		),

		relayBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "relay_bytes",
				Help:      "Payload bytes written to the client per relay",
				Buckets:   cfg.RelayBytesBuckets,
			},
			[]string{"kind"},
		),

		relayDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "relay_duration_seconds",
				Help:      "Duration of media relays in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"kind"},
		),

		active: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "relays_active",
				Help:      "Number of media relays currently in flight",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		rm.relaysTotal,
		rm.relayBytes,
		rm.relayDuration,
		rm.active,
	)

	return rm
}

// RecordRelay records a finished relay.
//
// Parameters:
//   - kind: "stream" or "download"
//   - outcome: "completed", "failed_before_body", "aborted_mid_stream",
//     or "client_gone"
//   - duration: Relay duration
//   - bytes: Payload bytes written before the relay ended
//
// Bytes and duration are recorded for every outcome, aborted relays
// included.
func (rm *RelayMetrics) RecordRelay(kind, outcome string, duration time.Duration, bytes int64) {
	rm.relaysTotal.WithLabelValues(kind, outcome).Inc()
	rm.relayDuration.WithLabelValues(kind).Observe(duration.Seconds())
	rm.relayBytes.WithLabelValues(kind).Observe(float64(bytes))
}

// RelayStarted marks a relay as in flight.
func (rm *RelayMetrics) RelayStarted(kind string) {
	rm.active.WithLabelValues(kind).Inc()
}

// RelayFinished marks a relay as done.
func (rm *RelayMetrics) RelayFinished(kind string) {
	rm.active.WithLabelValues(kind).Dec()
}
