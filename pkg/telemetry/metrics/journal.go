package metrics

import (
	"wavecast-hq/tunegate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// JournalMetrics tracks metrics for the request journal.
//
// Metrics:
//   - tunegate_gateway_journal_records_total: Records accepted for async write
//   - tunegate_gateway_journal_records_dropped_total: Records dropped at enqueue
type JournalMetrics struct {
	// Records accepted by the recorder
	recordsTotal prometheus.Counter

	// Records dropped because the write buffer was full or closed
	droppedTotal prometheus.Counter
}

// NewJournalMetrics creates and registers journal metrics with the provided registry.
func NewJournalMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *JournalMetrics {
	jm := &JournalMetrics{
		recordsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "journal_records_total",
				Help:      "Total number of journal records accepted for writing",
			},
		),

		droppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "journal_records_dropped_total",
				Help:      "Total number of journal records dropped at enqueue",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		jm.recordsTotal,
		jm.droppedTotal,
	)

	return jm
}

// RecordWrite records a journal record accepted for async writing.
func (jm *JournalMetrics) RecordWrite() {
	jm.recordsTotal.Inc()
}

// RecordDrop records a journal record dropped at enqueue.
func (jm *JournalMetrics) RecordDrop() {
	jm.droppedTotal.Inc()
}
