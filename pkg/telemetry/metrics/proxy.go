package metrics

import (
	"wavecast-hq/tunegate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ProxyMetrics tracks the egress proxy pool.
//
// Metrics:
//   - tunegate_gateway_proxy_selections_total: Picks by endpoint key
//   - tunegate_gateway_proxy_pool_size: Endpoints currently in the pool
//
// Endpoint labels use the credential-free key form (scheme://host:port).
type ProxyMetrics struct {
	selectionsTotal *prometheus.CounterVec

	poolSize prometheus.Gauge
}

// NewProxyMetrics creates and registers proxy pool metrics with the
// provided registry.
func NewProxyMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ProxyMetrics {
	pm := &ProxyMetrics{
		selectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "proxy_selections_total",
				Help:      "Total number of proxy endpoint selections",
			},
			[]string{"endpoint"},
		),

		poolSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "proxy_pool_size",
				Help:      "Number of endpoints currently in the proxy pool",
			},
		),
	}

	registry.MustRegister(
		pm.selectionsTotal,
		pm.poolSize,
	)

	return pm
}

// RecordSelection records an endpoint being picked.
func (pm *ProxyMetrics) RecordSelection(endpoint string) {
	pm.selectionsTotal.WithLabelValues(endpoint).Inc()
}

// UpdatePoolSize sets the current pool size.
func (pm *ProxyMetrics) UpdatePoolSize(n int) {
	pm.poolSize.Set(float64(n))
}
