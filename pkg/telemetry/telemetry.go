package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wavecast-hq/tunegate/pkg/config"
	"wavecast-hq/tunegate/pkg/telemetry/health"
	"wavecast-hq/tunegate/pkg/telemetry/logging"
	"wavecast-hq/tunegate/pkg/telemetry/metrics"
	"wavecast-hq/tunegate/pkg/telemetry/tracing"
)

// Telemetry bundles the observability stack: structured logging,
// Prometheus metrics, OpenTelemetry tracing, and health probes.
// Components are always constructed; disabled ones are no-ops, so
// callers never need nil checks.
type Telemetry struct {
	cfg *config.TelemetryConfig

	version   string
	commit    string
	buildTime string

	logger    *logging.Logger
	collector *metrics.Collector
	tracer    *tracing.Tracer
	checker   *health.Checker
}

// New assembles the telemetry stack from configuration. The version,
// commit, and buildTime identify the running binary in traces and on
// the version endpoint.
func New(cfg *config.TelemetryConfig, version, commit, buildTime string) (*Telemetry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("telemetry config is nil")
	}

	logger, err := logging.New(logging.Config{
		Level:             cfg.Logging.Level,
		Format:            cfg.Logging.Format,
		AddSource:         cfg.Logging.AddSource,
		RedactCredentials: cfg.Logging.RedactCredentials,
	})
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	tracer, err := tracing.New(&cfg.Tracing, version)
	if err != nil {
		return nil, fmt.Errorf("creating tracer: %w", err)
	}

	collector := metrics.NewCollector(&cfg.Metrics, nil)
	checker := health.New(cfg.Health.CheckTimeout)

	return &Telemetry{
		cfg:       cfg,
		version:   version,
		commit:    commit,
		buildTime: buildTime,
		logger:    logger,
		collector: collector,
		tracer:    tracer,
		checker:   checker,
	}, nil
}

// Logger returns the structured logger.
func (t *Telemetry) Logger() *logging.Logger {
	return t.logger
}

// Metrics returns the metrics collector.
func (t *Telemetry) Metrics() *metrics.Collector {
	return t.collector
}

// Tracer returns the tracer.
func (t *Telemetry) Tracer() *tracing.Tracer {
	return t.tracer
}

// Health returns the health checker. Components register their
// readiness checks on it.
func (t *Telemetry) Health() *health.Checker {
	return t.checker
}

// Version returns the binary version passed to New.
func (t *Telemetry) Version() string {
	return t.version
}

// Mount registers the observability endpoints on mux: the Prometheus
// metrics endpoint, the liveness and readiness probes, and /version.
// The metrics and probe endpoints honor their Enabled flags.
func (t *Telemetry) Mount(mux *http.ServeMux) {
	if t.cfg.Metrics.Enabled {
		path := t.cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, promhttp.HandlerFor(
			t.collector.Registry(),
			promhttp.HandlerOpts{},
		))
	}

	if t.cfg.Health.Enabled {
		health.Mount(mux, t.checker, &t.cfg.Health)
	}

	mux.HandleFunc("/version", health.VersionHandler(t.version, t.commit, t.buildTime))
}

// Shutdown flushes pending trace exports. Call before process exit.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if err := t.tracer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down tracer: %w", err)
	}
	return nil
}
