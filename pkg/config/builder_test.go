package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with sensible defaults for testing.
// The resulting configuration is valid and can be used immediately.
func NewTestConfig() *ConfigBuilder {
	cfg := Config{}
	ApplyDefaults(&cfg)
	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithHost sets the server host.
func (b *ConfigBuilder) WithHost(host string) *ConfigBuilder {
	b.cfg.Server.Host = host
	return b
}

// WithPort sets the server port.
func (b *ConfigBuilder) WithPort(port int) *ConfigBuilder {
	b.cfg.Server.Port = port
	return b
}

// WithRateLimit sets the rate limit and window.
func (b *ConfigBuilder) WithRateLimit(limit int64, window time.Duration) *ConfigBuilder {
	b.cfg.RateLimit.Limit = limit
	b.cfg.RateLimit.Window = window
	return b
}

// WithProxyEndpoints enables the static proxy pool with the given endpoints.
func (b *ConfigBuilder) WithProxyEndpoints(endpoints ...string) *ConfigBuilder {
	b.cfg.Proxy.Enabled = true
	b.cfg.Proxy.Source = "static"
	b.cfg.Proxy.Endpoints = endpoints
	return b
}

// WithProxyStrategy sets the proxy selection strategy.
func (b *ConfigBuilder) WithProxyStrategy(strategy string, seed int64) *ConfigBuilder {
	b.cfg.Proxy.Strategy = strategy
	b.cfg.Proxy.Seed = seed
	return b
}

// WithUpstreamBaseURL sets the upstream base URL.
func (b *ConfigBuilder) WithUpstreamBaseURL(baseURL string) *ConfigBuilder {
	b.cfg.Upstream.BaseURL = baseURL
	return b
}

// WithJournalBackend sets the journal backend.
func (b *ConfigBuilder) WithJournalBackend(backend string) *ConfigBuilder {
	b.cfg.Journal.Enabled = true
	b.cfg.Journal.Backend = backend
	return b
}

// WithJournalSQLitePath sets the SQLite database path for the journal.
func (b *ConfigBuilder) WithJournalSQLitePath(path string) *ConfigBuilder {
	b.cfg.Journal.Enabled = true
	b.cfg.Journal.Backend = "sqlite"
	b.cfg.Journal.SQLite.Path = path
	return b
}

// WithLoggingLevel sets the logging level.
func (b *ConfigBuilder) WithLoggingLevel(level string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	return b
}

// WithLoggingFormat sets the logging format.
func (b *ConfigBuilder) WithLoggingFormat(format string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Format = format
	return b
}

// WithMetricsEnabled sets whether metrics are enabled.
func (b *ConfigBuilder) WithMetricsEnabled(enabled bool) *ConfigBuilder {
	b.cfg.Telemetry.Metrics.Enabled = enabled
	return b
}

// WithTracingEnabled sets whether tracing is enabled.
func (b *ConfigBuilder) WithTracingEnabled(enabled bool, endpoint string) *ConfigBuilder {
	b.cfg.Telemetry.Tracing.Enabled = enabled
	b.cfg.Telemetry.Tracing.Endpoint = endpoint
	return b
}

// WithTLS sets TLS configuration.
func (b *ConfigBuilder) WithTLS(certFile, keyFile string) *ConfigBuilder {
	b.cfg.Server.TLS.Enabled = true
	b.cfg.Server.TLS.CertFile = certFile
	b.cfg.Server.TLS.KeyFile = keyFile
	return b
}

// MinimalConfig returns a minimal valid configuration for testing.
// This is useful for tests that don't care about most configuration values.
func MinimalConfig() *Config {
	return NewTestConfig().Build()
}
