package config

import (
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	tests := []struct {
		name  string
		input Config
		check func(*testing.T, *Config)
	}{
		{
			name:  "empty config gets all defaults",
			input: Config{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.Host != DefaultServerHost {
					t.Errorf("expected host %q, got %q", DefaultServerHost, cfg.Server.Host)
				}
				if cfg.Server.Port != DefaultServerPort {
					t.Errorf("expected port %d, got %d", DefaultServerPort, cfg.Server.Port)
				}
				if cfg.Server.ReadTimeout != DefaultReadTimeout {
					t.Errorf("expected read timeout %v, got %v", DefaultReadTimeout, cfg.Server.ReadTimeout)
				}
				if cfg.Server.WriteTimeout != 0 {
					t.Errorf("expected zero write timeout for streaming, got %v", cfg.Server.WriteTimeout)
				}
				if cfg.RateLimit.Limit != DefaultRateLimit {
					t.Errorf("expected rate limit %d, got %d", DefaultRateLimit, cfg.RateLimit.Limit)
				}
				if cfg.RateLimit.Window != DefaultRateLimitWindow {
					t.Errorf("expected window %v, got %v", DefaultRateLimitWindow, cfg.RateLimit.Window)
				}
				if cfg.RateLimit.SweepSchedule != DefaultRateLimitSchedule {
					t.Errorf("expected sweep schedule %q, got %q", DefaultRateLimitSchedule, cfg.RateLimit.SweepSchedule)
				}
				if cfg.Proxy.Strategy != DefaultProxyStrategy {
					t.Errorf("expected strategy %q, got %q", DefaultProxyStrategy, cfg.Proxy.Strategy)
				}
				if cfg.Upstream.BaseURL != DefaultUpstreamBaseURL {
					t.Errorf("expected base URL %q, got %q", DefaultUpstreamBaseURL, cfg.Upstream.BaseURL)
				}
				if cfg.Upstream.ClientName != DefaultUpstreamClientName {
					t.Errorf("expected client name %q, got %q", DefaultUpstreamClientName, cfg.Upstream.ClientName)
				}
				if len(cfg.Upstream.AllowedHosts) == 0 {
					t.Error("expected default allowed hosts")
				}
				if cfg.Formats.DefaultQuality != DefaultQuality {
					t.Errorf("expected quality %q, got %q", DefaultQuality, cfg.Formats.DefaultQuality)
				}
				if cfg.Formats.DefaultDownloadFormat != DefaultDownloadFormat {
					t.Errorf("expected download format %q, got %q", DefaultDownloadFormat, cfg.Formats.DefaultDownloadFormat)
				}
				if cfg.Journal.Backend != DefaultJournalBackend {
					t.Errorf("expected journal backend %q, got %q", DefaultJournalBackend, cfg.Journal.Backend)
				}
				if cfg.Telemetry.Logging.Level != DefaultLoggingLevel {
					t.Errorf("expected logging level %q, got %q", DefaultLoggingLevel, cfg.Telemetry.Logging.Level)
				}
				if cfg.Telemetry.Logging.Format != DefaultLoggingFormat {
					t.Errorf("expected logging format %q, got %q", DefaultLoggingFormat, cfg.Telemetry.Logging.Format)
				}
				if cfg.Telemetry.Metrics.Path != DefaultMetricsPath {
					t.Errorf("expected metrics path %q, got %q", DefaultMetricsPath, cfg.Telemetry.Metrics.Path)
				}
			},
		},
		{
			name: "existing values are preserved",
			input: Config{
				Server: ServerConfig{
					Host:        "192.168.1.1",
					Port:        9090,
					ReadTimeout: 60 * time.Second,
				},
				RateLimit: RateLimitConfig{
					Limit:  5,
					Window: time.Minute,
				},
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.Host != "192.168.1.1" {
					t.Error("existing host was overwritten")
				}
				if cfg.Server.Port != 9090 {
					t.Error("existing port was overwritten")
				}
				if cfg.Server.ReadTimeout != 60*time.Second {
					t.Error("existing read timeout was overwritten")
				}
				if cfg.RateLimit.Limit != 5 {
					t.Error("existing rate limit was overwritten")
				}
				if cfg.RateLimit.Window != time.Minute {
					t.Error("existing window was overwritten")
				}
				// Check that unset values got defaults
				if cfg.Server.IdleTimeout != DefaultIdleTimeout {
					t.Error("idle timeout should get default when not set")
				}
				if cfg.RateLimit.MaxClients != DefaultRateLimitClients {
					t.Error("max clients should get default when not set")
				}
			},
		},
		{
			name:  "untouched sections default to enabled",
			input: Config{},
			check: func(t *testing.T, cfg *Config) {
				if !cfg.Server.CORS.Enabled {
					t.Error("untouched CORS section should default to enabled")
				}
				if !cfg.Journal.Enabled {
					t.Error("untouched journal section should default to enabled")
				}
				if !cfg.Telemetry.Metrics.Enabled {
					t.Error("untouched metrics section should default to enabled")
				}
				if !cfg.Telemetry.Health.Enabled {
					t.Error("untouched health section should default to enabled")
				}
				if !cfg.Telemetry.Logging.RedactCredentials {
					t.Error("untouched logging section should default to redacting credentials")
				}
			},
		},
		{
			name: "explicitly disabled sections stay disabled",
			input: Config{
				Journal: JournalConfig{
					Enabled: false,
					Backend: "memory",
				},
				Telemetry: TelemetryConfig{
					Metrics: MetricsConfig{
						Enabled: false,
						Path:    "/custom-metrics",
					},
				},
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Journal.Enabled {
					t.Error("configured journal section should keep enabled=false")
				}
				if cfg.Telemetry.Metrics.Enabled {
					t.Error("configured metrics section should keep enabled=false")
				}
				if cfg.Telemetry.Metrics.Path != "/custom-metrics" {
					t.Error("existing metrics path was overwritten")
				}
			},
		},
		{
			name: "git source defaults applied",
			input: Config{
				Proxy: ProxyPoolConfig{
					Source: "git",
					Git: GitSourceConfig{
						Repository: "https://git.internal/pools.git",
					},
				},
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Proxy.Git.Branch != DefaultGitBranch {
					t.Errorf("expected git branch %q, got %q", DefaultGitBranch, cfg.Proxy.Git.Branch)
				}
				if cfg.Proxy.Git.Path != DefaultGitPath {
					t.Errorf("expected git path %q, got %q", DefaultGitPath, cfg.Proxy.Git.Path)
				}
				if cfg.Proxy.Git.Depth != DefaultGitDepth {
					t.Errorf("expected git depth %d, got %d", DefaultGitDepth, cfg.Proxy.Git.Depth)
				}
				if cfg.Proxy.Git.Auth.Type != DefaultGitAuthType {
					t.Errorf("expected auth type %q, got %q", DefaultGitAuthType, cfg.Proxy.Git.Auth.Type)
				}
				// Verify existing values preserved
				if cfg.Proxy.Git.Repository != "https://git.internal/pools.git" {
					t.Error("existing repository was overwritten")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.input
			ApplyDefaults(&cfg)
			tt.check(t, &cfg)
		})
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := Config{}

	// Apply defaults twice
	ApplyDefaults(&cfg)
	firstPort := cfg.Server.Port
	firstWindow := cfg.RateLimit.Window

	ApplyDefaults(&cfg)

	if cfg.Server.Port != firstPort {
		t.Error("ApplyDefaults should be idempotent")
	}
	if cfg.RateLimit.Window != firstWindow {
		t.Error("ApplyDefaults should be idempotent")
	}
}

func TestNewDefault_IsValid(t *testing.T) {
	cfg := NewDefault()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default configuration must validate: %v", err)
	}
}
