package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention TUNEGATE_SECTION_FIELD (e.g., TUNEGATE_SERVER_PORT); the legacy
// bare names PORT, RATE_LIMIT, and RATE_LIMIT_WINDOW (milliseconds) are also
// honored. Environment variables always take precedence over file-based
// configuration.
//
// An empty path starts from defaults only, so the gateway can run with no
// configuration file at all.
//
// The loading sequence is:
//  1. Load YAML from file (or start from defaults when path is empty)
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = NewDefault()
	} else {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvOverrides(cfg)

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables use the format TUNEGATE_SECTION_FIELD; the three
// legacy names are applied first so the prefixed forms win when both are set.
func applyEnvOverrides(cfg *Config) {
	// Legacy names
	if val := os.Getenv("PORT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = i
		}
	}
	if val := os.Getenv("RATE_LIMIT"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.RateLimit.Limit = i
		}
	}
	if val := os.Getenv("RATE_LIMIT_WINDOW"); val != "" {
		// Integer milliseconds
		if ms, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.RateLimit.Window = time.Duration(ms) * time.Millisecond
		}
	}

	// Server overrides
	if val := os.Getenv("TUNEGATE_SERVER_HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := os.Getenv("TUNEGATE_SERVER_PORT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = i
		}
	}
	if val := os.Getenv("TUNEGATE_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("TUNEGATE_SERVER_REQUEST_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.RequestTimeout = d
		}
	}
	if val := os.Getenv("TUNEGATE_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}
	if val := os.Getenv("TUNEGATE_SERVER_TLS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Server.TLS.Enabled = b
		}
	}
	if val := os.Getenv("TUNEGATE_SERVER_TLS_CERT_FILE"); val != "" {
		cfg.Server.TLS.CertFile = val
	}
	if val := os.Getenv("TUNEGATE_SERVER_TLS_KEY_FILE"); val != "" {
		cfg.Server.TLS.KeyFile = val
	}

	// Rate limit overrides
	if val := os.Getenv("TUNEGATE_RATELIMIT_LIMIT"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.RateLimit.Limit = i
		}
	}
	if val := os.Getenv("TUNEGATE_RATELIMIT_WINDOW"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.RateLimit.Window = d
		}
	}
	if val := os.Getenv("TUNEGATE_RATELIMIT_MAX_CLIENTS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.RateLimit.MaxClients = i
		}
	}
	if val := os.Getenv("TUNEGATE_RATELIMIT_SWEEP_SCHEDULE"); val != "" {
		cfg.RateLimit.SweepSchedule = val
	}
	if val := os.Getenv("TUNEGATE_RATELIMIT_TRUST_FORWARDED_FOR"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.RateLimit.TrustForwardedFor = b
		}
	}

	// Proxy pool overrides
	if val := os.Getenv("TUNEGATE_PROXY_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Proxy.Enabled = b
		}
	}
	if val := os.Getenv("TUNEGATE_PROXY_SOURCE"); val != "" {
		cfg.Proxy.Source = val
	}
	if val := os.Getenv("TUNEGATE_PROXY_ENDPOINTS"); val != "" {
		cfg.Proxy.Endpoints = splitAndTrim(val)
	}
	if val := os.Getenv("TUNEGATE_PROXY_STRATEGY"); val != "" {
		cfg.Proxy.Strategy = val
	}
	if val := os.Getenv("TUNEGATE_PROXY_SEED"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Proxy.Seed = i
		}
	}
	if val := os.Getenv("TUNEGATE_PROXY_STICKY"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Proxy.Sticky = b
		}
	}
	if val := os.Getenv("TUNEGATE_PROXY_FILE_PATH"); val != "" {
		cfg.Proxy.File.Path = val
	}
	if val := os.Getenv("TUNEGATE_PROXY_GIT_REPOSITORY"); val != "" {
		cfg.Proxy.Git.Repository = val
	}
	if val := os.Getenv("TUNEGATE_PROXY_GIT_BRANCH"); val != "" {
		cfg.Proxy.Git.Branch = val
	}
	if val := os.Getenv("TUNEGATE_PROXY_GIT_TOKEN"); val != "" {
		cfg.Proxy.Git.Auth.Type = "token"
		cfg.Proxy.Git.Auth.Token = val
	}

	// Upstream overrides
	if val := os.Getenv("TUNEGATE_UPSTREAM_BASE_URL"); val != "" {
		cfg.Upstream.BaseURL = val
	}
	if val := os.Getenv("TUNEGATE_UPSTREAM_API_KEY"); val != "" {
		cfg.Upstream.APIKey = val
	}
	if val := os.Getenv("TUNEGATE_UPSTREAM_USER_AGENT"); val != "" {
		cfg.Upstream.UserAgent = val
	}
	if val := os.Getenv("TUNEGATE_UPSTREAM_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Upstream.Timeout = d
		}
	}
	if val := os.Getenv("TUNEGATE_UPSTREAM_THROTTLE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Upstream.Throttle.Enabled = b
		}
	}

	// Format overrides
	if val := os.Getenv("TUNEGATE_FORMATS_DEFAULT_QUALITY"); val != "" {
		cfg.Formats.DefaultQuality = val
	}
	if val := os.Getenv("TUNEGATE_FORMATS_DEFAULT_DOWNLOAD_FORMAT"); val != "" {
		cfg.Formats.DefaultDownloadFormat = val
	}

	// Journal overrides
	if val := os.Getenv("TUNEGATE_JOURNAL_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Journal.Enabled = b
		}
	}
	if val := os.Getenv("TUNEGATE_JOURNAL_BACKEND"); val != "" {
		cfg.Journal.Backend = val
	}
	if val := os.Getenv("TUNEGATE_JOURNAL_SQLITE_PATH"); val != "" {
		cfg.Journal.SQLite.Path = val
	}
	if val := os.Getenv("TUNEGATE_JOURNAL_RETENTION_MAX_AGE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Journal.Retention.MaxAge = d
		}
	}

	// Telemetry overrides
	if val := os.Getenv("TUNEGATE_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("TUNEGATE_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("TUNEGATE_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("TUNEGATE_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
	if val := os.Getenv("TUNEGATE_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("TUNEGATE_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("TUNEGATE_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}

	// Watcher overrides
	if val := os.Getenv("TUNEGATE_WATCHER_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Watcher.Enabled = b
		}
	}
}

// splitAndTrim splits a comma-separated list, trimming whitespace and
// dropping empty items.
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
