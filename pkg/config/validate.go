package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.port").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateRateLimit(&cfg.RateLimit)...)
	errs = append(errs, validateProxy(&cfg.Proxy)...)
	errs = append(errs, validateUpstream(&cfg.Upstream)...)
	errs = append(errs, validateJournal(&cfg.Journal)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, FieldError{
			Field:   "server.port",
			Message: fmt.Sprintf("port %d out of range (1-65535)", cfg.Port),
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be non-negative",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be non-negative",
		})
	}
	if cfg.RequestTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.request_timeout",
			Message: "request timeout must be non-negative",
		})
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}

	if cfg.TLS.Enabled {
		if cfg.TLS.CertFile == "" {
			errs = append(errs, FieldError{
				Field:   "server.tls.cert_file",
				Message: "cert file is required when TLS is enabled",
			})
		}
		if cfg.TLS.KeyFile == "" {
			errs = append(errs, FieldError{
				Field:   "server.tls.key_file",
				Message: "key file is required when TLS is enabled",
			})
		}
	}
	if cfg.TLS.MinVersion != "" && cfg.TLS.MinVersion != "1.2" && cfg.TLS.MinVersion != "1.3" {
		errs = append(errs, FieldError{
			Field:   "server.tls.min_version",
			Message: fmt.Sprintf("invalid TLS version %q: must be '1.2' or '1.3'", cfg.TLS.MinVersion),
		})
	}

	return errs
}

// validateRateLimit validates rate limiter configuration. Limit and window
// are fixed for the process lifetime, so a bad value here must fail startup.
func validateRateLimit(cfg *RateLimitConfig) []FieldError {
	var errs []FieldError

	if cfg.Limit <= 0 {
		errs = append(errs, FieldError{
			Field:   "ratelimit.limit",
			Message: "limit must be positive",
		})
	}
	if cfg.Window <= 0 {
		errs = append(errs, FieldError{
			Field:   "ratelimit.window",
			Message: "window must be positive",
		})
	}
	if cfg.MaxClients < 0 {
		errs = append(errs, FieldError{
			Field:   "ratelimit.max_clients",
			Message: "max clients must be non-negative",
		})
	}
	if cfg.SweepSchedule == "" {
		errs = append(errs, FieldError{
			Field:   "ratelimit.sweep_schedule",
			Message: "sweep schedule is required",
		})
	}

	return errs
}

// validateProxy validates proxy pool configuration. An enabled pool with no
// endpoints is a startup error, never a per-request condition.
func validateProxy(cfg *ProxyPoolConfig) []FieldError {
	var errs []FieldError

	validSources := map[string]bool{"static": true, "file": true, "git": true}
	if !validSources[cfg.Source] {
		errs = append(errs, FieldError{
			Field:   "proxy.source",
			Message: fmt.Sprintf("invalid source %q: must be 'static', 'file', or 'git'", cfg.Source),
		})
	}

	validStrategies := map[string]bool{"random": true, "round_robin": true}
	if !validStrategies[cfg.Strategy] {
		errs = append(errs, FieldError{
			Field:   "proxy.strategy",
			Message: fmt.Sprintf("invalid strategy %q: must be 'random' or 'round_robin'", cfg.Strategy),
		})
	}

	if cfg.Enabled {
		switch cfg.Source {
		case "static":
			if len(cfg.Endpoints) == 0 {
				errs = append(errs, FieldError{
					Field:   "proxy.endpoints",
					Message: "at least one proxy endpoint is required when the pool is enabled",
				})
			}
			for i, ep := range cfg.Endpoints {
				if err := checkProxyURL(ep); err != nil {
					errs = append(errs, FieldError{
						Field:   fmt.Sprintf("proxy.endpoints[%d]", i),
						Message: err.Error(),
					})
				}
			}
		case "file":
			if cfg.File.Path == "" {
				errs = append(errs, FieldError{
					Field:   "proxy.file.path",
					Message: "file path is required when source is 'file'",
				})
			}
		case "git":
			if cfg.Git.Repository == "" {
				errs = append(errs, FieldError{
					Field:   "proxy.git.repository",
					Message: "repository is required when source is 'git'",
				})
			}
		}
	}

	validAuth := map[string]bool{"none": true, "token": true, "basic": true}
	if !validAuth[cfg.Git.Auth.Type] {
		errs = append(errs, FieldError{
			Field:   "proxy.git.auth.type",
			Message: fmt.Sprintf("invalid auth type %q: must be 'none', 'token', or 'basic'", cfg.Git.Auth.Type),
		})
	}
	if cfg.Git.Auth.Type == "token" && cfg.Git.Auth.Token == "" {
		errs = append(errs, FieldError{
			Field:   "proxy.git.auth.token",
			Message: "token is required when auth type is 'token'",
		})
	}
	if cfg.Git.Auth.Type == "basic" && cfg.Git.Auth.Username == "" {
		errs = append(errs, FieldError{
			Field:   "proxy.git.auth.username",
			Message: "username is required when auth type is 'basic'",
		})
	}

	return errs
}

// checkProxyURL verifies a proxy endpoint URL is usable.
func checkProxyURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL format: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "socks5" {
		return fmt.Errorf("unsupported scheme %q: must be http, https, or socks5", u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}

// validateUpstream validates upstream provider configuration.
func validateUpstream(cfg *UpstreamConfig) []FieldError {
	var errs []FieldError

	if cfg.BaseURL == "" {
		errs = append(errs, FieldError{
			Field:   "upstream.base_url",
			Message: "base URL is required",
		})
	} else {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			errs = append(errs, FieldError{
				Field:   "upstream.base_url",
				Message: fmt.Sprintf("invalid URL format: %v", err),
			})
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, FieldError{
				Field:   "upstream.base_url",
				Message: fmt.Sprintf("unsupported scheme %q: must be http or https", u.Scheme),
			})
		}
	}

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "upstream.timeout",
			Message: "timeout must be non-negative",
		})
	}

	if cfg.Throttle.Enabled {
		if cfg.Throttle.RPS <= 0 {
			errs = append(errs, FieldError{
				Field:   "upstream.throttle.rps",
				Message: "rps must be positive when throttling is enabled",
			})
		}
		if cfg.Throttle.Burst < 1 {
			errs = append(errs, FieldError{
				Field:   "upstream.throttle.burst",
				Message: "burst must be at least 1 when throttling is enabled",
			})
		}
	}

	return errs
}

// validateJournal validates journal configuration.
func validateJournal(cfg *JournalConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}

	validBackends := map[string]bool{"memory": true, "sqlite": true}
	if !validBackends[cfg.Backend] {
		errs = append(errs, FieldError{
			Field:   "journal.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'memory' or 'sqlite'", cfg.Backend),
		})
	}

	if cfg.Backend == "sqlite" && cfg.SQLite.Path == "" {
		errs = append(errs, FieldError{
			Field:   "journal.sqlite.path",
			Message: "path is required when backend is 'sqlite'",
		})
	}

	if cfg.Buffer < 1 {
		errs = append(errs, FieldError{
			Field:   "journal.buffer",
			Message: "buffer must be at least 1",
		})
	}
	if cfg.Memory.MaxEntries < 1 {
		errs = append(errs, FieldError{
			Field:   "journal.memory.max_entries",
			Message: "max entries must be at least 1",
		})
	}
	if cfg.Retention.MaxAge < 0 {
		errs = append(errs, FieldError{
			Field:   "journal.retention.max_age",
			Message: "max age must be non-negative",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "path must start with '/'",
		})
	}

	validSamplers := map[string]bool{"always": true, "never": true, "ratio": true}
	if !validSamplers[cfg.Tracing.Sampler] {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	return errs
}
