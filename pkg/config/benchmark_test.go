package config

import (
	"os"
	"path/filepath"
	"testing"
)

// BenchmarkLoadConfig benchmarks loading a typical configuration file.
// Target: <10ms p99 latency
func BenchmarkLoadConfig(b *testing.B) {
	// Create a temporary config file
	tmpDir := b.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  host: "0.0.0.0"
  port: 3000
  read_timeout: "30s"
  idle_timeout: "120s"

ratelimit:
  limit: 100
  window: "1h"
  max_clients: 100000

proxy:
  enabled: true
  endpoints:
    - "http://proxy-a.internal:3128"
    - "http://proxy-b.internal:3128"
  strategy: "random"

upstream:
  base_url: "https://www.youtube.com"
  timeout: "20s"

journal:
  enabled: true
  backend: "memory"

telemetry:
  logging:
    level: "info"
    format: "json"
  metrics:
    enabled: true
    path: "/metrics"
  tracing:
    enabled: false
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		b.Fatalf("failed to write config file: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := LoadConfig(configPath)
		if err != nil {
			b.Fatalf("failed to load config: %v", err)
		}
	}
}

// BenchmarkLoadConfigWithEnvOverrides benchmarks loading with environment variable overrides.
func BenchmarkLoadConfigWithEnvOverrides(b *testing.B) {
	tmpDir := b.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 8080

telemetry:
  logging:
    level: "info"
    format: "json"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		b.Fatalf("failed to write config file: %v", err)
	}

	// Set some environment variables
	os.Setenv("TUNEGATE_SERVER_PORT", "9090")
	os.Setenv("TUNEGATE_RATELIMIT_LIMIT", "250")
	defer func() {
		os.Unsetenv("TUNEGATE_SERVER_PORT")
		os.Unsetenv("TUNEGATE_RATELIMIT_LIMIT")
	}()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := LoadConfigWithEnvOverrides(configPath)
		if err != nil {
			b.Fatalf("failed to load config: %v", err)
		}
	}
}

// BenchmarkValidate benchmarks configuration validation.
// Target: <1ms for full validation
func BenchmarkValidate(b *testing.B) {
	cfg := NewTestConfig().Build()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		err := Validate(cfg)
		if err != nil {
			b.Fatalf("validation failed: %v", err)
		}
	}
}

// BenchmarkApplyDefaults benchmarks applying default values.
func BenchmarkApplyDefaults(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cfg := Config{}
		ApplyDefaults(&cfg)
	}
}

// BenchmarkGetConfig benchmarks singleton config access.
// Target: <1µs (simple pointer return)
func BenchmarkGetConfig(b *testing.B) {
	// Set up config
	SetConfig(MinimalConfig())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = GetConfig()
	}
}

// BenchmarkConfigBuilder benchmarks building config programmatically.
func BenchmarkConfigBuilder(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = NewTestConfig().
			WithPort(8080).
			WithRateLimit(100, DefaultRateLimitWindow).
			WithLoggingLevel("debug").
			Build()
	}
}
