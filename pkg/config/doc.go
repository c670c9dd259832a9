// Package config provides configuration management for Tunegate.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with comprehensive validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// The second form also accepts an empty path, in which case the gateway
// starts from defaults and environment variables alone. No configuration
// file is required to run.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention TUNEGATE_SECTION_FIELD.
// For example:
//
//   - TUNEGATE_SERVER_PORT overrides server.port
//   - TUNEGATE_RATELIMIT_LIMIT overrides ratelimit.limit
//   - TUNEGATE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Three short-form variables are also honored for compatibility with
// earlier deployments:
//
//   - PORT overrides server.port
//   - RATE_LIMIT overrides ratelimit.limit
//   - RATE_LIMIT_WINDOW overrides ratelimit.window, in milliseconds
//
// The TUNEGATE_ forms take precedence over the short forms when both are
// set. Environment variables always take precedence over file-based
// configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Server.ListenAddress())
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Validation
//
// All configuration is validated automatically during loading. Validation includes:
//
//   - Required field checks (e.g., upstream base URL, proxy endpoints)
//   - Range validation (e.g., ports must be 1-65535)
//   - Format validation (e.g., valid proxy URL schemes)
//   - Logical validation (e.g., an enabled static proxy pool must not be empty)
//
// Validation errors include field paths and helpful messages:
//
//	configuration validation failed with 2 errors:
//	  - proxy.endpoints: at least one proxy endpoint is required when the pool is enabled
//	  - ratelimit.limit: must be greater than 0
//
// # Change Detection
//
// A Watcher can observe the loaded configuration file. The rate limiter
// and the proxy pool are fixed for the process lifetime, so the watcher
// never applies changes. It re-parses and re-validates the file and logs
// which sections drifted so the operator knows a restart is needed.
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	server:
//	  port: 3000
//
//	ratelimit:
//	  limit: 100
//	  window: 1h
//
//	proxy:
//	  enabled: true
//	  endpoints:
//	    - "http://proxy-a.internal:3128"
//	    - "http://proxy-b.internal:3128"
//
//	upstream:
//	  base_url: "https://www.youtube.com"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton pattern uses read-write
// locks to allow concurrent reads while protecting against concurrent writes.
package config
