// Package server assembles and runs the tunegate HTTP gateway.
//
// It ties the public API handlers, the shared middleware chain, and the
// operational endpoints into one http.Handler, and manages the listener
// lifecycle: start, graceful shutdown, and OS signal handling.
//
// # Basic Usage
//
//	import (
//	    "context"
//
//	    "wavecast-hq/tunegate/pkg/config"
//	    "wavecast-hq/tunegate/pkg/ratelimit"
//	    "wavecast-hq/tunegate/pkg/server"
//	    "wavecast-hq/tunegate/pkg/telemetry"
//	    "wavecast-hq/tunegate/pkg/upstream"
//	)
//
//	cfg := config.MustGetConfig()
//	tel, err := telemetry.New(&cfg.Telemetry, version, commit, buildTime)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := upstream.NewClient(upstream.Config{
//	    BaseURL: cfg.Upstream.BaseURL,
//	    Timeout: cfg.Upstream.Timeout,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	srv, err := server.New(server.Options{
//	    Config:    cfg,
//	    Telemetry: tel,
//	    Limiter:   ratelimit.NewLimiter(ratelimit.Config{Limit: cfg.RateLimit.Limit, Window: cfg.RateLimit.Window}),
//	    Client:    client,
//	    Version:   version,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// Start blocks until the context is cancelled, SIGINT or SIGTERM
// arrives, Stop is called, or the listener fails, then drains in-flight
// requests within the configured shutdown timeout.
//
// # Routes
//
// All public routes are GET:
//
//   - /              service banner with version and uptime
//   - /api/search    search the provider's catalog
//   - /api/info      metadata and available encodings for one media URL
//   - /api/stream    relay an audio encoding inline for playback
//   - /api/download  relay an audio encoding as a file attachment
//   - /api/trending  the provider's trending feed
//
// Telemetry mounts /version always, and the Prometheus metrics endpoint
// and the liveness and readiness probes when enabled.
//
// # Middleware Chain
//
// Requests pass through, outermost first:
//
//  1. RequestID: assigns or propagates X-Request-ID
//  2. Tracing: extracts W3C trace context, echoes trace IDs
//  3. Logging: one completion entry per request
//  4. Metrics: request count, latency, in-flight gauge
//  5. CORS: cross-origin headers and preflight
//  6. Journal: one record per served request
//  7. Recovery: turns handler panics into 500 responses
//  8. RateLimit: per-client admission, quota headers, 429
//
// The rate limiter sits closest to the route table so every request,
// including ones for unknown paths, spends quota first. Search, info
// and trending carry a request deadline; stream and download do not,
// long relays end when the client disconnects.
//
// # TLS
//
// The listener serves HTTPS when server.tls.enabled is set:
//
//	server:
//	  tls:
//	    enabled: true
//	    cert_file: "/etc/tunegate/cert.pem"
//	    key_file: "/etc/tunegate/key.pem"
//	    min_version: "1.3"
//
// Certificate and key files are checked at startup so a bad path fails
// fast instead of on the first connection.
package server
