// Package metrics provides Prometheus metrics collection for tunegate.
//
// # Overview
//
// The metrics package implements Prometheus metrics for monitoring request
// handling, media relays, upstream API calls, the rate limiter, and the
// egress proxy pool. Everything registers on an injected registry so tests
// and embedders keep isolated metric state.
//
// # Metrics Categories
//
//   - Request Metrics: Request count, duration, and in-flight gauge by route
//   - Relay Metrics: Relay outcomes, payload bytes, duration, active relays
//   - Upstream Metrics: Upstream call count, latency, and error rates
//   - Rate Limit Metrics: Throttled requests, tracked clients, evictions
//   - Proxy Metrics: Endpoint selections and pool size
//
// # Usage
//
//	// Create collector
//	collector := metrics.NewCollector(cfg, registry)
//
//	// Record request metrics
//	collector.RecordRequest("/api/stream", "GET", "200", 12*time.Second)
//
//	// Record relay metrics
//	collector.RelayStarted("stream")
//	collector.RecordRelay("stream", "completed", 12*time.Second, 4<<20)
//	collector.RelayFinished("stream")
//
//	// Record upstream metrics
//	collector.RecordUpstreamRequest("player", "success", 0.4)
//	collector.RecordUpstreamError("search", "timeout")
//
// # Label Discipline
//
// Labels stay bounded. Routes are patterns, never raw URLs; HTTP status
// codes and relay outcomes are closed sets; client identities never
// become labels. Proxy endpoint keys are capped by a cardinality limiter
// and overflow into "other".
//
// # Prometheus Endpoint
//
// All metrics are exposed through Collector.Handler in standard
// Prometheus format:
//
//	# HELP tunegate_gateway_requests_total Total number of HTTP requests processed
//	# TYPE tunegate_gateway_requests_total counter
//	tunegate_gateway_requests_total{route="/api/search",method="GET",status="200"} 1234
package metrics
