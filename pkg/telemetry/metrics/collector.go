package metrics

import (
	"fmt"
	"sync"
	"time"

	"wavecast-hq/tunegate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the main orchestrator for all Prometheus metrics in tunegate.
// It manages metric registration and provides a unified interface for
// recording metrics across all components.
//
// The collector registers everything on the registry it is given, so tests
// and embedders can isolate their metric state:
//   - Per-route request counters and latency histograms
//   - Relay outcome and throughput metrics
//   - Upstream call latency and error metrics
//   - Rate limiter and proxy pool metrics
//   - Journal write and drop counters
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Request metrics
	requestMetrics *RequestMetrics

	// Relay metrics
	relayMetrics *RelayMetrics

	// Upstream metrics
	upstreamMetrics *UpstreamMetrics

	// Rate limiter metrics
	rateLimitMetrics *RateLimitMetrics

	// Proxy pool metrics
	proxyMetrics *ProxyMetrics

	// Journal metrics
	journalMetrics *JournalMetrics

	// Cardinality tracking
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "tunegate",
//		Subsystem: "gateway",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = "tunegate"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "gateway"
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		// Covers fast JSON routes up to long-running relays
		cfg.RequestDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 120.0}
	}
	if len(cfg.RelayBytesBuckets) == 0 {
		// 64 KiB up to 256 MiB, the realistic span of a single media payload
		cfg.RelayBytesBuckets = []float64{65536, 262144, 1048576, 4194304, 16777216, 67108864, 268435456}
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(1000),
	}

	// Initialize metric subsystems
	c.requestMetrics = NewRequestMetrics(cfg, registry)
	c.relayMetrics = NewRelayMetrics(cfg, registry)
	c.upstreamMetrics = NewUpstreamMetrics(cfg, registry)
	c.rateLimitMetrics = NewRateLimitMetrics(cfg, registry)
	c.proxyMetrics = NewProxyMetrics(cfg, registry)
	c.journalMetrics = NewJournalMetrics(cfg, registry)

	return c
}

// RecordRequest records metrics for a completed HTTP request.
//
// Parameters:
//   - route: Route pattern (e.g., "/api/search", "unmatched")
//   - method: HTTP method
//   - status: HTTP status code (e.g., "200", "429")
//   - duration: Total request duration
//
// Example:
//
//	collector.RecordRequest("/api/info", "GET", "200", 250*time.Millisecond)
func (c *Collector) RecordRequest(route, method, status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.requestMetrics.RecordRequest(route, method, status, duration)
}

// RequestStarted marks an HTTP request as in flight.
func (c *Collector) RequestStarted() {
	if !c.config.Enabled {
		return
	}

	c.requestMetrics.RequestStarted()
}

// RequestFinished marks an HTTP request as done.
func (c *Collector) RequestFinished() {
	if !c.config.Enabled {
		return
	}

	c.requestMetrics.RequestFinished()
}

// RecordRelay records metrics for a finished media relay.
//
// Parameters:
//   - kind: "stream" or "download"
//   - outcome: Relay outcome ("completed", "failed_before_body",
//     "aborted_mid_stream", "client_gone")
//   - duration: Time from first upstream byte to relay end
//   - bytes: Number of payload bytes written to the client
func (c *Collector) RecordRelay(kind, outcome string, duration time.Duration, bytes int64) {
	if !c.config.Enabled {
		return
	}

	c.relayMetrics.RecordRelay(kind, outcome, duration, bytes)
}

// RelayStarted marks a relay as in flight.
func (c *Collector) RelayStarted(kind string) {
	if !c.config.Enabled {
		return
	}

	c.relayMetrics.RelayStarted(kind)
}

// RelayFinished marks a relay as no longer in flight.
func (c *Collector) RelayFinished(kind string) {
	if !c.config.Enabled {
		return
	}

	c.relayMetrics.RelayFinished(kind)
}

// RecordUpstreamRequest records a call against the upstream API.
//
// Parameters:
//   - operation: Upstream operation ("player", "search", "stream")
//   - status: "success" or "error"
//   - latency: Call latency in seconds
func (c *Collector) RecordUpstreamRequest(operation, status string, latency float64) {
	if !c.config.Enabled {
		return
	}

	c.upstreamMetrics.RecordRequest(operation, status, latency)
}

// RecordUpstreamError records an upstream failure by type.
//
// Parameters:
//   - operation: Upstream operation ("player", "search", "stream")
//   - errorType: Error classification ("timeout", "upstream", "parse",
//     "not_found", "validation", "network")
func (c *Collector) RecordUpstreamError(operation, errorType string) {
	if !c.config.Enabled {
		return
	}

	c.upstreamMetrics.RecordError(operation, errorType)
}

// RecordThrottled records a request rejected by the rate limiter.
//
// Parameters:
//   - route: Route pattern of the rejected request
func (c *Collector) RecordThrottled(route string) {
	if !c.config.Enabled {
		return
	}

	c.rateLimitMetrics.RecordThrottled(route)
}

// UpdateTrackedClients sets the number of clients the limiter is tracking.
func (c *Collector) UpdateTrackedClients(n int) {
	if !c.config.Enabled {
		return
	}

	c.rateLimitMetrics.UpdateTrackedClients(n)
}

// RecordLimiterEvictions adds to the count of limiter entries evicted.
func (c *Collector) RecordLimiterEvictions(n int) {
	if !c.config.Enabled {
		return
	}

	c.rateLimitMetrics.RecordEvictions(n)
}

// RecordProxySelection records a proxy endpoint being picked for egress.
// Endpoint keys past the cardinality limit aggregate into "other".
//
// Parameters:
//   - endpoint: Endpoint key (scheme://host:port, no credentials)
func (c *Collector) RecordProxySelection(endpoint string) {
	if !c.config.Enabled {
		return
	}

	labelSet := fmt.Sprintf("proxy:%s", endpoint)
	if !c.cardinalityLimiter.Allow(labelSet) {
		endpoint = "other"
	}

	c.proxyMetrics.RecordSelection(endpoint)
}

// UpdateProxyPoolSize sets the current number of endpoints in the pool.
func (c *Collector) UpdateProxyPoolSize(n int) {
	if !c.config.Enabled {
		return
	}

	c.proxyMetrics.UpdatePoolSize(n)
}

// RecordJournalWrite records a journal record accepted for async writing.
func (c *Collector) RecordJournalWrite() {
	if !c.config.Enabled {
		return
	}

	c.journalMetrics.RecordWrite()
}

// RecordJournalDrop records a journal record dropped at enqueue because
// the write buffer was full.
func (c *Collector) RecordJournalDrop() {
	if !c.config.Enabled {
		return
	}

	c.journalMetrics.RecordDrop()
}

// Registry returns the Prometheus registry used by this collector.
// This can be used to create an HTTP handler for the /metrics endpoint:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		collector.Registry(),
//		promhttp.HandlerOpts{},
//	))
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric. Proxy pools are
// file-fed and can grow without bound across reloads.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if the cardinality limit has not been reached yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
