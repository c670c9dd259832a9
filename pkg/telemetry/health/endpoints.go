package health

import (
	"encoding/json"
	"net/http"
	"runtime"

	"golang.org/x/time/rate"

	"wavecast-hq/tunegate/pkg/config"
)

// VersionInfo contains build and version information.
type VersionInfo struct {
	// Version is the semantic version, for example "1.2.0".
	Version string `json:"version"`

	// Commit is the git commit hash the binary was built from.
	Commit string `json:"commit"`

	// BuildTime is when the binary was built.
	BuildTime string `json:"build_time"`

	// GoVersion is the Go toolchain version used to build.
	GoVersion string `json:"go_version"`
}

// LivenessHandler returns the HTTP handler for the liveness probe.
// It answers immediately without running component checks.
//
// Example response:
//
//	{
//	    "status": "ok",
//	    "timestamp": "2026-08-23T10:30:00Z"
//	}
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		report := c.CheckLiveness(r.Context())

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(report)
		}
	}
}

// ReadinessHandler returns the HTTP handler for the readiness probe.
// It runs all registered component checks.
//
// Returns:
//   - 200 OK: the gateway is ready to serve traffic
//   - 503 Service Unavailable: at least one component is unhealthy
//
// Example response (ready):
//
//	{
//	    "status": "ready",
//	    "checks": {
//	        "upstream": {"status": "ok", "duration_ms": 4.1},
//	        "proxy_pool": {"status": "ok", "duration_ms": 0.2},
//	        "journal": {"status": "disabled"}
//	    },
//	    "timestamp": "2026-08-23T10:30:00Z"
//	}
//
// Example response (degraded):
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "upstream": {"status": "unhealthy", "message": "player request failed"},
//	        "proxy_pool": {"status": "ok", "duration_ms": 0.2}
//	    },
//	    "timestamp": "2026-08-23T10:30:00Z"
//	}
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		report := c.CheckReadiness(r.Context())

		w.Header().Set("Content-Type", "application/json")

		if report.Status == StatusDegraded || report.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(report)
		}
	}
}

// VersionHandler returns an HTTP handler serving build information.
//
// Example response:
//
//	{
//	    "version": "1.2.0",
//	    "commit": "abc123def456",
//	    "build_time": "2026-08-01T00:00:00Z",
//	    "go_version": "go1.25.0"
//	}
func VersionHandler(version, commit, buildTime string) http.HandlerFunc {
	info := VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(info)
		}
	}
}

// Mount registers the probe handlers on mux at the configured paths.
// Empty paths fall back to /healthz and /readyz.
//
// Usage:
//
//	mux := http.NewServeMux()
//	checker := health.New(5 * time.Second)
//	health.Mount(mux, checker, &cfg.Telemetry.Health)
func Mount(mux *http.ServeMux, checker *Checker, cfg *config.HealthConfig) {
	liveness := cfg.LivenessPath
	if liveness == "" {
		liveness = "/healthz"
	}
	readiness := cfg.ReadinessPath
	if readiness == "" {
		readiness = "/readyz"
	}

	mux.HandleFunc(liveness, checker.LivenessHandler())
	mux.HandleFunc(readiness, checker.ReadinessHandler())
}

// RateLimitedHandler wraps a probe handler with a token bucket of rps
// requests per second and the given burst. A non-positive rps returns
// the handler unchanged.
//
// Usage:
//
//	handler := health.RateLimitedHandler(checker.ReadinessHandler(), 10, 10)
//	mux.HandleFunc("/readyz", handler)
func RateLimitedHandler(handler http.HandlerFunc, rps float64, burst int) http.HandlerFunc {
	if rps <= 0 {
		return handler
	}
	if burst <= 0 {
		burst = 1
	}

	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		handler(w, r)
	}
}
