// Package health provides liveness and readiness probes for the gateway.
//
// # Overview
//
// The health package implements the probe endpoints used by Kubernetes
// and other orchestrators, plus a build information endpoint. Components
// register check functions with a Checker and the readiness probe runs
// them concurrently on every request.
//
// # Endpoints
//
//   - /healthz: Liveness probe, answers as long as the process runs
//   - /readyz: Readiness probe, runs all registered component checks
//   - /version: Build information, version, commit and build time
//
// The probe paths come from config.HealthConfig and default to /healthz
// and /readyz.
//
// # Usage
//
//	checker := health.New(5 * time.Second)
//
//	checker.RegisterCheck("upstream", func(ctx context.Context) error {
//	    return client.Ping(ctx)
//	})
//	checker.RegisterCheck("proxy_pool", func(ctx context.Context) error {
//	    if pool == nil {
//	        return health.ErrDisabled
//	    }
//	    if pool.Size() == 0 {
//	        return errors.New("proxy pool is empty")
//	    }
//	    return nil
//	})
//
//	mux := http.NewServeMux()
//	health.Mount(mux, checker, &cfg.Telemetry.Health)
//
// # Liveness vs Readiness
//
// The liveness probe reports StatusOK whenever the process can answer
// HTTP at all. Orchestrators restart the pod when it fails. It never
// runs component checks, so it stays fast at probe frequency.
//
// The readiness probe runs every registered check under a per-check
// timeout and reports StatusReady or StatusDegraded. Orchestrators stop
// routing traffic to a degraded pod without restarting it. A degraded
// report answers with 503.
//
// # Optional Components
//
// Checks for components that are configured off return ErrDisabled.
// Such components show up in the readiness report with the disabled
// status but never degrade the aggregate. The journal with recording
// off and the proxy pool in direct-connection mode both report
// disabled.
//
// # Example Responses
//
// Readiness, all components serving:
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
// Readiness, upstream unreachable:
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "upstream": {"status": "unhealthy", "message": "player request failed"},
//	        "proxy_pool": {"status": "ok", "duration_ms": 0.2},
//	        "journal": {"status": "disabled"}
//	    },
//	    "timestamp": "2026-08-23T10:30:00Z"
//	}
package health
