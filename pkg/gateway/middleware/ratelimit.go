package middleware

import (
	"math"
	"net/http"
	"strconv"

	"wavecast-hq/tunegate/pkg/config"
	"wavecast-hq/tunegate/pkg/gateway"
	"wavecast-hq/tunegate/pkg/ratelimit"
	"wavecast-hq/tunegate/pkg/telemetry/metrics"
)

// RateLimitMiddleware applies per-client admission limiting ahead of
// every route. Rejected requests get 429 with Retry-After; both
// admitted and rejected responses carry the X-RateLimit-* family so
// clients can pace themselves. Paths on the configured exempt list
// bypass the limiter entirely.
//
// The client identity is the one gateway.ClientID derives, so the
// journal and the limiter agree on who a client is.
//
// Example usage:
//
//	handler = RateLimitMiddleware(limiter, &cfg.RateLimit, collector, routes)(handler)
func RateLimitMiddleware(limiter *ratelimit.Limiter, cfg *config.RateLimitConfig, collector *metrics.Collector, routes *RouteSet) func(http.Handler) http.Handler {
	exempt := make(map[string]struct{}, len(cfg.ExemptPaths))
	for _, p := range cfg.ExemptPaths {
		exempt[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exempt[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			clientID := gateway.ClientID(r, cfg.TrustForwardedFor)
			decision := limiter.Check(clientID)

			setRateLimitHeaders(w, decision)
			if collector != nil {
				collector.UpdateTrackedClients(limiter.Size())
			}

			if !decision.Allowed {
				if collector != nil {
					collector.RecordThrottled(routes.Label(r.URL.Path))
				}
				retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

				SetJournalError(r.Context(), decision.Reason)
				gateway.WriteError(w, http.StatusTooManyRequests, gateway.ErrKindRateLimited, decision.Reason)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// setRateLimitHeaders writes the X-RateLimit-* family from a decision.
func setRateLimitHeaders(w http.ResponseWriter, d *ratelimit.Decision) {
	w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(d.Limit, 10))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))
}
