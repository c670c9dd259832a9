package middleware

import (
	"net/http"
	"strconv"
	"time"

	"wavecast-hq/tunegate/pkg/telemetry/metrics"
)

// MetricsMiddleware records the request counter, duration histogram and
// in-flight gauge for every request. Route labels come from the
// registered route set. The observations run from a deferred call, so
// aborted relays are counted with the status and duration they reached.
//
// Example usage:
//
//	handler = MetricsMiddleware(collector, routes)(handler)
func MetricsMiddleware(collector *metrics.Collector, routes *RouteSet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if collector == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := newResponseWriter(w)

			collector.RequestStarted()
			defer func() {
				collector.RequestFinished()
				collector.RecordRequest(
					routes.Label(r.URL.Path),
					r.Method,
					strconv.Itoa(rw.statusCode),
					time.Since(start),
				)
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
