package middleware

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware applies a context deadline to the wrapped handler.
// An expired deadline surfaces through the handler's own error path,
// so the response is always written by the handler goroutine. A zero
// or negative timeout disables the wrapper.
//
// The server mounts this on the metadata routes only; stream and
// download relays run without a deadline and end with the client or
// the upstream.
//
// Example usage:
//
//	mux.Handle("/api/search", TimeoutMiddleware(30*time.Second)(searchHandler))
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
