package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"wavecast-hq/tunegate/pkg/gateway"
)

// RecoveryMiddleware converts handler panics into 500 responses so one
// request cannot take the process down. The panic and its stack are
// logged; the client sees only the failure envelope.
//
// http.ErrAbortHandler is re-panicked untouched: net/http recognizes it
// and drops the connection without a body, which is how relays that
// fail after the first flushed byte terminate.
//
// Example usage:
//
//	handler = RecoveryMiddleware(handler)
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && err == http.ErrAbortHandler {
				panic(rec)
			}

			requestID := GetRequestID(r.Context())
			slog.ErrorContext(r.Context(), "panic in handler",
				"panic", rec,
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)

			SetJournalError(r.Context(), fmt.Sprintf("panic: %v", rec))
			gateway.WriteError(w, http.StatusInternalServerError,
				gateway.ErrKindInternal, "An internal error occurred.")
		}()

		next.ServeHTTP(w, r)
	})
}
