package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// LoggingMiddleware logs one completion entry per request with method,
// path, status, bytes out, latency and request ID. The entry is emitted
// from a deferred call, so requests that end in a mid-stream connection
// abort still produce one.
//
// Log format (JSON):
//
//	{
//	  "time": "2026-08-23T10:30:00Z",
//	  "level": "INFO",
//	  "msg": "request completed",
//	  "method": "GET",
//	  "path": "/api/stream",
//	  "status": 200,
//	  "bytes_out": 4194304,
//	  "latency_ms": 12050,
//	  "request_id": "a1b2c3d4...",
//	  "remote_addr": "203.0.113.7:54321"
//	}
//
// Example usage:
//
//	handler = LoggingMiddleware(handler)
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		ctx := context.WithValue(r.Context(), StartTimeKey, startTime)

		rw := newResponseWriter(w)

		requestID := GetRequestID(ctx)
		slog.DebugContext(ctx, "request started",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", requestID,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		defer func() {
			latency := time.Since(startTime)

			logLevel := slog.LevelInfo
			if rw.statusCode >= 500 {
				logLevel = slog.LevelError
			} else if rw.statusCode >= 400 {
				logLevel = slog.LevelWarn
			}

			slog.Log(ctx, logLevel, "request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.statusCode,
				"bytes_out", rw.bytes,
				"latency_ms", latency.Milliseconds(),
				"request_id", requestID,
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(rw, r.WithContext(ctx))
	})
}

// GetStartTime extracts the request start time from the context.
// Returns the zero time if the middleware did not run.
func GetStartTime(ctx context.Context) time.Time {
	if startTime, ok := ctx.Value(StartTimeKey).(time.Time); ok {
		return startTime
	}
	return time.Time{}
}
