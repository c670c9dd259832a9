package middleware

import (
	"context"
	"net/http"
	"time"

	"wavecast-hq/tunegate/pkg/gateway"
	"wavecast-hq/tunegate/pkg/journal"
	"wavecast-hq/tunegate/pkg/telemetry/metrics"
)

// JournalOptions configures the journal middleware.
type JournalOptions struct {
	// Recorder receives one record per completed request. Nil disables
	// the middleware.
	Recorder *journal.Recorder

	// Metrics counts journal writes and drops. Optional.
	Metrics *metrics.Collector

	// Routes labels records with registered route paths.
	Routes *RouteSet

	// TrustForwardedFor mirrors the rate limiter's identity setting so
	// records carry the same client ID the limiter counted.
	TrustForwardedFor bool

	// ExemptPaths lists paths that are never journaled, typically the
	// probe and metrics endpoints.
	ExemptPaths []string
}

// JournalMiddleware writes one journal record per request after the
// response finishes, carrying route, client, status, bytes out and
// duration. Handlers contribute the media ID and terminal error through
// SetMediaID and SetJournalError.
//
// The record is written from a deferred call, so a relay that ends in a
// connection abort is still journaled with the bytes that made it out.
// Recording is asynchronous and never blocks the request; when the
// journal buffer is full the record is dropped and counted.
//
// Example usage:
//
//	handler = JournalMiddleware(JournalOptions{Recorder: recorder, Routes: routes})(handler)
func JournalMiddleware(opts JournalOptions) func(http.Handler) http.Handler {
	exempt := make(map[string]struct{}, len(opts.ExemptPaths))
	for _, p := range opts.ExemptPaths {
		exempt[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		if opts.Recorder == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exempt[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			entry := &Entry{}
			ctx := context.WithValue(r.Context(), journalEntryKey, entry)
			rw := newResponseWriter(w)

			defer func() {
				mediaID, errMsg := entry.snapshot()
				err := opts.Recorder.Record(&journal.Record{
					RequestID:  GetRequestID(ctx),
					Route:      opts.Routes.Label(r.URL.Path),
					Method:     r.Method,
					ClientID:   gateway.ClientID(r, opts.TrustForwardedFor),
					Status:     rw.statusCode,
					BytesOut:   rw.bytes,
					DurationMS: time.Since(start).Milliseconds(),
					MediaID:    mediaID,
					Error:      errMsg,
				})
				if opts.Metrics != nil {
					if err != nil {
						opts.Metrics.RecordJournalDrop()
					} else {
						opts.Metrics.RecordJournalWrite()
					}
				}
			}()

			next.ServeHTTP(rw, r.WithContext(ctx))
		})
	}
}
