// Package middleware provides the HTTP middleware chain for the
// gateway server.
//
// # Chain order
//
// The server assembles the chain outermost first:
//
//	RequestID -> Logging -> Metrics -> CORS -> Journal -> Recovery -> RateLimit -> mux
//
// The order carries the contracts:
//
//   - RequestID runs first so every later stage, including logs and
//     journal records, sees the same correlation ID.
//   - Logging and Metrics observe from deferred calls, so requests that
//     end in a connection abort still produce a log entry and a counter
//     increment.
//   - Journal sits outside Recovery and RateLimit: recovered panics are
//     journaled as 500s and rejected requests as 429s.
//   - Recovery sits outside RateLimit and the mux, converting handler
//     panics to 500 while passing http.ErrAbortHandler through to the
//     server untouched.
//   - RateLimit is the last stage before routing. Every route,
//     including unmatched paths, consumes quota; only the configured
//     exempt paths (probes, metrics) bypass it.
//
// TimeoutMiddleware is not part of the global chain. The server wraps
// the metadata routes with it individually; stream and download relays
// run with no deadline.
//
// # Response writer wrapping
//
// Logging, Metrics and Journal wrap the response writer to capture the
// status code and byte count. The wrapper forwards Flush and exposes
// Unwrap, so streaming handlers keep per-chunk flushing and
// http.ResponseController keeps working through the stack.
//
// # Handler contributions
//
// Handlers enrich the journal record for the current request through
// SetMediaID and SetJournalError. Both are no-ops when journaling is
// disabled.
package middleware
