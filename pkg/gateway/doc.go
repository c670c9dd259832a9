// Package gateway defines the HTTP surface shared by the route
// handlers and the middleware chain: response envelopes, the mapping
// from domain errors to HTTP statuses, and the client identity rule
// used for rate limiting and journaling.
//
// # Response envelopes
//
// Successful JSON routes answer with a success envelope:
//
//	{"success": true, "results": [...]}
//	{"success": true, "info": {...}}
//	{"success": true, "trending": [...]}
//
// Every failure, from any layer, answers with the same two-field shape:
//
//	{"error": "invalid_request", "message": "search query is required"}
//
// The error field is a stable machine-readable kind; the message field
// carries the human-readable detail, including the upstream provider's
// own wording when the provider failed.
//
// # Status mapping
//
// StatusFor converts domain errors at the route boundary:
//
//	ValidationError, UnknownQualityError  -> 400
//	NotFoundError                         -> 404
//	NoFormatError                         -> 422
//	UpstreamError, TimeoutError, ParseError -> 500
//	anything else                         -> 500
//
// Media that the provider reports as missing is a client-visible 404,
// and criteria no advertised encoding satisfies is a 422. Neither is a
// gateway failure.
//
// # Client identity
//
// ClientID returns the identity the rate limiter counts and the journal
// records: the first X-Forwarded-For hop when header trust is enabled
// in configuration, otherwise the peer address.
package gateway
