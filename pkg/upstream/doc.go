// Package upstream implements the client for the media provider's
// private API: media resolution, search, trending and stream opening.
//
// # Identity
//
// Every outbound request presents one fixed client identity: the
// configured user agent, origin and language headers plus a device
// profile in API payloads. Resolution and relay therefore look like
// the same caller to the provider, which matters when responses embed
// URLs bound to the requesting identity.
//
// # Proxies
//
// When a proxy pool is configured all calls leave through it. Calls
// accepting a via endpoint can be pinned so a resolve and the relay
// that follows share one egress address; passing nil lets the pool's
// strategy choose per call.
//
// # Errors
//
// The client never retries. Failures are typed: ValidationError for
// requests rejected before any network activity, NotFoundError when the
// provider reports the media missing, UpstreamError when the provider
// answered unusably (carrying the provider's own message), TimeoutError
// for exceeded deadlines and ParseError for undecodable bodies.
package upstream
