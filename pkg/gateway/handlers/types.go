package handlers

import (
	"context"

	"wavecast-hq/tunegate/pkg/proxypool"
	"wavecast-hq/tunegate/pkg/upstream"
)

// ProviderClient is the slice of the upstream client the route handlers
// consume. *upstream.Client satisfies it.
type ProviderClient interface {
	// ExtractMediaID pulls the canonical media identifier out of a URL
	// or accepts a bare identifier.
	ExtractMediaID(raw string) (string, error)

	// Search queries the provider's search surface.
	Search(ctx context.Context, query string, limit int) ([]upstream.SearchResult, error)

	// Trending returns popular media from a rotating seed query.
	Trending(ctx context.Context, limit int) ([]upstream.SearchResult, error)

	// Resolve fetches metadata and the advertised encodings for one
	// media item. A non-nil via pins the call to that proxy endpoint.
	Resolve(ctx context.Context, mediaID string, via *proxypool.Endpoint) (*upstream.Metadata, []upstream.EncodingDescriptor, error)

	// OpenStream opens the byte stream for one encoding.
	OpenStream(ctx context.Context, desc upstream.EncodingDescriptor, via *proxypool.Endpoint) (*upstream.Stream, error)

	// PickProxy selects a proxy endpoint from the configured pool. The
	// second return is false when the client runs without a pool.
	PickProxy() (proxypool.Endpoint, bool, error)
}
