// Tunegate is an HTTP gateway that fronts a media provider and relays
// audio and video streams to its own clients.
//
// It exposes a small JSON API for searching and resolving media, and
// two relay endpoints that stream the media bytes through the gateway:
//   - Search, metadata, and trending lookups against the provider
//   - Inline playback streaming and filename-carrying downloads
//   - Per-client rate limiting on every route
//   - Request journaling for traffic inspection
//   - Optional forward-proxy pool for outbound provider traffic
//
// Usage:
//
//	# Start the gateway with default configuration
//	tunegate run
//
//	# Start with a custom configuration file
//	tunegate run --config /path/to/config.yaml
//
//	# Show version information
//	tunegate version
//
//	# Validate a configuration file
//	tunegate validate --config /etc/tunegate/config.yaml
//
//	# Query the request journal
//	tunegate journal query --time-range "2026-08-01T00:00:00Z/2026-08-02T00:00:00Z"
//
// For complete documentation, see: https://github.com/wavecast-hq/tunegate
package main

func main() {
	Execute()
}
