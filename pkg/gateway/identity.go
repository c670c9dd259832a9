package gateway

import (
	"net"
	"net/http"
	"strings"
)

// ClientID derives the per-client identity for a request: the first
// X-Forwarded-For hop when header trust is enabled, otherwise the peer
// address without its port. The rate limiter and the journal use the
// same identity so their views of a client line up.
func ClientID(r *http.Request, trustForwardedFor bool) string {
	if trustForwardedFor {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port, as some test servers produce.
		return r.RemoteAddr
	}
	return host
}
