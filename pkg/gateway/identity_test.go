package gateway

import (
	"net/http/httptest"
	"testing"
)

func TestClientID(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		trust      bool
		expected   string
	}{
		{
			name:       "peer address without trust",
			remoteAddr: "203.0.113.7:54321",
			expected:   "203.0.113.7",
		},
		{
			name:       "forwarded header ignored without trust",
			remoteAddr: "10.0.0.1:443",
			forwarded:  "198.51.100.23",
			expected:   "10.0.0.1",
		},
		{
			name:       "first forwarded hop with trust",
			remoteAddr: "10.0.0.1:443",
			forwarded:  "198.51.100.23",
			trust:      true,
			expected:   "198.51.100.23",
		},
		{
			name:       "multi hop keeps the first",
			remoteAddr: "10.0.0.1:443",
			forwarded:  "198.51.100.23, 10.0.0.2, 10.0.0.3",
			trust:      true,
			expected:   "198.51.100.23",
		},
		{
			name:       "padded forwarded hop is trimmed",
			remoteAddr: "10.0.0.1:443",
			forwarded:  "  198.51.100.23 , 10.0.0.2",
			trust:      true,
			expected:   "198.51.100.23",
		},
		{
			name:       "empty forwarded header falls back to peer",
			remoteAddr: "203.0.113.7:54321",
			forwarded:  "",
			trust:      true,
			expected:   "203.0.113.7",
		},
		{
			name:       "ipv6 peer address",
			remoteAddr: "[2001:db8::1]:54321",
			expected:   "2001:db8::1",
		},
		{
			name:       "peer address without port",
			remoteAddr: "203.0.113.7",
			expected:   "203.0.113.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/search", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}

			if got := ClientID(r, tt.trust); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
