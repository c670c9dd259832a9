package middleware

import "testing"

func TestRouteSet(t *testing.T) {
	routes := NewRouteSet("/", "/api/search", "/api/stream", "")

	t.Run("labels registered paths with themselves", func(t *testing.T) {
		if got := routes.Label("/api/search"); got != "/api/search" {
			t.Errorf("Label(/api/search) = %q, want /api/search", got)
		}
		if got := routes.Label("/"); got != "/" {
			t.Errorf("Label(/) = %q, want /", got)
		}
	})

	t.Run("collapses unknown paths to a single label", func(t *testing.T) {
		for _, path := range []string{"/api/bogus", "/admin", "/api/search/extra"} {
			if got := routes.Label(path); got != UnmatchedRoute {
				t.Errorf("Label(%s) = %q, want %q", path, got, UnmatchedRoute)
			}
		}
	})

	t.Run("Contains reports membership", func(t *testing.T) {
		if !routes.Contains("/api/stream") {
			t.Error("Contains(/api/stream) = false, want true")
		}
		if routes.Contains("/api/bogus") {
			t.Error("Contains(/api/bogus) = true, want false")
		}
		if routes.Contains("") {
			t.Error("Contains of empty registration = true, want false")
		}
	})

	t.Run("nil set labels everything unmatched", func(t *testing.T) {
		var nilSet *RouteSet
		if got := nilSet.Label("/api/search"); got != UnmatchedRoute {
			t.Errorf("nil Label = %q, want %q", got, UnmatchedRoute)
		}
		if nilSet.Contains("/api/search") {
			t.Error("nil Contains = true, want false")
		}
	})
}
