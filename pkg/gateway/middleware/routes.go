package middleware

// UnmatchedRoute is the label logged, counted and journaled for any
// path outside the registered route set.
const UnmatchedRoute = "unmatched"

// RouteSet is the set of registered route paths. Middleware labels
// requests through it, so metrics series and journal routes stay within
// a bounded value set no matter what paths clients probe.
type RouteSet struct {
	paths map[string]struct{}
}

// NewRouteSet builds a route set from exact paths.
func NewRouteSet(paths ...string) *RouteSet {
	s := &RouteSet{paths: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		if p != "" {
			s.paths[p] = struct{}{}
		}
	}
	return s
}

// Label returns path when it is registered and UnmatchedRoute otherwise.
func (s *RouteSet) Label(path string) string {
	if s == nil {
		return UnmatchedRoute
	}
	if _, ok := s.paths[path]; ok {
		return path
	}
	return UnmatchedRoute
}

// Contains reports whether path is registered.
func (s *RouteSet) Contains(path string) bool {
	if s == nil {
		return false
	}
	_, ok := s.paths[path]
	return ok
}
