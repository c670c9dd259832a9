package handlers

import (
	"fmt"
	"net/http"
	"time"

	"wavecast-hq/tunegate/pkg/gateway"
)

// RootHandler serves the health and version document at /.
type RootHandler struct {
	Version string
	Commit  string

	started time.Time
}

// NewRootHandler creates the root handler. Uptime counts from this call.
func NewRootHandler(version, commit string) *RootHandler {
	return &RootHandler{
		Version: version,
		Commit:  commit,
		started: time.Now(),
	}
}

type rootResponse struct {
	Status        string `json:"status"`
	Service       string `json:"service"`
	Version       string `json:"version"`
	Commit        string `json:"commit,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Timestamp     int64  `json:"timestamp"`
}

// ServeHTTP implements http.Handler.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// ServeMux routes every unregistered path here through the "/"
	// subtree pattern.
	if r.URL.Path != "/" {
		NotFound(w, r)
		return
	}
	if !allowGet(w, r) {
		return
	}

	gateway.WriteJSON(w, http.StatusOK, &rootResponse{
		Status:        "ok",
		Service:       "tunegate",
		Version:       h.Version,
		Commit:        h.Commit,
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Timestamp:     time.Now().Unix(),
	})
}

// NotFound answers unmatched routes with the JSON 404 envelope. It runs
// after the rate limiter, so probing unknown paths still consumes quota.
func NotFound(w http.ResponseWriter, r *http.Request) {
	gateway.WriteError(w, http.StatusNotFound, gateway.ErrKindNotFound,
		fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path))
}
