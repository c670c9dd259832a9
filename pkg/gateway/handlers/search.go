package handlers

import (
	"net/http"
	"strings"
	"time"

	"wavecast-hq/tunegate/pkg/gateway"
	"wavecast-hq/tunegate/pkg/gateway/middleware"
	"wavecast-hq/tunegate/pkg/telemetry/tracing"
	"wavecast-hq/tunegate/pkg/upstream"
)

const (
	// DefaultSearchLimit is the result count served when a request does
	// not ask for one.
	DefaultSearchLimit = 20

	// MaxSearchLimit caps the result count a single request may ask for.
	MaxSearchLimit = 50
)

// SearchHandler serves /api/search: free-text query in, ranked media
// results out.
type SearchHandler struct {
	deps *Deps
}

// NewSearchHandler creates the search handler.
func NewSearchHandler(deps *Deps) *SearchHandler {
	return &SearchHandler{deps: deps}
}

// ServeHTTP implements http.Handler.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		fail(w, r, &upstream.ValidationError{Field: "q", Message: "search query is required"})
		return
	}
	limit := intParam(r, "limit", DefaultSearchLimit, MaxSearchLimit)

	ctx, span := h.deps.span(ctx, "upstream.search")
	defer span.End()
	tracing.SetRequestAttributes(span, requestID, "/api/search")

	start := time.Now()
	results, err := h.deps.Client.Search(ctx, query, limit)
	observeUpstream(h.deps.Metrics, "search", start, err)
	tracing.SetStatus(span, err)
	if err != nil {
		h.deps.logger().ErrorContext(ctx, "search failed",
			"request_id", requestID,
			"query", query,
			"error", err,
		)
		fail(w, r, err)
		return
	}
	tracing.SetSearchAttributes(span, limit, len(results))

	h.deps.logger().InfoContext(ctx, "search completed",
		"request_id", requestID,
		"query", query,
		"limit", limit,
		"results", len(results),
	)
	gateway.WriteJSON(w, http.StatusOK, &gateway.SearchResponse{
		Success: true,
		Results: results,
	})
}
