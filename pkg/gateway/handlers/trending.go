package handlers

import (
	"net/http"
	"time"

	"wavecast-hq/tunegate/pkg/gateway"
	"wavecast-hq/tunegate/pkg/gateway/middleware"
	"wavecast-hq/tunegate/pkg/telemetry/tracing"
)

// TrendingHandler serves /api/trending: popular media drawn from a
// rotating seed query against the provider's search surface.
type TrendingHandler struct {
	deps *Deps
}

// NewTrendingHandler creates the trending handler.
func NewTrendingHandler(deps *Deps) *TrendingHandler {
	return &TrendingHandler{deps: deps}
}

// ServeHTTP implements http.Handler.
func (h *TrendingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	limit := intParam(r, "limit", DefaultSearchLimit, MaxSearchLimit)

	ctx, span := h.deps.span(ctx, "upstream.trending")
	defer span.End()
	tracing.SetRequestAttributes(span, requestID, "/api/trending")

	start := time.Now()
	results, err := h.deps.Client.Trending(ctx, limit)
	observeUpstream(h.deps.Metrics, "trending", start, err)
	tracing.SetStatus(span, err)
	if err != nil {
		h.deps.logger().ErrorContext(ctx, "trending failed",
			"request_id", requestID,
			"error", err,
		)
		fail(w, r, err)
		return
	}
	tracing.SetSearchAttributes(span, limit, len(results))

	h.deps.logger().InfoContext(ctx, "trending completed",
		"request_id", requestID,
		"limit", limit,
		"results", len(results),
	)
	gateway.WriteJSON(w, http.StatusOK, &gateway.TrendingResponse{
		Success:  true,
		Trending: results,
	})
}
