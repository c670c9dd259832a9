package handlers

import (
	"net/http"
	"time"

	"wavecast-hq/tunegate/pkg/gateway"
	"wavecast-hq/tunegate/pkg/gateway/middleware"
	"wavecast-hq/tunegate/pkg/telemetry/tracing"
	"wavecast-hq/tunegate/pkg/upstream"
)

// InfoHandler serves /api/info: metadata and the advertised encodings
// for one media URL, without opening any byte stream.
type InfoHandler struct {
	deps *Deps
}

// NewInfoHandler creates the info handler.
func NewInfoHandler(deps *Deps) *InfoHandler {
	return &InfoHandler{deps: deps}
}

// ServeHTTP implements http.Handler.
func (h *InfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	raw := r.URL.Query().Get("url")
	if raw == "" {
		fail(w, r, &upstream.ValidationError{Field: "url", Message: "url parameter is required"})
		return
	}
	mediaID, err := h.deps.Client.ExtractMediaID(raw)
	if err != nil {
		fail(w, r, err)
		return
	}
	middleware.SetMediaID(ctx, mediaID)

	ctx, span := h.deps.span(ctx, "upstream.resolve")
	defer span.End()
	tracing.SetRequestAttributes(span, requestID, "/api/info")
	tracing.SetMediaAttribute(span, mediaID)

	start := time.Now()
	meta, descriptors, err := h.deps.Client.Resolve(ctx, mediaID, nil)
	observeUpstream(h.deps.Metrics, "resolve", start, err)
	tracing.SetStatus(span, err)
	if err != nil {
		h.deps.logger().ErrorContext(ctx, "info resolution failed",
			"request_id", requestID,
			"media_id", mediaID,
			"error", err,
		)
		fail(w, r, err)
		return
	}

	h.deps.logger().InfoContext(ctx, "info completed",
		"request_id", requestID,
		"media_id", mediaID,
		"title", meta.Title,
		"formats", len(descriptors),
	)
	gateway.WriteJSON(w, http.StatusOK, &gateway.InfoResponse{
		Success: true,
		Info:    gateway.NewMediaInfo(meta, descriptors),
	})
}
