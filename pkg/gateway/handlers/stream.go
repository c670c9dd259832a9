package handlers

import (
	"net/http"
	"time"

	"wavecast-hq/tunegate/pkg/formats"
	"wavecast-hq/tunegate/pkg/gateway/middleware"
	"wavecast-hq/tunegate/pkg/proxypool"
	"wavecast-hq/tunegate/pkg/relay"
	"wavecast-hq/tunegate/pkg/telemetry/tracing"
	"wavecast-hq/tunegate/pkg/upstream"
)

// StreamOptions tunes the two relay routes.
type StreamOptions struct {
	// DefaultQuality is the selection used when a stream request does
	// not name one. Unknown names degrade to highest audio, the
	// ParseQuality fallback.
	DefaultQuality string

	// DefaultDownloadFormat is the filename extension used when a
	// download request does not name one.
	DefaultDownloadFormat string

	// Sticky pins resolution and relay of one request to one proxy
	// endpoint.
	Sticky bool

	// BufferSize is the relay copy chunk size. Zero means the relay
	// default.
	BufferSize int
}

// StreamHandler serves /api/stream: resolve, select an audio encoding,
// and relay the bytes inline for playback.
type StreamHandler struct {
	deps           *Deps
	opts           StreamOptions
	defaultQuality formats.Quality
}

// NewStreamHandler creates the stream handler.
func NewStreamHandler(deps *Deps, opts StreamOptions) *StreamHandler {
	quality, _ := formats.ParseQuality(opts.DefaultQuality)
	return &StreamHandler{deps: deps, opts: opts, defaultQuality: quality}
}

// ServeHTTP implements http.Handler.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	quality := h.defaultQuality
	if raw := r.URL.Query().Get("quality"); raw != "" {
		q, err := formats.ParseQuality(raw)
		if err != nil {
			fail(w, r, err)
			return
		}
		quality = q
	}

	media, ok := openMedia(w, r, h.deps, formats.Criteria{Quality: quality}, h.opts.Sticky, "/api/stream")
	if !ok {
		return
	}
	defer media.stream.Body.Close()

	relayMedia(w, r, h.deps, "stream", media, relay.Inline(formats.ContainerMIME(media.desc)), h.opts.BufferSize)
}

// openedMedia is everything a relay route holds after the shared
// resolve and open sequence.
type openedMedia struct {
	mediaID string
	meta    *upstream.Metadata
	desc    upstream.EncodingDescriptor
	stream  *upstream.Stream
}

// openMedia runs the sequence shared by the stream and download routes:
// extract the media id, pin a proxy when sticky, resolve metadata,
// select an encoding, open the byte stream. A false return means the
// error response has already been written.
func openMedia(w http.ResponseWriter, r *http.Request, deps *Deps, criteria formats.Criteria, sticky bool, route string) (*openedMedia, bool) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	raw := r.URL.Query().Get("url")
	if raw == "" {
		fail(w, r, &upstream.ValidationError{Field: "url", Message: "url parameter is required"})
		return nil, false
	}
	mediaID, err := deps.Client.ExtractMediaID(raw)
	if err != nil {
		fail(w, r, err)
		return nil, false
	}
	middleware.SetMediaID(ctx, mediaID)

	// One endpoint carries both the resolution and the relay when the
	// pool runs sticky.
	var via *proxypool.Endpoint
	if sticky {
		ep, pooled, err := deps.Client.PickProxy()
		if err != nil {
			fail(w, r, err)
			return nil, false
		}
		if pooled {
			via = &ep
			if deps.Metrics != nil {
				deps.Metrics.RecordProxySelection(ep.Key())
			}
		}
	}

	rctx, span := deps.span(ctx, "upstream.resolve")
	tracing.SetRequestAttributes(span, requestID, route)
	tracing.SetMediaAttribute(span, mediaID)
	start := time.Now()
	meta, descriptors, err := deps.Client.Resolve(rctx, mediaID, via)
	observeUpstream(deps.Metrics, "resolve", start, err)
	tracing.SetStatus(span, err)
	span.End()
	if err != nil {
		deps.logger().ErrorContext(ctx, "resolution failed",
			"request_id", requestID,
			"media_id", mediaID,
			"error", err,
		)
		fail(w, r, err)
		return nil, false
	}

	desc, err := formats.Select(descriptors, criteria)
	if err != nil {
		deps.logger().WarnContext(ctx, "no matching encoding",
			"request_id", requestID,
			"media_id", mediaID,
			"quality", criteria.Quality.String(),
			"advertised", len(descriptors),
		)
		fail(w, r, err)
		return nil, false
	}

	octx, span := deps.span(ctx, "upstream.open_stream")
	tracing.SetMediaAttribute(span, mediaID)
	tracing.SetFormatAttributes(span, desc.Itag, criteria.Quality.String(), desc.MIMEType)
	start = time.Now()
	stream, err := deps.Client.OpenStream(octx, desc, via)
	observeUpstream(deps.Metrics, "open_stream", start, err)
	tracing.SetStatus(span, err)
	span.End()
	if err != nil {
		deps.logger().ErrorContext(ctx, "stream open failed",
			"request_id", requestID,
			"media_id", mediaID,
			"itag", desc.Itag,
			"error", err,
		)
		fail(w, r, err)
		return nil, false
	}

	return &openedMedia{mediaID: mediaID, meta: meta, desc: desc, stream: stream}, true
}

// relayMedia copies an opened stream to the client and settles the
// request by outcome. An AbortedMidStream outcome panics with
// http.ErrAbortHandler after journaling, so the connection dies without
// a trailing body; the deferred observers up the chain still run.
func relayMedia(w http.ResponseWriter, r *http.Request, deps *Deps, kind string, media *openedMedia, disp relay.Disposition, bufferSize int) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	logger := deps.logger()

	if deps.Metrics != nil {
		deps.Metrics.RelayStarted(kind)
		defer deps.Metrics.RelayFinished(kind)
	}

	_, span := deps.span(ctx, "relay."+kind)
	defer span.End()
	tracing.SetMediaAttribute(span, media.mediaID)

	outcome := relay.Relay(ctx, w, &relay.Source{
		Body:          media.stream.Body,
		ContentType:   media.stream.ContentType,
		ContentLength: media.stream.ContentLength,
	}, disp, relay.Options{BufferSize: bufferSize})

	if deps.Metrics != nil {
		deps.Metrics.RecordRelay(kind, outcome.State.String(), outcome.Duration, outcome.BytesSent)
	}
	tracing.SetRelayAttributes(span, kind, outcome.State.String(), outcome.BytesSent)
	tracing.SetStatus(span, outcome.Err)

	switch outcome.State {
	case relay.Completed:
		logger.InfoContext(ctx, "relay completed",
			"request_id", requestID,
			"media_id", media.mediaID,
			"kind", kind,
			"bytes", outcome.BytesSent,
			"duration_ms", outcome.Duration.Milliseconds(),
		)
	case relay.ClientGone:
		logger.DebugContext(ctx, "client left during relay",
			"request_id", requestID,
			"media_id", media.mediaID,
			"kind", kind,
			"bytes", outcome.BytesSent,
		)
	case relay.FailedBeforeBody:
		logger.ErrorContext(ctx, "relay failed before first byte",
			"request_id", requestID,
			"media_id", media.mediaID,
			"kind", kind,
			"error", outcome.Err,
		)
		fail(w, r, outcome.Err)
	case relay.AbortedMidStream:
		logger.WarnContext(ctx, "relay aborted mid-stream",
			"request_id", requestID,
			"media_id", media.mediaID,
			"kind", kind,
			"bytes", outcome.BytesSent,
			"error", outcome.Err,
		)
		middleware.SetJournalError(ctx, outcome.Err.Error())
		panic(http.ErrAbortHandler)
	}
}
