package tracing

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span Attribute Helpers
//
// These functions set the gateway's span attributes with consistent
// naming. Standard keys follow OpenTelemetry semantic conventions
// (http.*, error.*); gateway-specific keys use the "tunegate.*"
// namespace.

// Attribute keys used across the gateway's spans.
const (
	// Request attributes
	AttrRequestID = "tunegate.request_id"
	AttrRoute     = "tunegate.route"
	AttrMediaID   = "tunegate.media_id"

	// Upstream attributes
	AttrUpstreamOperation = "tunegate.upstream.operation"
	AttrUpstreamStatus    = "tunegate.upstream.status"
	AttrProxyEndpoint     = "tunegate.proxy.endpoint"

	// Format attributes
	AttrFormatItag    = "tunegate.format.itag"
	AttrFormatQuality = "tunegate.format.quality"
	AttrFormatMime    = "tunegate.format.mime_type"

	// Relay attributes
	AttrRelayKind    = "tunegate.relay.kind"
	AttrRelayOutcome = "tunegate.relay.outcome"
	AttrRelayBytes   = "tunegate.relay.bytes"

	// Search attributes
	AttrSearchLimit   = "tunegate.search.limit"
	AttrSearchResults = "tunegate.search.results"

	// Error attributes
	AttrErrorType    = "tunegate.error.type"
	AttrErrorMessage = "error.message"

	// Performance attributes
	AttrDuration  = "tunegate.duration_ms"
	AttrThrottled = "tunegate.ratelimit.throttled"
)

// SetRequestAttributes sets request identity attributes on a span.
// The route is the registered pattern, never the raw URL.
//
// Example:
//
//	SetRequestAttributes(span, "req-123", "/api/stream")
func SetRequestAttributes(span trace.Span, requestID, route string) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrRequestID, requestID),
	}
	if route != "" {
		attrs = append(attrs, attribute.String(AttrRoute, route))
	}
	span.SetAttributes(attrs...)
}

// SetMediaAttribute sets the media ID on a span. Empty IDs are skipped.
func SetMediaAttribute(span trace.Span, mediaID string) {
	if mediaID != "" {
		span.SetAttributes(attribute.String(AttrMediaID, mediaID))
	}
}

// SetUpstreamAttributes sets upstream call attributes on a span.
// Operation names the upstream surface (player, search, stream); a zero
// status code is skipped.
//
// Example:
//
//	SetUpstreamAttributes(span, "player", resp.StatusCode)
func SetUpstreamAttributes(span trace.Span, operation string, statusCode int) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrUpstreamOperation, operation),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int(AttrUpstreamStatus, statusCode))
	}
	span.SetAttributes(attrs...)
}

// SetProxyAttribute records which proxy endpoint carried the upstream
// call. The key form (scheme://host:port) never contains credentials.
func SetProxyAttribute(span trace.Span, endpointKey string) {
	if endpointKey != "" {
		span.SetAttributes(attribute.String(AttrProxyEndpoint, endpointKey))
	}
}

// SetFormatAttributes sets the selected media format on a span.
//
// Example:
//
//	SetFormatAttributes(span, 251, "AUDIO_QUALITY_HIGH", "audio/webm")
func SetFormatAttributes(span trace.Span, itag int, quality, mimeType string) {
	span.SetAttributes(
		attribute.Int(AttrFormatItag, itag),
		attribute.String(AttrFormatQuality, quality),
		attribute.String(AttrFormatMime, mimeType),
	)
}

// SetRelayAttributes sets relay completion attributes on a span.
//
// Example:
//
//	SetRelayAttributes(span, "stream", "completed", written)
func SetRelayAttributes(span trace.Span, kind, outcome string, bytes int64) {
	span.SetAttributes(
		attribute.String(AttrRelayKind, kind),
		attribute.String(AttrRelayOutcome, outcome),
		attribute.Int64(AttrRelayBytes, bytes),
	)
}

// SetSearchAttributes sets search result counts on a span. The query
// text itself is never attached.
func SetSearchAttributes(span trace.Span, limit, results int) {
	span.SetAttributes(
		attribute.Int(AttrSearchLimit, limit),
		attribute.Int(AttrSearchResults, results),
	)
}

// SetErrorAttributes marks the span failed. It records the error,
// attaches typed error attributes, and sets the span status.
//
// Example:
//
//	SetErrorAttributes(span, err, "upstream")
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}

	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorType, errorType),
		attribute.String(AttrErrorMessage, err.Error()),
	)

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetDurationAttribute sets the operation duration in milliseconds.
//
// Example:
//
//	start := time.Now()
//	// ... do work ...
//	SetDurationAttribute(span, time.Since(start).Milliseconds())
func SetDurationAttribute(span trace.Span, durationMs int64) {
	span.SetAttributes(attribute.Int64(AttrDuration, durationMs))
}

// SetThrottledAttribute marks a request the rate limiter rejected.
// Unthrottled requests carry no attribute.
func SetThrottledAttribute(span trace.Span, throttled bool) {
	if throttled {
		span.SetAttributes(attribute.Bool(AttrThrottled, true))
	}
}

// AddEvent adds a named event to the span with optional attributes.
//
// Example:
//
//	AddEvent(span, "headers_flushed",
//	    attribute.String("content_type", "audio/webm"),
//	)
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// AttributeBuilder accumulates span attributes for a span start option.
type AttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewAttributeBuilder creates an empty attribute builder.
func NewAttributeBuilder() *AttributeBuilder {
	return &AttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 8),
	}
}

// WithRequest adds request identity attributes.
func (ab *AttributeBuilder) WithRequest(requestID, route string) *AttributeBuilder {
	ab.attrs = append(ab.attrs, attribute.String(AttrRequestID, requestID))
	if route != "" {
		ab.attrs = append(ab.attrs, attribute.String(AttrRoute, route))
	}
	return ab
}

// WithMedia adds the media ID.
func (ab *AttributeBuilder) WithMedia(mediaID string) *AttributeBuilder {
	if mediaID != "" {
		ab.attrs = append(ab.attrs, attribute.String(AttrMediaID, mediaID))
	}
	return ab
}

// WithUpstream adds the upstream operation name.
func (ab *AttributeBuilder) WithUpstream(operation string) *AttributeBuilder {
	ab.attrs = append(ab.attrs, attribute.String(AttrUpstreamOperation, operation))
	return ab
}

// WithProxy adds the proxy endpoint key.
func (ab *AttributeBuilder) WithProxy(endpointKey string) *AttributeBuilder {
	if endpointKey != "" {
		ab.attrs = append(ab.attrs, attribute.String(AttrProxyEndpoint, endpointKey))
	}
	return ab
}

// WithRelay adds the relay kind.
func (ab *AttributeBuilder) WithRelay(kind string) *AttributeBuilder {
	ab.attrs = append(ab.attrs, attribute.String(AttrRelayKind, kind))
	return ab
}

// WithCustom adds one attribute of any supported type. Unsupported
// types fall back to their string representation.
func (ab *AttributeBuilder) WithCustom(key string, value interface{}) *AttributeBuilder {
	switch v := value.(type) {
	case string:
		ab.attrs = append(ab.attrs, attribute.String(key, v))
	case int:
		ab.attrs = append(ab.attrs, attribute.Int(key, v))
	case int64:
		ab.attrs = append(ab.attrs, attribute.Int64(key, v))
	case float64:
		ab.attrs = append(ab.attrs, attribute.Float64(key, v))
	case bool:
		ab.attrs = append(ab.attrs, attribute.Bool(key, v))
	default:
		ab.attrs = append(ab.attrs, attribute.String(key, fmt.Sprintf("%v", v)))
	}
	return ab
}

// Build returns the accumulated attributes as a span start option.
func (ab *AttributeBuilder) Build() trace.SpanStartOption {
	return trace.WithAttributes(ab.attrs...)
}

// Apply sets the accumulated attributes on an existing span.
func (ab *AttributeBuilder) Apply(span trace.Span) {
	span.SetAttributes(ab.attrs...)
}

// Attributes returns the raw attribute slice.
func (ab *AttributeBuilder) Attributes() []attribute.KeyValue {
	return ab.attrs
}
