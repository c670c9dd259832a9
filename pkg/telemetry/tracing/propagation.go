package tracing

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"wavecast-hq/tunegate/pkg/telemetry/logging"
)

// W3C Trace Context Propagation
//
// The W3C Trace Context specification (https://www.w3.org/TR/trace-context/)
// defines the HTTP headers that carry trace context across service
// boundaries.
//
// # Headers
//
// traceparent holds the trace context:
//
//	Format:  version-trace_id-parent_id-trace_flags
//	Example: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//
// tracestate optionally holds vendor-specific entries:
//
//	Format:  key1=value1,key2=value2
//
// Bit 0 of the trace flags byte is the sampled flag. A gateway span
// created under an incoming traceparent keeps the same trace ID and
// records the caller's span ID as its parent.

// Propagator returns the configured text map propagator. After New has
// run with tracing enabled this is the composite W3C Trace Context and
// Baggage propagator.
func Propagator() propagation.TextMapPropagator {
	return otel.GetTextMapPropagator()
}

// Extract reads trace context from HTTP headers into a context.
//
// Call it on the server side when a request arrives:
//
//	ctx := tracing.Extract(r.Context(), r.Header)
//	ctx, span := tracer.Start(ctx, "search")
//	defer span.End()
//
// Without trace headers the original context is returned.
func Extract(ctx context.Context, headers http.Header) context.Context {
	return Propagator().Extract(ctx, propagation.HeaderCarrier(headers))
}

// Inject writes the trace context from ctx into HTTP headers.
//
// Call it on the client side before an outbound request:
//
//	req, _ := http.NewRequestWithContext(ctx, "GET", url, nil)
//	tracing.Inject(ctx, req.Header)
func Inject(ctx context.Context, headers http.Header) {
	Propagator().Inject(ctx, propagation.HeaderCarrier(headers))
}

// ExtractFromMap reads trace context from a string map, for carriers
// that are not HTTP headers.
func ExtractFromMap(ctx context.Context, carrier map[string]string) context.Context {
	return Propagator().Extract(ctx, propagation.MapCarrier(carrier))
}

// InjectToMap writes trace context into a string map.
func InjectToMap(ctx context.Context, carrier map[string]string) {
	Propagator().Inject(ctx, propagation.MapCarrier(carrier))
}

// AnnotateContext copies the active trace and span IDs into the logging
// context, so request logs line up with exported spans. A context
// without a valid span is returned unchanged.
func AnnotateContext(ctx context.Context) context.Context {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ctx
	}
	ctx = logging.WithTraceID(ctx, sc.TraceID().String())
	return logging.WithSpanID(ctx, sc.SpanID().String())
}

// HTTPMiddleware extracts trace context from incoming requests, mirrors
// the IDs into the logging context, and echoes them in response headers
// so callers can correlate responses with traces.
//
// Usage:
//
//	mux.Handle("/", tracing.HTTPMiddleware(handler))
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := Extract(r.Context(), r.Header)

		if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
			w.Header().Set("X-Trace-ID", sc.TraceID().String())
			w.Header().Set("X-Span-ID", sc.SpanID().String())
			ctx = AnnotateContext(ctx)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ValidateTraceParent reports whether a traceparent header is valid per
// the W3C Trace Context format:
//
//	version-trace_id-parent_id-trace_flags
//	  version:     2 hex digits
//	  trace_id:    32 hex digits, not all zeros
//	  parent_id:   16 hex digits, not all zeros
//	  trace_flags: 2 hex digits
func ValidateTraceParent(traceparent string) bool {
	parts := strings.Split(traceparent, "-")
	if len(parts) != 4 {
		return false
	}

	if len(parts[0]) != 2 || !isHexString(parts[0]) {
		return false
	}

	if len(parts[1]) != 32 || !isHexString(parts[1]) {
		return false
	}

	if len(parts[2]) != 16 || !isHexString(parts[2]) {
		return false
	}

	if len(parts[3]) != 2 || !isHexString(parts[3]) {
		return false
	}

	if parts[1] == "00000000000000000000000000000000" {
		return false
	}

	if parts[2] == "0000000000000000" {
		return false
	}

	return true
}

func isHexString(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// ParseTraceParent splits a traceparent header into its components.
// Returns empty strings and valid=false for a malformed header.
func ParseTraceParent(traceparent string) (version, traceID, parentID, flags string, valid bool) {
	if !ValidateTraceParent(traceparent) {
		return "", "", "", "", false
	}

	parts := strings.Split(traceparent, "-")
	return parts[0], parts[1], parts[2], parts[3], true
}

// IsSampledFromTraceParent reports whether the sampled flag is set in a
// traceparent header. Malformed headers report false.
func IsSampledFromTraceParent(traceparent string) bool {
	_, _, _, flags, valid := ParseTraceParent(traceparent)
	if !valid {
		return false
	}

	var flagsByte byte
	if _, err := fmt.Sscanf(flags, "%02x", &flagsByte); err != nil {
		return false
	}

	return (flagsByte & 0x01) == 0x01
}
