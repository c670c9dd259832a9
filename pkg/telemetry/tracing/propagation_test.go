package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"wavecast-hq/tunegate/pkg/telemetry/logging"
)

const (
	testTraceParent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	testTraceIDHex  = "4bf92f3577b34da6a3ce929d0e0e4736"
	testSpanIDHex   = "00f067aa0ba902b7"
)

// installPropagator installs the W3C composite propagator for the test.
// Tests do not rely on New having run first.
func installPropagator(t *testing.T) {
	t.Helper()

	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })
}

// TestValidateTraceParent tests traceparent header validation.
func TestValidateTraceParent(t *testing.T) {
	tests := []struct {
		name        string
		traceparent string
		want        bool
	}{
		{
			name:        "valid traceparent",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
			want:        true,
		},
		{
			name:        "valid traceparent - not sampled",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-00",
			want:        true,
		},
		{
			name:        "invalid - wrong number of parts",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7",
			want:        false,
		},
		{
			name:        "invalid - version wrong length",
			traceparent: "0-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
			want:        false,
		},
		{
			name:        "invalid - trace ID wrong length",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e473-00f067aa0ba902b7-01",
			want:        false,
		},
		{
			name:        "invalid - parent ID wrong length",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902-01",
			want:        false,
		},
		{
			name:        "invalid - flags wrong length",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-1",
			want:        false,
		},
		{
			name:        "invalid - non-hex characters in trace ID",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e473g-00f067aa0ba902b7-01",
			want:        false,
		},
		{
			name:        "invalid - non-hex characters in parent ID",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902bz-01",
			want:        false,
		},
		{
			name:        "invalid - all-zeros trace ID",
			traceparent: "00-00000000000000000000000000000000-00f067aa0ba902b7-01",
			want:        false,
		},
		{
			name:        "invalid - all-zeros parent ID",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-0000000000000000-01",
			want:        false,
		},
		{
			name:        "empty string",
			traceparent: "",
			want:        false,
		},
		{
			name:        "invalid format",
			traceparent: "invalid",
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateTraceParent(tt.traceparent); got != tt.want {
				t.Errorf("ValidateTraceParent() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestParseTraceParent tests traceparent header parsing.
func TestParseTraceParent(t *testing.T) {
	tests := []struct {
		name         string
		traceparent  string
		wantVersion  string
		wantTraceID  string
		wantParentID string
		wantFlags    string
		wantValid    bool
	}{
		{
			name:         "valid traceparent",
			traceparent:  testTraceParent,
			wantVersion:  "00",
			wantTraceID:  testTraceIDHex,
			wantParentID: testSpanIDHex,
			wantFlags:    "01",
			wantValid:    true,
		},
		{
			name:         "valid traceparent - not sampled",
			traceparent:  "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-00",
			wantVersion:  "00",
			wantTraceID:  testTraceIDHex,
			wantParentID: testSpanIDHex,
			wantFlags:    "00",
			wantValid:    true,
		},
		{
			name:        "invalid traceparent",
			traceparent: "invalid",
			wantValid:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, traceID, parentID, flags, valid := ParseTraceParent(tt.traceparent)
			if valid != tt.wantValid {
				t.Errorf("ParseTraceParent() valid = %v, want %v", valid, tt.wantValid)
			}
			if version != tt.wantVersion {
				t.Errorf("ParseTraceParent() version = %v, want %v", version, tt.wantVersion)
			}
			if traceID != tt.wantTraceID {
				t.Errorf("ParseTraceParent() traceID = %v, want %v", traceID, tt.wantTraceID)
			}
			if parentID != tt.wantParentID {
				t.Errorf("ParseTraceParent() parentID = %v, want %v", parentID, tt.wantParentID)
			}
			if flags != tt.wantFlags {
				t.Errorf("ParseTraceParent() flags = %v, want %v", flags, tt.wantFlags)
			}
		})
	}
}

// TestIsSampledFromTraceParent tests sampling flag extraction.
func TestIsSampledFromTraceParent(t *testing.T) {
	tests := []struct {
		name        string
		traceparent string
		want        bool
	}{
		{
			name:        "sampled (01)",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
			want:        true,
		},
		{
			name:        "not sampled (00)",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-00",
			want:        false,
		},
		{
			name:        "sampled with other flags (03)",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-03",
			want:        true,
		},
		{
			name:        "not sampled with other flags (02)",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-02",
			want:        false,
		},
		{
			name:        "invalid traceparent",
			traceparent: "invalid",
			want:        false,
		},
		{
			name:        "empty string",
			traceparent: "",
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSampledFromTraceParent(tt.traceparent); got != tt.want {
				t.Errorf("IsSampledFromTraceParent() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestIsHexString tests hex string validation.
func TestIsHexString(t *testing.T) {
	tests := []struct {
		name string
		s    string
		want bool
	}{
		{
			name: "valid lowercase hex",
			s:    "4bf92f3577b34da6a3ce929d0e0e4736",
			want: true,
		},
		{
			name: "valid uppercase hex",
			s:    "4BF92F3577B34DA6A3CE929D0E0E4736",
			want: true,
		},
		{
			name: "valid mixed case hex",
			s:    "4BF92f3577b34DA6a3CE929d0e0e4736",
			want: true,
		},
		{
			name: "invalid - contains g",
			s:    "4bf92f3577b34da6a3ce929d0e0e473g",
			want: false,
		},
		{
			name: "invalid - contains space",
			s:    "4bf92f35 77b34da6a3ce929d0e0e4736",
			want: false,
		},
		{
			name: "empty string",
			s:    "",
			want: true,
		},
		{
			name: "all zeros",
			s:    "00000000000000000000000000000000",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isHexString(tt.s); got != tt.want {
				t.Errorf("isHexString() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestExtract tests trace context extraction from HTTP headers.
func TestExtract(t *testing.T) {
	installPropagator(t)

	ctx := context.Background()

	headers := http.Header{}
	headers.Set("traceparent", testTraceParent)

	extracted := Extract(ctx, headers)
	if got := TraceID(extracted); got != testTraceIDHex {
		t.Errorf("TraceID() after Extract = %q, want %q", got, testTraceIDHex)
	}
	if !IsSampled(extracted) {
		t.Error("expected extracted context to be sampled")
	}

	// No trace headers leaves the context without a span.
	extracted = Extract(ctx, http.Header{})
	if SpanContext(extracted).IsValid() {
		t.Error("expected invalid span context without trace headers")
	}

	// A malformed header is ignored.
	headers = http.Header{}
	headers.Set("traceparent", "invalid")
	extracted = Extract(ctx, headers)
	if SpanContext(extracted).IsValid() {
		t.Error("expected invalid span context for malformed traceparent")
	}
}

// TestInject tests trace context injection into HTTP headers.
func TestInject(t *testing.T) {
	installPropagator(t)

	// Without a span nothing is written.
	headers := http.Header{}
	Inject(context.Background(), headers)
	if got := headers.Get("traceparent"); got != "" {
		t.Errorf("expected no traceparent without span, got %q", got)
	}

	// With a span context the traceparent carries the trace ID.
	ctx := trace.ContextWithSpanContext(context.Background(), testSpanContext(t))
	headers = http.Header{}
	Inject(ctx, headers)

	traceparent := headers.Get("traceparent")
	if !strings.Contains(traceparent, testTraceIDHex) {
		t.Errorf("traceparent %q does not carry trace ID %q", traceparent, testTraceIDHex)
	}
	if !ValidateTraceParent(traceparent) {
		t.Errorf("injected traceparent %q is not valid", traceparent)
	}
}

// TestMapCarriers tests round-tripping trace context through a map.
func TestMapCarriers(t *testing.T) {
	installPropagator(t)

	ctx := trace.ContextWithSpanContext(context.Background(), testSpanContext(t))

	carrier := map[string]string{}
	InjectToMap(ctx, carrier)

	if _, ok := carrier["traceparent"]; !ok {
		t.Fatal("expected traceparent in carrier after InjectToMap")
	}

	extracted := ExtractFromMap(context.Background(), carrier)
	if got := TraceID(extracted); got != testTraceIDHex {
		t.Errorf("TraceID() after round trip = %q, want %q", got, testTraceIDHex)
	}
}

// TestAnnotateContext tests mirroring span IDs into the logging context.
func TestAnnotateContext(t *testing.T) {
	// Without a span the context is unchanged.
	ctx := AnnotateContext(context.Background())
	if got := logging.GetTraceID(ctx); got != "" {
		t.Errorf("expected no trace ID without span, got %q", got)
	}

	ctx = trace.ContextWithSpanContext(context.Background(), testSpanContext(t))
	ctx = AnnotateContext(ctx)

	if got := logging.GetTraceID(ctx); got != testTraceIDHex {
		t.Errorf("GetTraceID() = %q, want %q", got, testTraceIDHex)
	}
	if got := logging.GetSpanID(ctx); got != testSpanIDHex {
		t.Errorf("GetSpanID() = %q, want %q", got, testSpanIDHex)
	}
}

// TestHTTPMiddleware tests the propagation middleware.
func TestHTTPMiddleware(t *testing.T) {
	installPropagator(t)

	var handlerCalled bool
	var seenTraceID string
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		seenTraceID = logging.GetTraceID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	middleware := HTTPMiddleware(testHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/info", nil)
	req.Header.Set("traceparent", testTraceParent)
	rec := httptest.NewRecorder()

	middleware.ServeHTTP(rec, req)

	if !handlerCalled {
		t.Fatal("HTTPMiddleware() did not call handler")
	}

	if got := rec.Header().Get("X-Trace-ID"); got != testTraceIDHex {
		t.Errorf("X-Trace-ID = %q, want %q", got, testTraceIDHex)
	}
	if got := rec.Header().Get("X-Span-ID"); got != testSpanIDHex {
		t.Errorf("X-Span-ID = %q, want %q", got, testSpanIDHex)
	}
	if seenTraceID != testTraceIDHex {
		t.Errorf("handler logging context trace ID = %q, want %q", seenTraceID, testTraceIDHex)
	}
}

// TestHTTPMiddleware_NoTraceContext tests the middleware without
// incoming trace headers.
func TestHTTPMiddleware_NoTraceContext(t *testing.T) {
	installPropagator(t)

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := HTTPMiddleware(testHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/info", nil)
	rec := httptest.NewRecorder()

	middleware.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Trace-ID"); got != "" {
		t.Errorf("expected no X-Trace-ID header, got %q", got)
	}
}
