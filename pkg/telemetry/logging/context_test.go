package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestContextKeys(t *testing.T) {
	ctx := context.Background()

	ctx = WithRequestID(ctx, "req-123")
	if got := GetRequestID(ctx); got != "req-123" {
		t.Errorf("GetRequestID() = %q, want %q", got, "req-123")
	}

	ctx = WithClientIP(ctx, "203.0.113.9")
	if got := GetClientIP(ctx); got != "203.0.113.9" {
		t.Errorf("GetClientIP() = %q, want %q", got, "203.0.113.9")
	}

	ctx = WithMediaID(ctx, "dQw4w9WgXcQ")
	if got := GetMediaID(ctx); got != "dQw4w9WgXcQ" {
		t.Errorf("GetMediaID() = %q, want %q", got, "dQw4w9WgXcQ")
	}

	ctx = WithTraceID(ctx, "trace-abc")
	if got := GetTraceID(ctx); got != "trace-abc" {
		t.Errorf("GetTraceID() = %q, want %q", got, "trace-abc")
	}

	ctx = WithSpanID(ctx, "span-def")
	if got := GetSpanID(ctx); got != "span-def" {
		t.Errorf("GetSpanID() = %q, want %q", got, "span-def")
	}
}

func TestContextKeys_Empty(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		get  func(context.Context) string
	}{
		{"RequestID", GetRequestID},
		{"ClientIP", GetClientIP},
		{"MediaID", GetMediaID},
		{"TraceID", GetTraceID},
		{"SpanID", GetSpanID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.get(ctx); got != "" {
				t.Errorf("Get%s() = %q, want empty string", tt.name, got)
			}
		})
	}
}

func TestExtractContextFields(t *testing.T) {
	tests := []struct {
		name       string
		setupCtx   func(context.Context) context.Context
		wantFields map[string]string
	}{
		{
			name: "empty context",
			setupCtx: func(ctx context.Context) context.Context {
				return ctx
			},
			wantFields: map[string]string{},
		},
		{
			name: "request ID only",
			setupCtx: func(ctx context.Context) context.Context {
				return WithRequestID(ctx, "req-123")
			},
			wantFields: map[string]string{
				"request_id": "req-123",
			},
		},
		{
			name: "request fields",
			setupCtx: func(ctx context.Context) context.Context {
				ctx = WithRequestID(ctx, "req-456")
				ctx = WithClientIP(ctx, "198.51.100.7")
				ctx = WithMediaID(ctx, "dQw4w9WgXcQ")
				return ctx
			},
			wantFields: map[string]string{
				"request_id": "req-456",
				"client_ip":  "198.51.100.7",
				"media_id":   "dQw4w9WgXcQ",
			},
		},
		{
			name: "all fields",
			setupCtx: func(ctx context.Context) context.Context {
				ctx = WithRequestID(ctx, "req-789")
				ctx = WithClientIP(ctx, "203.0.113.4")
				ctx = WithMediaID(ctx, "jNQXAC9IVRw")
				ctx = WithTraceID(ctx, "trace-1")
				ctx = WithSpanID(ctx, "span-1")
				return ctx
			},
			wantFields: map[string]string{
				"request_id": "req-789",
				"client_ip":  "203.0.113.4",
				"media_id":   "jNQXAC9IVRw",
				"trace_id":   "trace-1",
				"span_id":    "span-1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := tt.setupCtx(context.Background())
			fields := extractContextFields(ctx)

			fieldsMap := make(map[string]string)
			for i := 0; i < len(fields); i += 2 {
				key := fields[i].(string)
				value := fields[i+1].(string)
				fieldsMap[key] = value
			}

			for key, expectedValue := range tt.wantFields {
				if gotValue, ok := fieldsMap[key]; !ok {
					t.Errorf("Expected field %q not found", key)
				} else if gotValue != expectedValue {
					t.Errorf("Field %q = %q, want %q", key, gotValue, expectedValue)
				}
			}

			if len(fieldsMap) != len(tt.wantFields) {
				t.Errorf("Got %d fields, want %d. Fields: %v",
					len(fieldsMap), len(tt.wantFields), fieldsMap)
			}
		})
	}
}

func TestContextLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{
		Level:  "debug",
		Format: "json",
		Writer: buf,
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-cl-1")
	ctx = WithClientIP(ctx, "203.0.113.9")

	ctxLogger := NewContextLogger(logger, ctx)
	if ctxLogger == nil {
		t.Fatal("NewContextLogger returned nil")
	}

	ctxLogger.Info("info message")

	output := buf.String()
	if !strings.Contains(output, "req-cl-1") {
		t.Errorf("request_id missing from output: %s", output)
	}
	if !strings.Contains(output, "203.0.113.9") {
		t.Errorf("client_ip missing from output: %s", output)
	}

	// Fields are attached at construction, not again per call
	if got := strings.Count(output, "request_id"); got != 1 {
		t.Errorf("request_id appears %d times, want 1: %s", got, output)
	}

	buf.Reset()
	ctxLogger.Debug("debug message")
	ctxLogger.Warn("warn message")
	ctxLogger.Error("error message")

	for _, msg := range []string{"debug message", "warn message", "error message"} {
		if !strings.Contains(buf.String(), msg) {
			t.Errorf("Message %q missing from output: %s", msg, buf.String())
		}
	}
}

func TestContextLogger_With(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{
		Level:  "info",
		Format: "json",
		Writer: buf,
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	ctx := WithRequestID(context.Background(), "req-with-1")
	ctxLogger := NewContextLogger(logger, ctx)

	childLogger := ctxLogger.With("component", "gateway")
	if childLogger == nil {
		t.Fatal("ContextLogger.With returned nil")
	}

	childLogger.Info("test message")

	output := buf.String()
	for _, field := range []string{"req-with-1", "component", "gateway", "test message"} {
		if !strings.Contains(output, field) {
			t.Errorf("Expected %q in output: %s", field, output)
		}
	}
}

func TestContextChaining(t *testing.T) {
	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-chain-1")
	ctx = WithClientIP(ctx, "10.1.2.3")

	if got := GetRequestID(ctx); got != "req-chain-1" {
		t.Errorf("After chaining, GetRequestID() = %q, want %q", got, "req-chain-1")
	}
	if got := GetClientIP(ctx); got != "10.1.2.3" {
		t.Errorf("After chaining, GetClientIP() = %q, want %q", got, "10.1.2.3")
	}

	ctx = WithMediaID(ctx, "dQw4w9WgXcQ")

	if got := GetMediaID(ctx); got != "dQw4w9WgXcQ" {
		t.Errorf("After more chaining, GetMediaID() = %q, want %q", got, "dQw4w9WgXcQ")
	}
	if got := GetRequestID(ctx); got != "req-chain-1" {
		t.Errorf("Original value changed: GetRequestID() = %q, want %q", got, "req-chain-1")
	}
}

func TestContextOverwrite(t *testing.T) {
	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-old")

	ctx = WithRequestID(ctx, "req-new")

	if got := GetRequestID(ctx); got != "req-new" {
		t.Errorf("After overwrite, GetRequestID() = %q, want %q", got, "req-new")
	}
}

func BenchmarkExtractContextFields(b *testing.B) {
	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-bench")
	ctx = WithClientIP(ctx, "203.0.113.9")
	ctx = WithMediaID(ctx, "dQw4w9WgXcQ")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = extractContextFields(ctx)
	}
}

func BenchmarkGetRequestID(b *testing.B) {
	ctx := WithRequestID(context.Background(), "req-123")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = GetRequestID(ctx)
	}
}
