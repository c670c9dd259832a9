package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"wavecast-hq/tunegate/pkg/gateway"
	"wavecast-hq/tunegate/pkg/gateway/middleware"
	"wavecast-hq/tunegate/pkg/telemetry/metrics"
	"wavecast-hq/tunegate/pkg/telemetry/tracing"
)

// Deps carries the collaborators shared by every route handler. Metrics
// and Tracer may be nil; handlers then skip instrumentation. A nil
// Logger falls back to slog.Default.
type Deps struct {
	Client  ProviderClient
	Metrics *metrics.Collector
	Tracer  *tracing.Tracer
	Logger  *slog.Logger
}

// noopTracer backs span when no tracer is configured, so handler code
// never branches on instrumentation being present.
var noopTracer = noop.NewTracerProvider().Tracer("gateway")

func (d *Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// span starts a child span named after the operation. The returned span
// is always safe to use and must be ended by the caller.
func (d *Deps) span(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if d.Tracer != nil {
		return d.Tracer.Start(ctx, name, opts...)
	}
	return noopTracer.Start(ctx, name, opts...)
}

// fail settles a failed request: the error message goes to the request
// journal and the mapped JSON error envelope goes to the client.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	middleware.SetJournalError(r.Context(), err.Error())
	gateway.WriteDomainError(w, err)
}

// allowGet admits GET and HEAD requests and answers anything else with
// 405 and an Allow header.
func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	gateway.WriteError(w, http.StatusMethodNotAllowed, gateway.ErrKindInvalidRequest,
		fmt.Sprintf("method %s not allowed, use GET", r.Method))
	return false
}

// intParam reads a positive integer query parameter. Absent, malformed
// or non-positive values fall back to def; values above max are clamped
// when max is positive.
func intParam(r *http.Request, name string, def, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}

// observeUpstream records one upstream call against the collector,
// classifying the error when the call failed.
func observeUpstream(collector *metrics.Collector, operation string, start time.Time, err error) {
	if collector == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
		collector.RecordUpstreamError(operation, gateway.ErrorType(err))
	}
	collector.RecordUpstreamRequest(operation, status, time.Since(start).Seconds())
}
