// Package tracing provides OpenTelemetry distributed tracing for the gateway.
//
// # Overview
//
// The tracing package implements W3C Trace Context propagation, span
// creation, and trace export over OTLP gRPC. Spans make the path of a
// request visible from the HTTP handler through upstream calls to the
// byte relay.
//
// # Trace Context Propagation
//
// The package implements W3C Trace Context (https://www.w3.org/TR/trace-context/)
// for propagating trace context across HTTP boundaries:
//
//	traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//	tracestate: congo=t61rcWkgMzE
//
// # Sampling
//
// Three sampling strategies are supported:
//   - always: sample every trace
//   - never: sample no traces
//   - ratio: sample a fraction of traces by trace ID hash
//
// All strategies are parent-based, so a sampled caller always produces
// sampled gateway spans.
//
// # Usage
//
//	cfg := &config.TracingConfig{
//	    Enabled:     true,
//	    Sampler:     "ratio",
//	    SampleRatio: 0.1,
//	    Endpoint:    "localhost:4317",
//	    ServiceName: "tunegate",
//	    Insecure:    true,
//	}
//	tracer, err := tracing.New(cfg, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "stream")
//	defer span.End()
//
//	tracing.SetMediaAttribute(span, mediaID)
//	tracing.SetFormatAttributes(span, format.Itag, format.AudioQuality, format.MimeType)
//
// # Span Hierarchy
//
// A stream request produces a span tree like:
//
//	stream (31s)
//	├── upstream.player (450ms)
//	│   └── proxy.select (1µs)
//	├── format.pick (1ms)
//	└── relay (30.5s)
//
// # HTTP Integration
//
// Extract trace context from incoming requests:
//
//	ctx := tracing.Extract(r.Context(), r.Header)
//	ctx, span := tracer.Start(ctx, "search")
//	defer span.End()
//
// Inject trace context into outbound upstream requests:
//
//	req, _ := http.NewRequestWithContext(ctx, "GET", url, nil)
//	tracing.Inject(ctx, req.Header)
//
// HTTPMiddleware does the extraction automatically and mirrors the
// trace and span IDs into the logging context, so a request's log lines
// and its exported spans share identifiers.
//
// # Exporter
//
// Spans export over OTLP gRPC to a local collector or agent:
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: localhost:4317
//	    insecure: true
//	    timeout: 10s
//
// # Attribute Helpers
//
// Common attributes are set through helpers that keep key naming
// consistent:
//
//	tracing.SetRequestAttributes(span, requestID, "/api/stream")
//	tracing.SetUpstreamAttributes(span, "player", resp.StatusCode)
//	tracing.SetRelayAttributes(span, "download", outcome.String(), written)
//	tracing.SetErrorAttributes(span, err, "upstream")
package tracing
