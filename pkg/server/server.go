package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"wavecast-hq/tunegate/pkg/config"
	"wavecast-hq/tunegate/pkg/gateway/handlers"
	"wavecast-hq/tunegate/pkg/gateway/middleware"
	"wavecast-hq/tunegate/pkg/journal"
	"wavecast-hq/tunegate/pkg/ratelimit"
	"wavecast-hq/tunegate/pkg/telemetry"
	"wavecast-hq/tunegate/pkg/telemetry/tracing"
)

// Options carries the assembled dependencies for a Server. The command
// entry point builds them from configuration; tests build them directly.
type Options struct {
	// Config is the full gateway configuration. Required.
	Config *config.Config

	// Telemetry provides the logger, metrics collector, tracer and
	// health checker. Required.
	Telemetry *telemetry.Telemetry

	// Limiter admits or rejects requests per client. Required.
	Limiter *ratelimit.Limiter

	// Recorder journals served requests. Nil disables journaling.
	Recorder *journal.Recorder

	// Client talks to the upstream media provider. Required.
	Client handlers.ProviderClient

	// Version and Commit identify the build in the root document.
	Version string
	Commit  string
}

// Server is the HTTP gateway: the six public routes behind the shared
// middleware chain, plus the operational endpoints telemetry mounts.
type Server struct {
	cfg     *config.Config
	tel     *telemetry.Telemetry
	log     *slog.Logger
	handler http.Handler

	httpServer *http.Server

	stopChan chan struct{}
	stopOnce sync.Once

	mu      sync.RWMutex
	running bool
}

// New validates the options and assembles the route table and
// middleware chain. The server does not listen until Start.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("server: nil config")
	}
	if opts.Telemetry == nil {
		return nil, fmt.Errorf("server: nil telemetry")
	}
	if opts.Limiter == nil {
		return nil, fmt.Errorf("server: nil rate limiter")
	}
	if opts.Client == nil {
		return nil, fmt.Errorf("server: nil upstream client")
	}

	s := &Server{
		cfg:      opts.Config,
		tel:      opts.Telemetry,
		log:      opts.Telemetry.Logger().Slog(),
		stopChan: make(chan struct{}),
	}
	s.handler = s.buildHandler(opts)
	return s, nil
}

// buildHandler registers the routes and wraps them in the middleware
// chain. Request flow, outermost first: request ID, trace propagation,
// logging, metrics, CORS, journal, recovery, rate limit, route table.
// The rate limiter sits innermost so every route, the unmatched ones
// included, spends quota before any handler runs.
func (s *Server) buildHandler(opts Options) http.Handler {
	cfg := s.cfg

	deps := &handlers.Deps{
		Client:  opts.Client,
		Metrics: s.tel.Metrics(),
		Tracer:  s.tel.Tracer(),
		Logger:  s.log,
	}
	streamOpts := handlers.StreamOptions{
		DefaultQuality:        cfg.Formats.DefaultQuality,
		DefaultDownloadFormat: cfg.Formats.DefaultDownloadFormat,
		Sticky:                cfg.Proxy.Sticky,
	}

	// Metadata routes get a request deadline. Stream and download run
	// for as long as the relay does and are bounded by client
	// disconnect instead.
	metadata := middleware.TimeoutMiddleware(cfg.Server.RequestTimeout)

	mux := http.NewServeMux()
	mux.Handle("/", handlers.NewRootHandler(opts.Version, opts.Commit))
	mux.Handle("/api/search", metadata(handlers.NewSearchHandler(deps)))
	mux.Handle("/api/info", metadata(handlers.NewInfoHandler(deps)))
	mux.Handle("/api/trending", metadata(handlers.NewTrendingHandler(deps)))
	mux.Handle("/api/stream", handlers.NewStreamHandler(deps, streamOpts))
	mux.Handle("/api/download", handlers.NewDownloadHandler(deps, streamOpts))

	s.tel.Mount(mux)

	routes := middleware.NewRouteSet(s.routePaths()...)

	var handler http.Handler = mux
	handler = middleware.RateLimitMiddleware(opts.Limiter, &cfg.RateLimit, s.tel.Metrics(), routes)(handler)
	handler = middleware.RecoveryMiddleware(handler)
	handler = middleware.JournalMiddleware(middleware.JournalOptions{
		Recorder:          opts.Recorder,
		Metrics:           s.tel.Metrics(),
		Routes:            routes,
		TrustForwardedFor: cfg.RateLimit.TrustForwardedFor,
		ExemptPaths:       s.operationalPaths(),
	})(handler)
	handler = middleware.CORSMiddleware(&cfg.Server.CORS)(handler)
	handler = middleware.MetricsMiddleware(s.tel.Metrics(), routes)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = tracing.HTTPMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)
	return handler
}

// routePaths returns every path the gateway registers. The set labels
// metrics and journal records so route cardinality stays bounded no
// matter what clients request.
func (s *Server) routePaths() []string {
	paths := []string{
		"/",
		"/api/search",
		"/api/info",
		"/api/stream",
		"/api/download",
		"/api/trending",
	}
	return append(paths, s.operationalPaths()...)
}

// operationalPaths lists the endpoints telemetry mounts. They are
// exempt from journaling so probe traffic does not flood the record
// stream. The defaults mirror what Mount applies when a path is unset.
func (s *Server) operationalPaths() []string {
	t := &s.cfg.Telemetry
	paths := []string{"/version"}
	if t.Metrics.Enabled {
		paths = append(paths, pathOrDefault(t.Metrics.Path, "/metrics"))
	}
	if t.Health.Enabled {
		paths = append(paths,
			pathOrDefault(t.Health.LivenessPath, "/healthz"),
			pathOrDefault(t.Health.ReadinessPath, "/readyz"))
	}
	return paths
}

func pathOrDefault(path, def string) string {
	if path == "" {
		return def
	}
	return path
}

// Start runs the listener and blocks until the context is cancelled, a
// SIGINT or SIGTERM arrives, Stop is called, or the listener fails. On
// every path but listener failure it drains in-flight requests within
// the configured shutdown timeout before returning.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}

	srv := &http.Server{
		Addr:           s.cfg.Server.ListenAddress(),
		Handler:        s.handler,
		ReadTimeout:    s.cfg.Server.ReadTimeout,
		WriteTimeout:   s.cfg.Server.WriteTimeout,
		IdleTimeout:    s.cfg.Server.IdleTimeout,
		MaxHeaderBytes: s.cfg.Server.MaxHeaderBytes,
	}

	useTLS := s.cfg.Server.TLS.Enabled
	if useTLS {
		tlsConfig, err := tlsConfigFrom(&s.cfg.Server.TLS)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("configure tls: %w", err)
		}
		srv.TLSConfig = tlsConfig
	}

	s.httpServer = srv
	s.running = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.log.Info("gateway listening",
			"address", srv.Addr,
			"tls", useTLS,
		)
		var err error
		if useTLS {
			err = srv.ListenAndServeTLS(s.cfg.Server.TLS.CertFile, s.cfg.Server.TLS.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.log.Info("context cancelled, shutting down")
	case sig := <-sigChan:
		s.log.Info("signal received, shutting down", "signal", sig.String())
	case err := <-errChan:
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("listener failed: %w", err)
	case <-s.stopChan:
		s.log.Info("stop requested, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops accepting connections and waits for in-flight
// requests to finish, up to the context deadline. Safe to call more
// than once and before Start.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.running = false
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("gateway stopped")
	return nil
}

// Stop asks a blocked Start to begin graceful shutdown. It does not
// wait for the drain; Start's return does.
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

// Handler returns the fully wired route table and middleware chain.
// Tests drive it directly without a listener.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// IsRunning reports whether the listener is up.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// tlsConfigFrom builds the listener TLS settings. Certificate and key
// files must exist at startup; ListenAndServeTLS reads them after.
func tlsConfigFrom(cfg *config.TLSConfig) (*tls.Config, error) {
	if cfg.CertFile == "" || cfg.KeyFile == "" {
		return nil, fmt.Errorf("tls enabled without cert_file and key_file")
	}
	if _, err := os.Stat(cfg.CertFile); err != nil {
		return nil, fmt.Errorf("tls certificate: %w", err)
	}
	if _, err := os.Stat(cfg.KeyFile); err != nil {
		return nil, fmt.Errorf("tls key: %w", err)
	}

	minVersion := uint16(tls.VersionTLS13)
	if cfg.MinVersion == "1.2" {
		minVersion = tls.VersionTLS12
	}
	return &tls.Config{MinVersion: minVersion}, nil
}
