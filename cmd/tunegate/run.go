package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"wavecast-hq/tunegate/pkg/cli"
	"wavecast-hq/tunegate/pkg/config"
	"wavecast-hq/tunegate/pkg/journal"
	"wavecast-hq/tunegate/pkg/journal/retention"
	"wavecast-hq/tunegate/pkg/journal/storage"
	"wavecast-hq/tunegate/pkg/proxypool"
	"wavecast-hq/tunegate/pkg/proxypool/gitsource"
	"wavecast-hq/tunegate/pkg/proxypool/strategies"
	"wavecast-hq/tunegate/pkg/ratelimit"
	"wavecast-hq/tunegate/pkg/server"
	"wavecast-hq/tunegate/pkg/telemetry"
	"wavecast-hq/tunegate/pkg/upstream"
)

var runFlags struct {
	port     int
	logLevel string
	dryRun   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Tunegate gateway",
	Long: `Start the Tunegate gateway with the specified configuration.

The gateway listens on the configured address and serves the search,
info, trending, stream, and download routes, all behind the per-client
rate limiter.

Examples:
  # Start with default config
  tunegate run

  # Start with custom config
  tunegate run --config /etc/tunegate/config.yaml

  # Override listen port
  tunegate run --port 8080

  # Validate config without starting the gateway
  tunegate run --dry-run`,
	RunE: runGateway,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVarP(&runFlags.port, "port", "p", 0, "override listen port")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the gateway")
}

func runGateway(cmd *cobra.Command, args []string) error {
	// Load configuration. An absent default file means defaults plus
	// environment variables, so the gateway starts with no config at all.
	configPath := resolveConfigPath()
	if err := config.Initialize(configPath); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if runFlags.port != 0 {
		cfg.Server.Port = runFlags.port
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	} else if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	// Telemetry carries the logger, metrics collector, tracer, and
	// health checker used by everything below.
	tel, err := telemetry.New(&cfg.Telemetry, Version, GitCommit, BuildDate)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	logger := tel.Logger().Slog()
	slog.SetDefault(logger)

	// Print startup banner
	printBanner(cfg, configPath)

	// ctx stops the background schedulers: journal pruning, limiter
	// sweeps, the pool drift watcher, and the config watcher.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize request journaling (if enabled)
	var recorder *journal.Recorder
	if cfg.Journal.Enabled {
		slog.Info("initializing request journal", "backend", cfg.Journal.Backend)

		var store journal.Storage
		switch cfg.Journal.Backend {
		case "sqlite":
			sqliteConfig := &storage.SQLiteConfig{
				Path:               cfg.Journal.SQLite.Path,
				BusyTimeout:        cfg.Journal.SQLite.BusyTimeout,
				CheckpointInterval: cfg.Journal.SQLite.CheckpointInterval,
			}
			store, err = storage.NewSQLiteStorage(sqliteConfig, logger)
			if err != nil {
				return fmt.Errorf("failed to create sqlite journal storage: %w", err)
			}
		case "memory":
			store = storage.NewMemoryStorage(cfg.Journal.Memory.MaxEntries)
		default:
			return fmt.Errorf("unsupported journal backend: %s", cfg.Journal.Backend)
		}
		defer store.Close()

		recorder = journal.NewRecorder(store, &journal.Config{
			Enabled:      true,
			Buffer:       cfg.Journal.Buffer,
			WriteTimeout: cfg.Journal.WriteTimeout,
		}, logger)
		defer recorder.Close()

		// Start retention pruning if a schedule is configured
		if cfg.Journal.Retention.PruneSchedule != "" {
			pruner := retention.NewPruner(store, &retention.Config{
				MaxAge:        cfg.Journal.Retention.MaxAge,
				PruneSchedule: cfg.Journal.Retention.PruneSchedule,
			}, logger)
			if err := pruner.Start(ctx); err != nil {
				slog.Warn("failed to start journal retention scheduler", "error", err)
			} else {
				defer pruner.Stop()
				if next := pruner.NextPruning(); next != nil {
					slog.Debug("journal retention scheduler started", "next_pruning", next)
				}
			}
		}

		// Readiness fails when journal storage stops answering.
		tel.Health().RegisterCheck("journal", func(ctx context.Context) error {
			_, err := store.Count(ctx, &journal.Query{Limit: 1})
			return err
		})

		fmt.Println("✓ Journal initialized")
	}

	// Rate limiter plus its scheduled sweep of expired client windows.
	// Sweep results feed the limiter gauges.
	limiter := ratelimit.NewLimiter(ratelimit.Config{
		Limit:      cfg.RateLimit.Limit,
		Window:     cfg.RateLimit.Window,
		MaxClients: cfg.RateLimit.MaxClients,
	})

	sweeper := ratelimit.NewSweeper(limiter, cfg.RateLimit.SweepSchedule, 0, logger)
	sweeper.OnSweep(func(removed, tracked int) {
		tel.Metrics().RecordLimiterEvictions(removed)
		tel.Metrics().UpdateTrackedClients(tracked)
	})
	if err := sweeper.Start(ctx); err != nil {
		slog.Warn("failed to start rate limit sweeper", "error", err)
	} else {
		defer sweeper.Stop()
	}
	fmt.Printf("✓ Rate limiter ready (%d requests per %s)\n", cfg.RateLimit.Limit, cfg.RateLimit.Window)

	// Build the outbound proxy pool (if enabled)
	var pool *proxypool.Pool
	if cfg.Proxy.Enabled {
		endpoints, repo, err := loadPoolEndpoints(ctx, &cfg.Proxy)
		if err != nil {
			return fmt.Errorf("failed to load proxy pool: %w", err)
		}

		strategy, err := strategies.New(cfg.Proxy.Strategy, cfg.Proxy.Seed)
		if err != nil {
			return fmt.Errorf("failed to build proxy strategy: %w", err)
		}

		pool, err = proxypool.NewPool(proxypool.Config{
			Endpoints: endpoints,
			Strategy:  strategy,
			Transport: proxypool.TransportConfig{
				DialTimeout:           cfg.Upstream.DialTimeout,
				ResponseHeaderTimeout: cfg.Upstream.ResponseHeaderTimeout,
				MaxIdleConns:          cfg.Upstream.MaxIdleConns,
				IdleConnTimeout:       cfg.Upstream.IdleConnTimeout,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to create proxy pool: %w", err)
		}
		defer pool.CloseIdleConnections()
		tel.Metrics().UpdateProxyPoolSize(pool.Size())

		// The drift watcher only reports; the live pool never changes.
		if repo != nil && cfg.Proxy.Git.Poll.Enabled {
			watcher := gitsource.NewWatcher(repo, cfg.Proxy.Git.Poll.Interval, logger)
			if err := watcher.Start(ctx); err != nil {
				slog.Warn("failed to start proxy pool drift watcher", "error", err)
			} else {
				defer watcher.Stop()
			}
		}

		fmt.Printf("✓ Proxy pool loaded (%d endpoints, %s strategy)\n", pool.Size(), pool.StrategyName())
	}

	// Upstream provider client
	upstreamConfig := upstream.Config{
		BaseURL:               cfg.Upstream.BaseURL,
		APIKey:                cfg.Upstream.APIKey,
		ClientName:            cfg.Upstream.ClientName,
		ClientVersion:         cfg.Upstream.ClientVersion,
		UserAgent:             cfg.Upstream.UserAgent,
		Origin:                cfg.Upstream.Origin,
		AcceptLanguage:        cfg.Upstream.AcceptLanguage,
		AllowedHosts:          cfg.Upstream.AllowedHosts,
		Timeout:               cfg.Upstream.Timeout,
		DialTimeout:           cfg.Upstream.DialTimeout,
		ResponseHeaderTimeout: cfg.Upstream.ResponseHeaderTimeout,
		MaxIdleConns:          cfg.Upstream.MaxIdleConns,
		IdleConnTimeout:       cfg.Upstream.IdleConnTimeout,
		Pool:                  pool,
		Logger:                logger,
	}
	if cfg.Upstream.Throttle.Enabled {
		upstreamConfig.ThrottleRPS = cfg.Upstream.Throttle.RPS
		upstreamConfig.ThrottleBurst = cfg.Upstream.Throttle.Burst
	}
	client, err := upstream.NewClient(upstreamConfig)
	if err != nil {
		return fmt.Errorf("failed to create upstream client: %w", err)
	}
	fmt.Println("✓ Upstream client ready")

	// Watch the configuration file for drift (if enabled). Changes are
	// logged, not applied; operators restart to pick them up.
	if cfg.Watcher.Enabled && configPath != "" {
		watcher, err := config.NewWatcher(configPath, cfg, cfg.Watcher.Debounce, logger)
		if err != nil {
			slog.Warn("failed to create config watcher", "error", err)
		} else {
			go func() {
				if err := watcher.Watch(ctx); err != nil {
					slog.Warn("config watcher stopped", "error", err)
				}
			}()
			defer watcher.Stop()
		}
	}

	// Assemble the gateway
	srv, err := server.New(server.Options{
		Config:    cfg,
		Telemetry: tel,
		Limiter:   limiter,
		Recorder:  recorder,
		Client:    client,
		Version:   Version,
		Commit:    GitCommit,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println()
	fmt.Printf("✓ Gateway listening on %s\n", cfg.Server.ListenAddress())
	scheme := "http"
	if cfg.Server.TLS.Enabled {
		scheme = "https"
	}
	if cfg.Telemetry.Health.Enabled {
		fmt.Printf("  Health:  %s://%s%s\n", scheme, cfg.Server.ListenAddress(), cfg.Telemetry.Health.LivenessPath)
	}
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("  Metrics: %s://%s%s\n", scheme, cfg.Server.ListenAddress(), cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Start blocks until SIGINT/SIGTERM or a listener failure, then
	// drains in-flight requests before returning.
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Gateway stopped")
	return nil
}

// loadPoolEndpoints resolves the configured pool source into a list of
// endpoints. For the git source the cloned repository is also returned
// so the caller can start drift polling against it.
func loadPoolEndpoints(ctx context.Context, cfg *config.ProxyPoolConfig) ([]proxypool.Endpoint, *gitsource.Repository, error) {
	switch cfg.Source {
	case "static":
		endpoints, err := proxypool.ParseEndpoints(cfg.Endpoints)
		return endpoints, nil, err
	case "file":
		endpoints, err := proxypool.LoadEndpointsFile(cfg.File.Path)
		return endpoints, nil, err
	case "git":
		repo, err := gitsource.NewRepository(&cfg.Git)
		if err != nil {
			return nil, nil, err
		}
		cloneCtx, cancel := context.WithTimeout(ctx, gitCloneTimeout(cfg))
		defer cancel()
		if err := repo.Clone(cloneCtx); err != nil {
			return nil, nil, err
		}
		endpoints, err := repo.LoadPool()
		if err != nil {
			return nil, nil, err
		}
		return endpoints, repo, nil
	default:
		return nil, nil, fmt.Errorf("unsupported proxy pool source: %s", cfg.Source)
	}
}

// gitCloneTimeout reuses the poll timeout for the startup clone so one
// knob bounds all git operations.
func gitCloneTimeout(cfg *config.ProxyPoolConfig) time.Duration {
	if cfg.Git.Poll.Timeout > 0 {
		return cfg.Git.Poll.Timeout
	}
	return time.Minute
}

func printBanner(cfg *config.Config, configPath string) {
	fmt.Printf("Tunegate v%s\n", Version)
	if configPath != "" {
		fmt.Printf("Loading configuration from: %s\n", configPath)
	} else {
		fmt.Println("No configuration file found, using defaults and environment")
	}
	fmt.Println("✓ Configuration loaded")

	// Journal info
	if cfg.Journal.Enabled {
		slog.Debug("journal enabled", "backend", cfg.Journal.Backend)
	}

	// Proxy pool info
	if cfg.Proxy.Enabled {
		slog.Debug("proxy pool enabled", "source", cfg.Proxy.Source, "strategy", cfg.Proxy.Strategy)
	}

	// Upstream info
	slog.Debug("upstream provider", "base_url", cfg.Upstream.BaseURL, "throttled", cfg.Upstream.Throttle.Enabled)
}
