package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 3000
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 0 * time.Second // relays must outlive any fixed write deadline
	DefaultIdleTimeout     = 120 * time.Second
	DefaultRequestTimeout  = 30 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// TLS defaults
	DefaultTLSEnabled    = false
	DefaultTLSMinVersion = "1.3"

	// CORS defaults
	DefaultCORSEnabled = true
	DefaultCORSMaxAge  = 3600 // 1 hour

	// Rate limit defaults
	DefaultRateLimit         = 100
	DefaultRateLimitWindow   = time.Hour
	DefaultRateLimitClients  = 100000
	DefaultRateLimitSchedule = "@every 10m"

	// Proxy pool defaults
	DefaultProxySource   = "static"
	DefaultProxyStrategy = "random"
	DefaultProxyFilePath = "proxies.txt"

	// Git source defaults
	DefaultGitBranch       = "main"
	DefaultGitPath         = "proxies.txt"
	DefaultGitDepth        = 1
	DefaultGitAuthType     = "none"
	DefaultGitPollInterval = 5 * time.Minute
	DefaultGitPollTimeout  = 20 * time.Second

	// Upstream defaults
	DefaultUpstreamBaseURL        = "https://www.youtube.com"
	DefaultUpstreamClientName     = "ANDROID"
	DefaultUpstreamClientVersion  = "19.09.37"
	DefaultUpstreamUserAgent      = "com.google.android.youtube/19.09.37 (Linux; U; Android 14) gzip"
	DefaultUpstreamOrigin         = "https://www.youtube.com"
	DefaultUpstreamAcceptLanguage = "en-US,en;q=0.9"
	DefaultUpstreamTimeout        = 20 * time.Second
	DefaultUpstreamDialTimeout    = 10 * time.Second
	DefaultUpstreamHeaderTimeout  = 20 * time.Second
	DefaultUpstreamMaxIdleConns   = 100
	DefaultUpstreamIdleTimeout    = 90 * time.Second
	DefaultThrottleRPS            = 4.0
	DefaultThrottleBurst          = 8

	// Format defaults
	DefaultQuality        = "highest audio"
	DefaultDownloadFormat = "mp3"

	// Journal defaults
	DefaultJournalBackend           = "memory"
	DefaultJournalBuffer            = 1024
	DefaultJournalWriteTimeout      = 5 * time.Second
	DefaultJournalMemoryMaxEntries  = 10000
	DefaultJournalSQLitePath        = "data/journal.db"
	DefaultJournalSQLiteBusyTimeout = 5 * time.Second
	DefaultJournalSQLiteCheckpoint  = time.Minute
	DefaultJournalRetentionMaxAge   = 168 * time.Hour // 7 days
	DefaultJournalRetentionSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "tunegate"
	DefaultMetricsSubsystem   = "gateway"
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingService     = "tunegate"
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingTimeout     = 10 * time.Second
	DefaultHealthLivenessPath = "/healthz"
	DefaultHealthReadyPath    = "/readyz"
	DefaultHealthCheckTimeout = 5 * time.Second

	// Watcher defaults
	DefaultWatcherDebounce = 500 * time.Millisecond
)

// NewDefault returns a configuration populated entirely from defaults.
// This is what the gateway runs with when no configuration file exists;
// environment overrides still apply on top.
func NewDefault() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.TLS.MinVersion == "" {
		cfg.Server.TLS.MinVersion = DefaultTLSMinVersion
	}
	applyCORSDefaults(&cfg.Server.CORS)

	// Rate limit defaults
	if cfg.RateLimit.Limit == 0 {
		cfg.RateLimit.Limit = DefaultRateLimit
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = DefaultRateLimitWindow
	}
	if cfg.RateLimit.MaxClients == 0 {
		cfg.RateLimit.MaxClients = DefaultRateLimitClients
	}
	if cfg.RateLimit.SweepSchedule == "" {
		cfg.RateLimit.SweepSchedule = DefaultRateLimitSchedule
	}
	if cfg.RateLimit.ExemptPaths == nil {
		cfg.RateLimit.ExemptPaths = []string{"/metrics", "/healthz", "/readyz"}
	}

	// Proxy pool defaults
	if cfg.Proxy.Source == "" {
		cfg.Proxy.Source = DefaultProxySource
	}
	if cfg.Proxy.Strategy == "" {
		cfg.Proxy.Strategy = DefaultProxyStrategy
	}
	if cfg.Proxy.File.Path == "" {
		cfg.Proxy.File.Path = DefaultProxyFilePath
	}
	applyGitDefaults(&cfg.Proxy.Git)

	// Upstream defaults
	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = DefaultUpstreamBaseURL
	}
	if cfg.Upstream.ClientName == "" {
		cfg.Upstream.ClientName = DefaultUpstreamClientName
	}
	if cfg.Upstream.ClientVersion == "" {
		cfg.Upstream.ClientVersion = DefaultUpstreamClientVersion
	}
	if cfg.Upstream.UserAgent == "" {
		cfg.Upstream.UserAgent = DefaultUpstreamUserAgent
	}
	if cfg.Upstream.Origin == "" {
		cfg.Upstream.Origin = DefaultUpstreamOrigin
	}
	if cfg.Upstream.AcceptLanguage == "" {
		cfg.Upstream.AcceptLanguage = DefaultUpstreamAcceptLanguage
	}
	if cfg.Upstream.AllowedHosts == nil {
		cfg.Upstream.AllowedHosts = []string{
			"www.youtube.com",
			"youtube.com",
			"m.youtube.com",
			"music.youtube.com",
			"youtu.be",
		}
	}
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = DefaultUpstreamTimeout
	}
	if cfg.Upstream.DialTimeout == 0 {
		cfg.Upstream.DialTimeout = DefaultUpstreamDialTimeout
	}
	if cfg.Upstream.ResponseHeaderTimeout == 0 {
		cfg.Upstream.ResponseHeaderTimeout = DefaultUpstreamHeaderTimeout
	}
	if cfg.Upstream.MaxIdleConns == 0 {
		cfg.Upstream.MaxIdleConns = DefaultUpstreamMaxIdleConns
	}
	if cfg.Upstream.IdleConnTimeout == 0 {
		cfg.Upstream.IdleConnTimeout = DefaultUpstreamIdleTimeout
	}
	if cfg.Upstream.Throttle.RPS == 0 {
		cfg.Upstream.Throttle.RPS = DefaultThrottleRPS
	}
	if cfg.Upstream.Throttle.Burst == 0 {
		cfg.Upstream.Throttle.Burst = DefaultThrottleBurst
	}

	// Format defaults
	if cfg.Formats.DefaultQuality == "" {
		cfg.Formats.DefaultQuality = DefaultQuality
	}
	if cfg.Formats.DefaultDownloadFormat == "" {
		cfg.Formats.DefaultDownloadFormat = DefaultDownloadFormat
	}

	// Journal defaults
	applyJournalDefaults(&cfg.Journal)

	// Telemetry defaults
	if !cfg.Telemetry.Logging.RedactCredentials {
		untouched := cfg.Telemetry.Logging.Level == "" &&
			cfg.Telemetry.Logging.Format == "" &&
			!cfg.Telemetry.Logging.AddSource
		if untouched {
			cfg.Telemetry.Logging.RedactCredentials = true
		}
	}
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if !cfg.Telemetry.Metrics.Enabled {
		// An untouched metrics section defaults to enabled.
		untouched := cfg.Telemetry.Metrics.Path == "" &&
			cfg.Telemetry.Metrics.Namespace == "" &&
			cfg.Telemetry.Metrics.Subsystem == "" &&
			cfg.Telemetry.Metrics.RequestDurationBuckets == nil &&
			cfg.Telemetry.Metrics.RelayBytesBuckets == nil
		if untouched {
			cfg.Telemetry.Metrics.Enabled = true
		}
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Telemetry.Metrics.RequestDurationBuckets == nil {
		cfg.Telemetry.Metrics.RequestDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 120.0}
	}
	if cfg.Telemetry.Metrics.RelayBytesBuckets == nil {
		cfg.Telemetry.Metrics.RelayBytesBuckets = []float64{
			64 * 1024, 256 * 1024, 1024 * 1024, 4 * 1024 * 1024,
			16 * 1024 * 1024, 64 * 1024 * 1024, 256 * 1024 * 1024,
		}
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingService
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if !cfg.Telemetry.Health.Enabled {
		untouched := cfg.Telemetry.Health.LivenessPath == "" &&
			cfg.Telemetry.Health.ReadinessPath == "" &&
			cfg.Telemetry.Health.CheckTimeout == 0
		if untouched {
			cfg.Telemetry.Health.Enabled = true
		}
	}
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultHealthLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultHealthReadyPath
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthCheckTimeout
	}

	// Watcher defaults
	if cfg.Watcher.Debounce == 0 {
		cfg.Watcher.Debounce = DefaultWatcherDebounce
	}
}

// applyCORSDefaults applies default values to CORS configuration.
func applyCORSDefaults(cors *CORSConfig) {
	if !cors.Enabled {
		// A fully zero CORS section means the operator never touched it;
		// in that case the default is enabled.
		hasAnyConfig := len(cors.AllowedOrigins) > 0 ||
			len(cors.AllowedMethods) > 0 ||
			len(cors.AllowedHeaders) > 0 ||
			len(cors.ExposedHeaders) > 0 ||
			cors.MaxAge > 0

		if !hasAnyConfig {
			cors.Enabled = DefaultCORSEnabled
		}
	}

	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "HEAD", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Content-Type", "Range", "X-Request-ID"}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{"X-Request-ID", "Content-Disposition", "Content-Length"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}

// applyGitDefaults applies default values to the git pool source.
func applyGitDefaults(git *GitSourceConfig) {
	if git.Branch == "" {
		git.Branch = DefaultGitBranch
	}
	if git.Path == "" {
		git.Path = DefaultGitPath
	}
	if git.Depth == 0 {
		git.Depth = DefaultGitDepth
	}
	if git.Auth.Type == "" {
		git.Auth.Type = DefaultGitAuthType
	}
	if git.Poll.Interval == 0 {
		git.Poll.Interval = DefaultGitPollInterval
	}
	if git.Poll.Timeout == 0 {
		git.Poll.Timeout = DefaultGitPollTimeout
	}
}

// applyJournalDefaults applies default values to journal configuration.
func applyJournalDefaults(j *JournalConfig) {
	if !j.Enabled {
		// An untouched journal section defaults to enabled.
		untouched := j.Backend == "" && j.Buffer == 0 && j.WriteTimeout == 0 &&
			j.Memory.MaxEntries == 0 && j.SQLite.Path == "" &&
			j.Retention.MaxAge == 0 && j.Retention.PruneSchedule == ""
		if untouched {
			j.Enabled = true
		}
	}
	if j.Backend == "" {
		j.Backend = DefaultJournalBackend
	}
	if j.Buffer == 0 {
		j.Buffer = DefaultJournalBuffer
	}
	if j.WriteTimeout == 0 {
		j.WriteTimeout = DefaultJournalWriteTimeout
	}
	if j.Memory.MaxEntries == 0 {
		j.Memory.MaxEntries = DefaultJournalMemoryMaxEntries
	}
	if j.SQLite.Path == "" {
		j.SQLite.Path = DefaultJournalSQLitePath
	}
	if j.SQLite.BusyTimeout == 0 {
		j.SQLite.BusyTimeout = DefaultJournalSQLiteBusyTimeout
	}
	if j.SQLite.CheckpointInterval == 0 {
		j.SQLite.CheckpointInterval = DefaultJournalSQLiteCheckpoint
	}
	if j.Retention.MaxAge == 0 {
		j.Retention.MaxAge = DefaultJournalRetentionMaxAge
	}
	if j.Retention.PruneSchedule == "" {
		j.Retention.PruneSchedule = DefaultJournalRetentionSchedule
	}
}
