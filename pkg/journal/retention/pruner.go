package retention

import (
	"context"
	"log/slog"
	"time"

	"wavecast-hq/tunegate/pkg/journal"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// MaxAge is how long journal records are kept.
	// 0 means keep records forever (no pruning).
	MaxAge time.Duration

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxAge:        7 * 24 * time.Hour,
		PruneSchedule: "0 3 * * *",
	}
}

// Pruner enforces the retention policy on journal records. It deletes by age
// only; the record count is already bounded by the storage backends
// themselves.
type Pruner struct {
	storage   journal.Storage
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
}

// NewPruner creates a new retention pruner.
func NewPruner(storage journal.Storage, config *Config, logger *slog.Logger) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	pruner := &Pruner{
		storage: storage,
		config:  config,
		logger:  logger.With("component", "journal.retention"),
	}
	pruner.scheduler = NewScheduler(pruner, logger)

	return pruner
}

// Prune deletes journal records older than MaxAge and returns the number
// deleted. A zero MaxAge disables pruning.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.MaxAge <= 0 {
		return 0, nil
	}

	cutoff := time.Now().Add(-p.config.MaxAge)

	deleted, err := p.storage.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, journal.NewRetentionError(p.config.MaxAge, err)
	}

	if deleted > 0 {
		p.logger.Info("pruned journal records",
			"deleted_count", deleted,
			"max_age", p.config.MaxAge,
			"cutoff", cutoff,
		)
	} else {
		p.logger.Debug("no journal records pruned",
			"max_age", p.config.MaxAge,
		)
	}

	return deleted, nil
}

// Start starts the automatic pruning scheduler.
// Call this when starting the application.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler.
// Call this during graceful shutdown.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
