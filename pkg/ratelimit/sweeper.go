package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSweepBatch bounds how many entries one scheduled sweep examines.
const DefaultSweepBatch = 10000

// Sweeper periodically removes expired client windows from a Limiter.
// Without it the client table only grows, because the limiter itself
// drops entries lazily and only under capacity pressure.
type Sweeper struct {
	limiter  *Limiter
	schedule string
	batch    int
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
	onSweep  func(removed, tracked int)
}

// NewSweeper creates a sweeper that runs on the given cron schedule.
// Descriptors like "@every 10m" are accepted alongside standard five
// field expressions.
func NewSweeper(limiter *Limiter, schedule string, batch int, logger *slog.Logger) *Sweeper {
	if batch <= 0 {
		batch = DefaultSweepBatch
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		limiter:  limiter,
		schedule: schedule,
		batch:    batch,
		cron:     cron.New(),
		logger:   logger.With("component", "ratelimit.sweeper"),
	}
}

// OnSweep registers a callback observing each sweep pass with the count
// removed and the count still tracked. Set it before Start; sweeps read
// it without locking.
func (s *Sweeper) OnSweep(fn func(removed, tracked int)) {
	s.onSweep = fn
}

// Start begins scheduled sweeping. An empty schedule disables the
// sweeper; an unparseable one is a startup error.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("sweep schedule not configured, skipping sweeper")
		return nil
	}

	// Validate cron expression
	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, s.runSweep); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("rate limit sweeper started",
		"schedule", s.schedule,
		"batch", s.batch,
	)

	// Wait for context cancellation in background
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runSweep executes one sweep pass.
func (s *Sweeper) runSweep() {
	before := s.limiter.Size()
	removed := s.limiter.SweepExpired(s.batch)
	after := s.limiter.Size()

	if s.onSweep != nil {
		s.onSweep(removed, after)
	}

	if removed > 0 {
		s.logger.Info("swept expired rate limit windows",
			"removed", removed,
			"tracked_before", before,
			"tracked_after", after,
		)
	} else {
		s.logger.Debug("sweep pass removed nothing",
			"tracked", before,
		)
	}
}

// Stop stops the sweeper and waits for any running sweep to complete.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done() // Wait for running jobs to finish
		s.running = false
		s.logger.Info("rate limit sweeper stopped")
	}
}

// IsRunning returns true if the sweeper is running.
func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled sweep time.
func (s *Sweeper) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return nil
	}

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
