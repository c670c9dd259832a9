package gitsource

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"
)

// Watcher polls the pool repository and reports drift between the pool
// loaded at startup and the remote. It NEVER applies changes: the pool is
// fixed for the life of the process, and the drift warning tells the
// operator a restart is needed to pick up the new pool.
//
// Basic usage:
//
//	watcher := gitsource.NewWatcher(repo, 5*time.Minute, logger)
//	if err := watcher.Start(ctx); err != nil {
//	    return err
//	}
//	defer watcher.Stop()
type Watcher struct {
	repo         *Repository
	pollInterval time.Duration
	stopCh       chan struct{}
	mu           sync.RWMutex
	running      bool
	logger       *slog.Logger
	metrics      *WatcherMetrics

	// onPoll is invoked after each poll with the pull result and error.
	// Tests use it to observe drift detection.
	onPoll func(result *PullResult, err error)
}

// NewWatcher creates a new drift watcher for the given repository.
// The watcher will poll for changes at the specified interval.
func NewWatcher(repo *Repository, interval time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		repo:         repo,
		pollInterval: interval,
		stopCh:       make(chan struct{}),
		logger:       logger.With("component", "proxypool.gitsource"),
		metrics:      &WatcherMetrics{},
	}
}

// Start begins watching the repository for drift.
// It starts a background goroutine that polls at the configured interval.
// The context is used for cancellation - when the context is cancelled,
// the watcher stops. Returns an error if the watcher is already running
// or if the initial commit cannot be read.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}

	commit, err := w.repo.GetCurrentCommit()
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to get initial commit: %w", err)
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("pool drift watcher started",
		"poll_interval", w.pollInterval,
		"initial_commit", commit.SHA[:8])

	go w.pollLoop(ctx)

	return nil
}

// Stop gracefully stops the watcher.
// Returns an error if the watcher is not running.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return fmt.Errorf("watcher not running")
	}

	w.logger.Info("stopping pool drift watcher")
	close(w.stopCh)
	w.running = false

	return nil
}

// IsRunning returns true if the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// pollLoop runs the drift detection loop until stopped.
func (w *Watcher) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("pool drift watcher stopped by context cancellation")
			return
		case <-w.stopCh:
			w.logger.Info("pool drift watcher stopped by Stop()")
			return
		case <-ticker.C:
			if err := w.checkForDrift(ctx); err != nil {
				w.logger.Error("error checking for pool drift",
					"error", err)
			}
		}
	}
}

// checkForDrift pulls the remote and reports whether the pool file moved.
func (w *Watcher) checkForDrift(ctx context.Context) error {
	w.mu.Lock()
	w.metrics.PollCount++
	w.metrics.LastPollTime = time.Now()
	w.mu.Unlock()

	result, err := w.repo.Pull(ctx)
	if w.onPoll != nil {
		defer func() { w.onPoll(result, err) }()
	}
	if err != nil {
		w.mu.Lock()
		w.metrics.FailedPolls++
		w.mu.Unlock()
		return fmt.Errorf("failed to pull: %w", err)
	}

	if !result.HadChanges {
		return nil
	}

	if !w.poolFileChanged(result.ChangedFiles) {
		w.logger.Debug("pool repository changed without touching the pool file",
			"from_sha", result.FromSHA[:8],
			"to_sha", result.ToSHA[:8],
			"changed_files", len(result.ChangedFiles))
		return nil
	}

	w.mu.Lock()
	w.metrics.DriftCount++
	w.metrics.LastDriftTime = time.Now()
	w.mu.Unlock()

	w.logger.Warn("proxy pool changed in git; restart required to apply",
		"from_sha", result.FromSHA[:8],
		"to_sha", result.ToSHA[:8],
		"pool_file", w.repo.config.Path)

	return nil
}

// poolFileChanged reports whether the configured pool file is among the
// changed paths. Git reports paths with forward slashes regardless of
// platform.
func (w *Watcher) poolFileChanged(files []string) bool {
	want := filepath.ToSlash(w.repo.config.Path)
	for _, file := range files {
		if file == want {
			return true
		}
	}
	return false
}

// ForceCheck immediately checks for drift without waiting for the next
// poll interval.
func (w *Watcher) ForceCheck(ctx context.Context) error {
	w.mu.RLock()
	if !w.running {
		w.mu.RUnlock()
		return fmt.Errorf("watcher not running")
	}
	w.mu.RUnlock()

	w.logger.Info("force checking for pool drift")
	return w.checkForDrift(ctx)
}

// GetMetrics returns current watcher metrics.
// This returns a copy of the metrics for thread-safe access.
func (w *Watcher) GetMetrics() WatcherMetrics {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return *w.metrics
}
