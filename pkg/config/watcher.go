package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the loaded configuration file for changes. Most of the
// configuration is fixed for the process lifetime (the proxy pool and the
// rate limiter settings in particular), so the watcher never applies
// changes: it re-parses and re-validates the file and logs which sections
// drifted so the operator knows a restart is needed.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	path     string
	loaded   *Config
	debounce *Debouncer

	// onDrift is invoked after each processed change with the validation
	// result and the drifted section names. Tests hook this.
	onDrift func(err error, sections []string)

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher for the configuration file at path. The
// loaded config is the snapshot the process started with; drift is
// reported relative to it.
func NewWatcher(path string, loaded *Config, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("watcher requires a configuration file path")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultWatcherDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher:  fw,
		logger:   logger.With("component", "config_watcher"),
		path:     path,
		loaded:   loaded,
		debounce: NewDebouncer(debounce),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks processing file events until the context is cancelled or
// Stop is called. The parent directory is watched rather than the file
// itself so atomic-rename saves from editors are still observed.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	w.logger.Info("configuration watcher started", "path", w.path)

	base := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("configuration watcher stopped", "reason", "context cancelled")
			return nil

		case <-w.stopCh:
			w.logger.Info("configuration watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.shouldProcess(event, base) {
				continue
			}

			w.logger.Debug("configuration file event", "path", event.Name, "op", event.Op.String())
			w.debounce.Trigger(w.handleChange)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("configuration watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.debounce.Stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// shouldProcess filters events down to writes of the watched file.
func (w *Watcher) shouldProcess(event fsnotify.Event, base string) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	return filepath.Base(event.Name) == base
}

// handleChange re-loads the file and reports what drifted. The running
// configuration is never touched.
func (w *Watcher) handleChange() {
	fresh, err := LoadConfigWithEnvOverrides(w.path)
	if err != nil {
		w.logger.Error("changed configuration file is invalid; keeping running configuration",
			"path", w.path,
			"error", err,
		)
		w.notify(err, nil)
		return
	}

	sections := DiffSections(w.loaded, fresh)
	if len(sections) == 0 {
		w.logger.Debug("configuration file rewritten without changes", "path", w.path)
		w.notify(nil, nil)
		return
	}

	w.logger.Warn("configuration changed on disk; restart required to apply",
		"path", w.path,
		"sections", sections,
	)
	w.notify(nil, sections)
}

func (w *Watcher) notify(err error, sections []string) {
	if w.onDrift != nil {
		w.onDrift(err, sections)
	}
}

// DiffSections returns the names of top-level configuration sections that
// differ between two configurations.
func DiffSections(a, b *Config) []string {
	var sections []string
	if !reflect.DeepEqual(a.Server, b.Server) {
		sections = append(sections, "server")
	}
	if !reflect.DeepEqual(a.RateLimit, b.RateLimit) {
		sections = append(sections, "ratelimit")
	}
	if !reflect.DeepEqual(a.Proxy, b.Proxy) {
		sections = append(sections, "proxy")
	}
	if !reflect.DeepEqual(a.Upstream, b.Upstream) {
		sections = append(sections, "upstream")
	}
	if !reflect.DeepEqual(a.Formats, b.Formats) {
		sections = append(sections, "formats")
	}
	if !reflect.DeepEqual(a.Journal, b.Journal) {
		sections = append(sections, "journal")
	}
	if !reflect.DeepEqual(a.Telemetry, b.Telemetry) {
		sections = append(sections, "telemetry")
	}
	if !reflect.DeepEqual(a.Watcher, b.Watcher) {
		sections = append(sections, "watcher")
	}
	return sections
}

// Debouncer collects rapid events and triggers the callback only after a
// quiet period, preventing reload storms from editors that write in
// multiple steps.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopCh   chan struct{}
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Trigger arms the debouncer with a new event. The callback runs after the
// debounce interval if no new events occur.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
			d.mu.Lock()
			cb := d.callback
			d.mu.Unlock()

			if cb != nil {
				cb()
			}
		}
	})
}

// Stop stops the debouncer and cancels any pending callbacks.
func (d *Debouncer) Stop() {
	close(d.stopCh)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
