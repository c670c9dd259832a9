package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Status values reported for individual checks and for the aggregate.
const (
	// StatusOK marks a healthy component or a live process.
	StatusOK = "ok"

	// StatusReady marks an aggregate where every component can serve.
	StatusReady = "ready"

	// StatusDegraded marks an aggregate with at least one unhealthy component.
	StatusDegraded = "degraded"

	// StatusUnhealthy marks a component that failed its check.
	StatusUnhealthy = "unhealthy"

	// StatusDisabled marks an optional component that is switched off.
	// Disabled components never degrade the aggregate.
	StatusDisabled = "disabled"
)

// CheckFunc performs a health check for one component. It returns nil
// when the component is healthy, ErrDisabled when the component is
// configured off, or an error describing the problem.
type CheckFunc func(ctx context.Context) error

// CheckResult is the outcome of a single component check.
type CheckResult struct {
	// Status is one of StatusOK, StatusUnhealthy, or StatusDisabled.
	Status string `json:"status"`

	// Message carries the failure detail for unhealthy results.
	Message string `json:"message,omitempty"`

	// DurationMS is how long the check took, in milliseconds.
	DurationMS float64 `json:"duration_ms,omitempty"`
}

// Report is the aggregate health of the gateway at one point in time.
type Report struct {
	// Status is StatusOK for liveness, or one of StatusReady and
	// StatusDegraded for readiness.
	Status string `json:"status"`

	// Checks holds per-component results. Liveness reports omit it.
	Checks map[string]CheckResult `json:"checks,omitempty"`

	// Timestamp is when the report was produced.
	Timestamp time.Time `json:"timestamp"`
}

var (
	// ErrCheckTimeout is reported when a component check exceeds the
	// checker's per-check timeout.
	ErrCheckTimeout = errors.New("health check timeout")

	// ErrDisabled is returned by checks for components that are
	// configured off, such as the journal when recording is disabled
	// or the proxy pool when the gateway connects directly.
	ErrDisabled = errors.New("component disabled")
)

// Checker runs registered component checks and aggregates the results.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc

	checkTimeout time.Duration
}

// New creates a health checker. A zero checkTimeout defaults to
// 5 seconds per component check.
func New(checkTimeout time.Duration) *Checker {
	if checkTimeout == 0 {
		checkTimeout = 5 * time.Second
	}

	return &Checker{
		checks:       make(map[string]CheckFunc),
		checkTimeout: checkTimeout,
	}
}

// RegisterCheck registers a check function for a named component.
// Registering the same name again replaces the previous function.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checks[name] = check
}

// UnregisterCheck removes the check for a named component.
func (c *Checker) UnregisterCheck(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.checks, name)
}

// CheckLiveness reports whether the process is alive. It never runs
// component checks and is safe to call at probe frequency.
func (c *Checker) CheckLiveness(ctx context.Context) Report {
	return Report{
		Status:    StatusOK,
		Timestamp: time.Now(),
	}
}

// CheckReadiness runs every registered component check concurrently and
// aggregates the results. The aggregate is StatusDegraded when any
// component is unhealthy. Disabled components are reported but do not
// affect the aggregate.
func (c *Checker) CheckReadiness(ctx context.Context) Report {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	// With nothing registered the gateway is ready as soon as it binds.
	if len(checks) == 0 {
		return Report{
			Status:    StatusReady,
			Checks:    make(map[string]CheckResult),
			Timestamp: time.Now(),
		}
	}

	results := make(map[string]CheckResult)
	var resultMu sync.Mutex
	var wg sync.WaitGroup

	for name, check := range checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()

			result := c.runCheck(ctx, check)

			resultMu.Lock()
			results[name] = result
			resultMu.Unlock()
		}(name, check)
	}

	wg.Wait()

	status := StatusReady
	for _, result := range results {
		if result.Status == StatusUnhealthy {
			status = StatusDegraded
		}
	}

	return Report{
		Status:    status,
		Checks:    results,
		Timestamp: time.Now(),
	}
}

// runCheck executes a single check under the per-check timeout. A check
// that panics is reported unhealthy rather than crashing the probe.
func (c *Checker) runCheck(ctx context.Context, check CheckFunc) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	start := time.Now()

	errChan := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				errChan <- fmt.Errorf("check panic: %v", r)
			}
		}()
		errChan <- check(checkCtx)
	}()

	select {
	case err := <-errChan:
		elapsed := millis(time.Since(start))
		switch {
		case err == nil:
			return CheckResult{
				Status:     StatusOK,
				DurationMS: elapsed,
			}
		case errors.Is(err, ErrDisabled):
			return CheckResult{
				Status:     StatusDisabled,
				DurationMS: elapsed,
			}
		default:
			return CheckResult{
				Status:     StatusUnhealthy,
				Message:    err.Error(),
				DurationMS: elapsed,
			}
		}

	case <-checkCtx.Done():
		return CheckResult{
			Status:     StatusUnhealthy,
			Message:    ErrCheckTimeout.Error(),
			DurationMS: millis(time.Since(start)),
		}
	}
}

// GetCheck returns the check function registered for a component, or
// nil when the name is unknown.
func (c *Checker) GetCheck(name string) CheckFunc {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.checks[name]
}

// ListChecks returns the names of all registered checks.
func (c *Checker) ListChecks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}

	return names
}

// CheckCount returns the number of registered checks.
func (c *Checker) CheckCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.checks)
}

func millis(d time.Duration) float64 {
	return d.Seconds() * 1000
}
