package ratelimit

import (
	"sync"
	"time"
)

// window tracks one client's request count in the current fixed window.
type window struct {
	count int64
	reset time.Time
}

// Limiter implements per-client fixed-window rate limiting.
//
// Each client gets an independent window. The first request opens the
// window with a count of one; requests inside the window increment the
// count until the limit is reached; a request after the window's reset
// time opens a fresh window. A rejected request never mutates the
// window, so hammering a closed window cannot extend it.
//
// # Thread Safety
//
// All state is owned by the Limiter and guarded by a single mutex, so a
// check is atomic: with one slot left, two simultaneous requests admit
// exactly one.
type Limiter struct {
	limit      int64
	window     time.Duration
	maxClients int
	now        func() time.Time

	mu      sync.Mutex
	clients map[string]*window
}

// NewLimiter creates a new fixed-window rate limiter.
//
// Example:
//
//	// 100 requests per client per hour
//	limiter := ratelimit.NewLimiter(ratelimit.Config{
//	    Limit:  100,
//	    Window: time.Hour,
//	})
func NewLimiter(config Config) *Limiter {
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &Limiter{
		limit:      config.Limit,
		window:     config.Window,
		maxClients: config.MaxClients,
		now:        now,
		clients:    make(map[string]*window),
	}
}

// Check records a request attempt for the client and reports whether it
// is allowed. The count, window bookkeeping, and verdict happen under
// one lock acquisition.
func (l *Limiter) Check(clientID string) *Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	w, exists := l.clients[clientID]
	if !exists {
		if l.maxClients > 0 && len(l.clients) >= l.maxClients {
			// Reclaim expired entries before growing the table. The
			// cap is soft: a full table of live windows still admits
			// the new client rather than rejecting a request the
			// algorithm would allow.
			l.sweepLocked(now, 0)
		}
		reset := now.Add(l.window)
		l.clients[clientID] = &window{count: 1, reset: reset}
		return &Decision{
			Allowed:   true,
			Limit:     l.limit,
			Remaining: l.limit - 1,
			Reset:     reset,
		}
	}

	// A stale window resets rather than carrying its count forward.
	if now.After(w.reset) {
		w.count = 1
		w.reset = now.Add(l.window)
		return &Decision{
			Allowed:   true,
			Limit:     l.limit,
			Remaining: l.limit - 1,
			Reset:     w.reset,
		}
	}

	if w.count >= l.limit {
		// No mutation on rejection: the window keeps its count and
		// its reset time.
		return &Decision{
			Allowed:    false,
			Reason:     "rate limit exceeded",
			Limit:      l.limit,
			Remaining:  0,
			Reset:      w.reset,
			RetryAfter: w.reset.Sub(now),
		}
	}

	w.count++
	return &Decision{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit - w.count,
		Reset:     w.reset,
	}
}

// SweepExpired removes client entries whose windows have passed and
// returns how many were removed. A positive max bounds the number of
// entries examined in this pass so a huge table cannot stall the
// caller; zero examines the whole table.
func (l *Limiter) SweepExpired(max int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sweepLocked(l.now(), max)
}

// sweepLocked removes expired entries. Caller must hold the lock.
func (l *Limiter) sweepLocked(now time.Time, max int) int {
	removed := 0
	examined := 0
	for id, w := range l.clients {
		if max > 0 && examined >= max {
			break
		}
		examined++
		if now.After(w.reset) {
			delete(l.clients, id)
			removed++
		}
	}
	return removed
}

// Size returns the number of tracked client entries, expired or not.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Limit returns the configured per-window request limit.
func (l *Limiter) Limit() int64 {
	return l.limit
}

// Window returns the configured window length.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// Reset discards all tracked clients. This is primarily for testing.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clients = make(map[string]*window)
}
