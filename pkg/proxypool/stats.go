package proxypool

import (
	"sync"
	"sync/atomic"
	"time"
)

// PickStats tracks endpoint selection statistics using atomic operations.
// All counters are updated lock-free so recording a pick never contends
// with the request path.
type PickStats struct {
	// totalPicks is the total number of selections made
	totalPicks atomic.Int64

	// picksPerEndpoint tracks selections per endpoint key
	picksPerEndpoint sync.Map // map[string]*atomic.Int64

	// errors is the number of failed selections
	errors atomic.Int64

	// lastResetTime is when statistics were last reset
	lastResetTime time.Time

	// mu protects lastResetTime
	mu sync.RWMutex
}

// StatsSnapshot is a point-in-time copy of pool selection statistics.
// It is safe to read without locks.
type StatsSnapshot struct {
	// TotalPicks is the total number of selections made.
	TotalPicks int64

	// PicksPerEndpoint maps endpoint keys to selection counts.
	PicksPerEndpoint map[string]int64

	// Errors is the number of failed selections.
	Errors int64

	// LastResetTime is when statistics were last reset.
	LastResetTime time.Time
}

// NewPickStats creates a new selection statistics tracker.
func NewPickStats() *PickStats {
	return &PickStats{
		lastResetTime: time.Now(),
	}
}

// RecordPick records a successful selection of the given endpoint.
func (s *PickStats) RecordPick(endpointKey string) {
	s.totalPicks.Add(1)

	val, _ := s.picksPerEndpoint.LoadOrStore(endpointKey, &atomic.Int64{})
	counter := val.(*atomic.Int64)
	counter.Add(1)
}

// RecordError records a failed selection.
func (s *PickStats) RecordError() {
	s.errors.Add(1)
}

// Snapshot returns a point-in-time copy of the statistics.
func (s *PickStats) Snapshot() *StatsSnapshot {
	perEndpoint := make(map[string]int64)
	s.picksPerEndpoint.Range(func(key, value interface{}) bool {
		counter := value.(*atomic.Int64)
		perEndpoint[key.(string)] = counter.Load()
		return true
	})

	s.mu.RLock()
	resetTime := s.lastResetTime
	s.mu.RUnlock()

	return &StatsSnapshot{
		TotalPicks:       s.totalPicks.Load(),
		PicksPerEndpoint: perEndpoint,
		Errors:           s.errors.Load(),
		LastResetTime:    resetTime,
	}
}

// Reset clears all counters and updates the reset timestamp.
func (s *PickStats) Reset() {
	s.totalPicks.Store(0)
	s.errors.Store(0)
	s.picksPerEndpoint.Range(func(key, value interface{}) bool {
		s.picksPerEndpoint.Delete(key)
		return true
	})

	s.mu.Lock()
	s.lastResetTime = time.Now()
	s.mu.Unlock()
}
