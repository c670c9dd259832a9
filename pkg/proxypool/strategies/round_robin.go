package strategies

import (
	"sync/atomic"

	"wavecast-hq/tunegate/pkg/proxypool"
)

// RoundRobin implements strict rotation across pool endpoints.
// Consecutive calls walk the endpoint set in order, so load distributes
// exactly evenly over any full rotation.
//
// The strategy is thread-safe and uses an atomic counter for concurrent
// access. The counter is reset on overflow to prevent unbounded growth.
type RoundRobin struct {
	// counter is the global rotation counter
	counter atomic.Int64
}

// NewRoundRobin creates a new round-robin strategy.
func NewRoundRobin() *RoundRobin {
	return &RoundRobin{}
}

// Pick selects the next endpoint in rotation.
//
// Returns proxypool.ErrEmptyPool when the available set is empty.
func (s *RoundRobin) Pick(available []proxypool.Endpoint) (proxypool.Endpoint, error) {
	if len(available) == 0 {
		return proxypool.Endpoint{}, proxypool.ErrEmptyPool
	}

	// Single endpoint - no need for rotation
	if len(available) == 1 {
		return available[0], nil
	}

	// Get next index using atomic counter and increment
	count := s.counter.Add(1) - 1

	// Handle overflow (reset counter when it gets too large)
	if count >= 1_000_000_000 {
		s.counter.CompareAndSwap(count+1, 0)
		count = 0
	}

	index := int(count % int64(len(available)))
	return available[index], nil
}

// Name returns the strategy name.
func (s *RoundRobin) Name() string {
	return "round_robin"
}

// Reset resets the rotation counter.
// This is primarily used for testing.
func (s *RoundRobin) Reset() {
	s.counter.Store(0)
}
