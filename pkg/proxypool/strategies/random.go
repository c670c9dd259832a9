package strategies

import (
	"math/rand"
	"sync"
	"time"

	"wavecast-hq/tunegate/pkg/proxypool"
)

// Random implements uniform random selection across pool endpoints.
// Every endpoint has an equal chance of being picked on each call, so
// sustained traffic spreads evenly without any per-request state.
//
// The generator is seeded once at construction and guarded by a mutex
// for concurrent access. A fixed seed makes the pick sequence
// reproducible, which tests rely on.
type Random struct {
	// seed is the seed the generator was created with, kept for Reset
	seed int64

	// mu guards rng; math/rand sources are not safe for concurrent use
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom creates a new uniform random strategy.
// A zero seed derives the seed from the clock, which is the production
// behavior; tests pass a fixed seed for reproducible selection.
func NewRandom(seed int64) *Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Random{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Pick selects an endpoint uniformly at random.
//
// Returns proxypool.ErrEmptyPool when the available set is empty.
func (s *Random) Pick(available []proxypool.Endpoint) (proxypool.Endpoint, error) {
	if len(available) == 0 {
		return proxypool.Endpoint{}, proxypool.ErrEmptyPool
	}

	// Single endpoint - nothing to choose
	if len(available) == 1 {
		return available[0], nil
	}

	s.mu.Lock()
	index := s.rng.Intn(len(available))
	s.mu.Unlock()

	return available[index], nil
}

// Name returns the strategy name.
func (s *Random) Name() string {
	return "random"
}

// Reset re-seeds the generator with the original seed, restoring the
// pick sequence. This is primarily used for testing.
func (s *Random) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng = rand.New(rand.NewSource(s.seed))
}

// Seed returns the seed the generator was created with.
func (s *Random) Seed() int64 {
	return s.seed
}
