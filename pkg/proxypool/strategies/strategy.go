package strategies

import (
	"wavecast-hq/tunegate/pkg/proxypool"
)

// Strategy is the interface that all selection strategies must implement.
// It defines the contract for picking a proxy endpoint from the pool for
// one outbound call.
//
// Implementations must be thread-safe as they will be called concurrently
// from multiple goroutines handling simultaneous requests.
//
// Example usage:
//
//	strategy := NewRandom(seed)
//	ep, err := strategy.Pick(endpoints)
//	if err != nil {
//	    return err
//	}
//	// Route the call through ep...
type Strategy interface {
	// Pick selects an endpoint from the available set.
	//
	// Returns the selected endpoint and nil on success.
	// Returns proxypool.ErrEmptyPool when the set is empty.
	//
	// Implementations must be thread-safe.
	Pick(available []proxypool.Endpoint) (proxypool.Endpoint, error)

	// Name returns the strategy name for logging and statistics.
	// Examples: "random", "round_robin"
	Name() string

	// Reset resets the strategy's internal state.
	// This is primarily used for testing to restore deterministic picks.
	Reset()
}

// New creates the strategy named in configuration.
// An empty name selects the default (random). The seed only affects the
// random strategy; zero derives a seed from the clock.
func New(name string, seed int64) (Strategy, error) {
	switch name {
	case "random", "":
		return NewRandom(seed), nil
	case "round_robin":
		return NewRoundRobin(), nil
	default:
		return nil, &proxypool.UnknownStrategyError{
			Strategy:  name,
			Available: []string{"random", "round_robin"},
		}
	}
}
