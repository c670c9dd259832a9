package proxypool

import (
	"errors"
	"fmt"
	"strings"
)

// Common pool errors that can be checked with errors.Is().
var (
	// ErrEmptyPool is returned when selection is attempted against a
	// pool with no endpoints.
	ErrEmptyPool = errors.New("proxy pool is empty")

	// ErrNilStrategy is returned when a pool is constructed without a
	// selection strategy.
	ErrNilStrategy = errors.New("selection strategy cannot be nil")

	// ErrUnknownStrategy is returned when an unknown selection strategy
	// is configured.
	ErrUnknownStrategy = errors.New("unknown selection strategy")
)

// UnknownStrategyError is returned when the configured selection strategy
// is not recognized.
type UnknownStrategyError struct {
	// Strategy is the invalid strategy name.
	Strategy string

	// Available contains the valid strategy names.
	Available []string
}

// Error implements the error interface.
func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown selection strategy %q (available strategies: %s)",
		e.Strategy, strings.Join(e.Available, ", "))
}

// Is implements error matching for errors.Is().
func (e *UnknownStrategyError) Is(target error) bool {
	return target == ErrUnknownStrategy
}
