package ratelimit

import "time"

// Config contains configuration for a fixed-window limiter.
type Config struct {
	// Limit is the maximum number of requests per client per window.
	Limit int64

	// Window is the length of the counting window.
	Window time.Duration

	// MaxClients caps how many client entries are tracked at once.
	// When the table is full, expired entries are swept inline before
	// a new client is admitted. Zero means no cap.
	MaxClients int

	// Now returns the current time. Tests inject a fake clock here;
	// nil means time.Now.
	Now func() time.Time
}

// Decision contains the result of a rate limit check.
// This is returned by Limiter.Check() to indicate if a request is allowed.
type Decision struct {
	// Allowed indicates if the request is permitted.
	Allowed bool

	// Reason explains why the request was rejected (if Allowed=false).
	Reason string

	// Limit is the configured limit value.
	Limit int64

	// Remaining is how many requests remain in the window.
	Remaining int64

	// Reset is when the limit window resets.
	Reset time.Time

	// RetryAfter suggests how long to wait before retrying.
	RetryAfter time.Duration
}
