// Package ratelimit provides per-client fixed-window rate limiting.
//
// # Overview
//
// Every client identifier gets an independent fixed window:
//
//   - The first request from a client opens a window with count 1
//   - Requests inside the window increment the count up to the limit
//   - A request after the window's reset time opens a fresh window
//   - A rejected request never mutates the window
//
// The check is atomic, so concurrent requests racing for the last slot
// admit exactly one.
//
// # Usage
//
//	limiter := ratelimit.NewLimiter(ratelimit.Config{
//	    Limit:  100,
//	    Window: time.Hour,
//	})
//
//	decision := limiter.Check(clientIP)
//	if !decision.Allowed {
//	    // Reject with 429; decision carries Reset and RetryAfter.
//	}
//
// # Eviction
//
// Client entries are not removed when their window passes; they are
// reclaimed by sweeps. A Sweeper runs bounded sweep passes on a cron
// schedule, and the limiter also sweeps inline when the client table
// hits its configured cap.
//
//	sweeper := ratelimit.NewSweeper(limiter, "@every 10m", 0, logger)
//	if err := sweeper.Start(ctx); err != nil {
//	    // invalid schedule
//	}
//
// # Thread Safety
//
// All limiter state sits behind a single mutex. Windows are small and
// checks are constant-time, so contention stays low at gateway request
// rates.
package ratelimit
