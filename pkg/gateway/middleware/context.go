package middleware

import (
	"context"
	"sync"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const (
	// RequestIDKey stores the unique request ID.
	RequestIDKey contextKey = "request_id"

	// StartTimeKey stores the request start time for latency calculation.
	StartTimeKey contextKey = "start_time"

	// journalEntryKey stores the journal entry under construction.
	journalEntryKey contextKey = "journal_entry"
)

// Entry accumulates the journal fields only the handler knows. The
// journal middleware seeds the context with one and reads it back when
// the request finishes.
type Entry struct {
	mu      sync.Mutex
	mediaID string
	errMsg  string
}

func (e *Entry) snapshot() (mediaID, errMsg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mediaID, e.errMsg
}

// SetMediaID attaches the resolved media identifier to the current
// request's journal entry. No-op when the request is not journaled.
func SetMediaID(ctx context.Context, id string) {
	entry, ok := ctx.Value(journalEntryKey).(*Entry)
	if !ok {
		return
	}
	entry.mu.Lock()
	entry.mediaID = id
	entry.mu.Unlock()
}

// SetJournalError attaches the terminal error message to the current
// request's journal entry. No-op when the request is not journaled.
func SetJournalError(ctx context.Context, msg string) {
	entry, ok := ctx.Value(journalEntryKey).(*Entry)
	if !ok {
		return
	}
	entry.mu.Lock()
	entry.errMsg = msg
	entry.mu.Unlock()
}
