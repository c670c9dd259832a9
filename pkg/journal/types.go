package journal

import (
	"context"
	"fmt"
	"time"
)

// Record is one journaled gateway request. A record is written once,
// after the response (or relay) has finished, and never updated.
type Record struct {
	// Identity
	ID        string `json:"id"`         // UUID v4
	RequestID string `json:"request_id"` // From the request middleware

	// Time is when the request completed.
	Time time.Time `json:"time"`

	// Request
	Route    string `json:"route"`     // Registered route pattern, never the raw URL
	Method   string `json:"method"`    // HTTP method
	ClientID string `json:"client_id"` // Rate limiter client identity

	// Outcome
	Status     int   `json:"status"`      // HTTP status code sent
	BytesOut   int64 `json:"bytes_out"`   // Response body bytes written
	DurationMS int64 `json:"duration_ms"` // Total request duration in milliseconds

	// MediaID is set for info, stream, and download requests.
	MediaID string `json:"media_id,omitempty"`

	// Error is the terminal error message for failed requests.
	Error string `json:"error,omitempty"`
}

const (
	// DefaultQueryLimit is the number of records returned when a query
	// does not set a limit.
	DefaultQueryLimit = 100

	// MaxQueryLimit is the maximum number of records a single query may
	// return.
	MaxQueryLimit = 10000
)

// Query defines filter parameters for reading journal records. Results
// are always ordered newest first.
type Query struct {
	// Time range
	Start *time.Time `json:"start,omitempty"` // Inclusive start time
	End   *time.Time `json:"end,omitempty"`   // Inclusive end time

	// Filters
	Route    string `json:"route,omitempty"`     // Exact route pattern
	ClientID string `json:"client_id,omitempty"` // Exact client identity
	Status   int    `json:"status,omitempty"`    // Exact status code, 0 matches any

	// Errored filters on the presence of an error message. Nil matches
	// both errored and clean records.
	Errored *bool `json:"errored,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`  // Max records to return
	Offset int `json:"offset,omitempty"` // Skip N records
}

// Validate returns an error if any query parameter is out of range.
func (q *Query) Validate() error {
	if q.Limit < 0 {
		return fmt.Errorf("limit must be >= 0, got %d", q.Limit)
	}
	if q.Limit > MaxQueryLimit {
		return fmt.Errorf("limit must be <= %d, got %d", MaxQueryLimit, q.Limit)
	}
	if q.Offset < 0 {
		return fmt.Errorf("offset must be >= 0, got %d", q.Offset)
	}
	if q.Status < 0 || q.Status > 599 {
		return fmt.Errorf("status must be a valid HTTP status code, got %d", q.Status)
	}
	if q.Start != nil && q.End != nil && q.Start.After(*q.End) {
		return fmt.Errorf("start must be before end")
	}
	return nil
}

// ApplyDefaults fills in the default limit for unset pagination.
func (q *Query) ApplyDefaults() {
	if q.Limit == 0 {
		q.Limit = DefaultQueryLimit
	}
}

// Matches reports whether a record passes the query filters. Pagination
// fields are ignored.
func (q *Query) Matches(record *Record) bool {
	if q.Start != nil && record.Time.Before(*q.Start) {
		return false
	}
	if q.End != nil && record.Time.After(*q.End) {
		return false
	}
	if q.Route != "" && record.Route != q.Route {
		return false
	}
	if q.ClientID != "" && record.ClientID != q.ClientID {
		return false
	}
	if q.Status != 0 && record.Status != q.Status {
		return false
	}
	if q.Errored != nil {
		if *q.Errored && record.Error == "" {
			return false
		}
		if !*q.Errored && record.Error != "" {
			return false
		}
	}
	return true
}

// Storage defines the interface for journal storage backends.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists a journal record.
	Store(ctx context.Context, record *Record) error

	// Query retrieves records matching the query filters, newest first.
	// Returns an empty slice if no records match.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the query filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// DeleteBefore removes records with a completion time before cutoff.
	// Returns the number of records deleted. Used for retention.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases any resources held by the backend.
	Close() error
}
