package upstream

import (
	"fmt"
	"time"
)

// ValidationError indicates a request was rejected before any network
// activity, typically because a media reference failed syntactic checks.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %s: %s", e.Field, e.Message)
}

// UpstreamError indicates the provider answered but the answer was not
// usable. Message carries the provider's own wording whenever the
// response body contained one.
type UpstreamError struct {
	Operation  string
	StatusCode int
	Message    string
	Cause      error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream error during %s (status %d): %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream error during %s: %s", e.Operation, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// NotFoundError indicates the provider resolved the request but reported
// the media as missing or unavailable. It is distinct from UpstreamError
// so callers can map it to a client-side status instead of a gateway
// failure.
type NotFoundError struct {
	MediaID string
	Reason  string
}

func (e *NotFoundError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("media %s unavailable: %s", e.MediaID, e.Reason)
	}
	return fmt.Sprintf("media %s not found", e.MediaID)
}

// TimeoutError indicates a provider call exceeded its deadline.
type TimeoutError struct {
	Operation string
	Timeout   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("upstream %s timed out after %v", e.Operation, e.Timeout)
}

// ParseError indicates the provider's response could not be decoded.
// RawResponse holds a truncated copy of the body for diagnostics.
type ParseError struct {
	Operation   string
	RawResponse string
	Cause       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse upstream %s response: %v", e.Operation, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
