package journal

import (
	"errors"
	"fmt"
	"time"
)

// ErrBufferFull is returned when a record is dropped because the async
// write buffer is at capacity.
var ErrBufferFull = errors.New("journal buffer full")

// ErrClosed is returned when a record arrives after Close.
var ErrClosed = errors.New("journal recorder closed")

// StorageError represents an error from a storage backend.
type StorageError struct {
	Backend   string // Storage backend type ("sqlite", "memory")
	Operation string // Operation that failed ("store", "query", "delete", etc.)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("journal storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

// RecorderError represents an error during record enqueue or write.
type RecorderError struct {
	RecordID string // Journal record ID, may be empty
	Cause    error  // Underlying error
}

// Error implements the error interface.
func (e *RecorderError) Error() string {
	if e.RecordID != "" {
		return fmt.Sprintf("journal recorder error [record_id=%s]: %v", e.RecordID, e.Cause)
	}
	return fmt.Sprintf("journal recorder error: %v", e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *RecorderError) Unwrap() error {
	return e.Cause
}

// NewRecorderError creates a new RecorderError.
func NewRecorderError(recordID string, cause error) *RecorderError {
	return &RecorderError{
		RecordID: recordID,
		Cause:    cause,
	}
}

// RetentionError represents an error during retention pruning.
type RetentionError struct {
	MaxAge time.Duration // Configured retention period
	Cause  error         // Underlying error
}

// Error implements the error interface.
func (e *RetentionError) Error() string {
	return fmt.Sprintf("journal retention error [max_age=%s]: %v", e.MaxAge, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *RetentionError) Unwrap() error {
	return e.Cause
}

// NewRetentionError creates a new RetentionError.
func NewRetentionError(maxAge time.Duration, cause error) *RetentionError {
	return &RetentionError{
		MaxAge: maxAge,
		Cause:  cause,
	}
}
