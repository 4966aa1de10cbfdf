package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicate        = errors.New("already exists")
	ErrCapacityExceeded = errors.New("flight is full")
	ErrNotBooked        = errors.New("passenger did not book this flight")
	// ErrContention is returned once the retry budget for conflicting writes is spent.
	ErrContention = errors.New("too much contention, try again later")
	// ErrConflict marks a write that lost a race and may be retried as a whole.
	ErrConflict = errors.New("write conflict")
)

// ValidationError rejects one malformed input field. The caller may re-prompt
// for that field only.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// StorageError wraps a connectivity or transaction failure of the data layer.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Storage wraps err as a StorageError unless it already carries a domain
// meaning (not found, duplicate, conflict, context cancellation).
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrConflict) ||
		IsCancellation(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsCancellation reports whether err comes from a cancelled or expired context.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
