package solver

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrNoCapacity is returned when no group in the request has a
	// positive capacity. Surfaced distinctly so callers can show a
	// targeted message.
	ErrNoCapacity = errors.New("no group capacity available")

	// ErrInvariantViolation marks an internal allocator bug, such as
	// assigning past capacity. It aborts the request rather than
	// producing an invalid solution.
	ErrInvariantViolation = errors.New("allocator invariant violation")
)

// ValidationError describes a malformed solve request. It is surfaced to
// the caller as a rejected request and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
