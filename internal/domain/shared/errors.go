// Package shared contains common domain types and errors used across all
// domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors for checking with errors.Is().
var (
	// ErrNotFound means a referenced user or entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict means a uniqueness constraint was violated in a way that
	// is not covered by an idempotent-skip rule, e.g. an email that already
	// belongs to a different identity.
	ErrConflict = errors.New("uniqueness conflict")

	// ErrInvalidOrder means an event arrived dated before the last one the
	// streak engine recorded. Backfill is never processed.
	ErrInvalidOrder = errors.New("out-of-order activity")

	// ErrValidation means malformed input: negative durations, empty text,
	// curriculum positions outside configured bounds.
	ErrValidation = errors.New("validation error")

	// ErrAlreadyExists is an internal signal for conditional inserts that
	// found the row already present. Callers usually translate it into an
	// idempotent no-op rather than surfacing it.
	ErrAlreadyExists = errors.New("entity already exists")
)

// DomainError is a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g. "user", "progress", "streak"
	Op      string // operation that failed, e.g. "Sync", "RecordActivity"
	Kind    error  // base error for errors.Is() checking
	Message string // human-readable message
	Err     error  // underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching against both Kind and Err.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message, Err: err}
}

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if the error is a uniqueness conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsInvalidOrder checks if the error is an out-of-order activity error.
func IsInvalidOrder(err error) bool {
	return errors.Is(err, ErrInvalidOrder)
}

// IsAlreadyExists checks if the error is an already-exists signal.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
