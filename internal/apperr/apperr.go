// Package apperr defines the error taxonomy shared by all layers.
// Errors are created at the point of detection and propagate unchanged
// to the HTTP boundary, where the kind selects the response status.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation marks a missing or invalid field, or a reference
	// to a related entity that does not exist.
	KindValidation
	// KindNotFound marks an absent target entity.
	KindNotFound
	// KindConflict marks a rejected no-op or a uniqueness violation.
	KindConflict
	// KindUnauthenticated marks a missing or invalid credential.
	KindUnauthenticated
	// KindForbidden marks an authenticated caller without entitlement.
	KindForbidden
	// KindStore marks a transaction, lock or connectivity failure.
	// Fatal for the current operation; never retried.
	KindStore
)

// String returns the kind's wire code.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	case KindUnauthenticated:
		return "UNAUTHENTICATED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindStore:
		return "STORE"
	default:
		return "UNKNOWN"
	}
}

// Error is a kind-carrying error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation builds a validation error.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFound builds a not-found error.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Conflict builds a conflict error.
func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// Unauthenticated builds an authentication error.
func Unauthenticated(format string, args ...any) error {
	return &Error{Kind: KindUnauthenticated, Msg: fmt.Sprintf(format, args...)}
}

// Forbidden builds an authorization error.
func Forbidden(format string, args ...any) error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

// Store wraps an underlying store failure.
func Store(err error, format string, args ...any) error {
	return &Error{Kind: KindStore, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the taxonomy kind from an error chain.
// Returns KindUnknown for errors without one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
