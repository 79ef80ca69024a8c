package repository

import (
	"errors"
	"fmt"
)

// Kind classifies a repository failure. Every operation that fails returns an
// *Error carrying exactly one kind, so callers branch on taxonomy instead of
// parsing driver messages.
type Kind string

const (
	// KindValidation marks malformed or disallowed input, e.g. an unknown
	// file type or a deliverable with no content.
	KindValidation Kind = "validation"
	// KindConflict marks a uniqueness violation, e.g. a duplicate username.
	KindConflict Kind = "conflict"
	// KindNotFound marks an operation targeting a missing id or username.
	KindNotFound Kind = "not_found"
	// KindUnavailable marks an unreachable engine or unwritable store file.
	KindUnavailable Kind = "storage_unavailable"
	// KindIntegrity marks a referenced id that does not exist.
	KindIntegrity Kind = "integrity"
)

// Error is the structured failure value returned by all repository operations.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error { return e.Err }

// Validationf builds a validation error.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflictf builds a conflict error.
func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a not-found error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Integrityf builds a referential-integrity error.
func Integrityf(format string, args ...any) *Error {
	return &Error{Kind: KindIntegrity, Message: fmt.Sprintf(format, args...)}
}

// Unavailable wraps a store-level failure, keeping the cause for inspection.
func Unavailable(message string, err error) *Error {
	return &Error{Kind: KindUnavailable, Message: message, Err: err}
}

// KindOf returns the kind carried by err, or the empty kind for errors that
// did not originate in a repository.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// IsConflict reports whether err is a uniqueness violation.
func IsConflict(err error) bool { return IsKind(err, KindConflict) }

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool { return IsKind(err, KindValidation) }

// IsIntegrity reports whether err is a referential-integrity failure.
func IsIntegrity(err error) bool { return IsKind(err, KindIntegrity) }

// IsUnavailable reports whether err is a store-availability failure.
func IsUnavailable(err error) bool { return IsKind(err, KindUnavailable) }
