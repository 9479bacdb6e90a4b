// Package apperr defines the error taxonomy the booking engine reports.
// Callers branch on Kind, never on message text.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
	KindForbidden  Kind = "forbidden"
	KindConflict   Kind = "conflict"
	KindStorage    Kind = "storage"
	KindDispatch   Kind = "dispatch"
)

type Error struct {
	Kind    Kind
	Message string
	// Field names the offending input field for validation errors.
	Field string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func ValidationField(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Storage(message string, cause error) *Error {
	return &Error{Kind: KindStorage, Message: message, Cause: cause}
}

func Dispatch(message string, cause error) *Error {
	return &Error{Kind: KindDispatch, Message: message, Cause: cause}
}

// KindOf reports the Kind of err, or KindStorage for errors outside the
// taxonomy so unexpected failures are never reported as success.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
