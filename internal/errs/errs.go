// Package errs defines the application error taxonomy. Handlers map kinds to
// HTTP statuses; services attach the user-facing message.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind int

const (
	// KindUnexpected is any uncaught failure; surfaced generically.
	KindUnexpected Kind = iota
	// KindInvalidInput is a client-correctable validation failure; the field
	// message is returned verbatim.
	KindInvalidInput
	// KindUnauthenticated means no valid session.
	KindUnauthenticated
	// KindForbidden means authenticated but not the owner.
	KindForbidden
	// KindNotFound means the referenced entity is absent.
	KindNotFound
	// KindUpstream is an identity/data collaborator failure; logged with full
	// context, surfaced only as a generic message.
	KindUpstream
)

// GenericRetryMessage is what callers see for upstream and unexpected failures.
const GenericRetryMessage = "Something went wrong. Please try again later."

// Error is an application error with a kind and a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error // underlying cause, never shown to callers
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an application error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an application error with an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// InvalidInput creates a validation error with a verbatim field message.
func InvalidInput(message string) *Error {
	return New(KindInvalidInput, message)
}

// Unauthenticated creates a no-session error.
func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, message)
}

// Forbidden creates an ownership error.
func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

// NotFound creates a missing-entity error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Upstream wraps a collaborator failure with a generic caller message.
func Upstream(message string, err error) *Error {
	return Wrap(KindUpstream, message, err)
}

// KindOf returns the kind of err, or KindUnexpected when err is not an
// application error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// MessageOf returns the user-facing message for err. Upstream and unexpected
// errors yield the generic retry message so backend details never leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindUpstream, KindUnexpected:
			if e.Message != "" {
				return e.Message
			}
			return GenericRetryMessage
		default:
			return e.Message
		}
	}
	return GenericRetryMessage
}
