// Package apierr defines the §7 error taxonomy shared by every manager and
// translates it into the uniform HTTP error envelope at the handler boundary,
// in the spirit of the teacher's utils/error.go JSONError helper.
package apierr

import "fmt"

// Kind is the closed set of error kinds from spec.md §7. It is a taxonomy,
// not a type hierarchy: every manager returns a *Error carrying one of these.
type Kind string

const (
	KindBadInput            Kind = "BAD_INPUT"
	KindUnauthorized        Kind = "UNAUTHORIZED"
	KindInvalidCredentials  Kind = "INVALID_CREDENTIALS"
	KindEmailNotVerified    Kind = "EMAIL_NOT_VERIFIED"
	KindAccountLocked       Kind = "ACCOUNT_LOCKED"
	KindAccountDeactivated  Kind = "ACCOUNT_DEACTIVATED"
	KindForbidden           Kind = "FORBIDDEN"
	KindNotFound            Kind = "NOT_FOUND"
	KindConflict            Kind = "CONFLICT"
	KindRateLimited         Kind = "RATE_LIMITED"
	KindInternal            Kind = "INTERNAL"
)

// HTTPStatus maps a Kind to the status code §7 assigns it.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindBadInput:
		return 400
	case KindUnauthorized, KindInvalidCredentials:
		return 401
	case KindEmailNotVerified, KindAccountLocked, KindAccountDeactivated, KindForbidden:
		return 403
	case KindNotFound:
		return 404
	case KindConflict:
		return 409
	case KindRateLimited:
		return 429
	default:
		return 500
	}
}

// Error is the error type every manager boundary returns. Context carries
// kind-specific extra fields (locked_until, retry_after, verification_required, ...).
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string][]string
	Context map[string]interface{}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New constructs a plain *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf constructs a plain *Error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithContext attaches response-envelope context (e.g. locked_until, retry_after).
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = map[string]interface{}{}
	}
	e.Context[key] = value
	return e
}

// BadInput constructs a validation failure carrying per-field errors.
func BadInput(fields map[string][]string) *Error {
	return &Error{Kind: KindBadInput, Message: "validation failed", Fields: fields}
}

// NotFound constructs an opaque not-found error (§4.2: caller ownership
// mismatches are reported identically to missing resources).
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict constructs a §7 Conflict error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Internal wraps an unexpected underlying error without leaking its detail
// to the caller (the message is generic; the underlying error belongs in logs).
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "an unexpected error occurred"}
}

// As extracts an *Error from a generic error, if present.
func As(err error) (*Error, bool) {
	e, ok := err.(*Error)
	return e, ok
}

// KindOf returns the Kind of err if it is an *Error, else KindInternal.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}
