// Package apperr defines the failure taxonomy shared by the auth gate, the
// media coordinator and the mutation workflows.
//
// Validation, conflict and authentication failures are client facing and carry
// stable, field-qualified messages. Upload failures say whether a retry may
// help. InternalInconsistency is a server fault and is always logged.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind string

const (
	KindValidationFailed      Kind = "validation_failed"
	KindConflict              Kind = "conflict"
	KindAuthenticationFailed  Kind = "authentication_failed"
	KindInvalidCredential     Kind = "invalid_credential"
	KindUnauthorized          Kind = "unauthorized"
	KindForbidden             Kind = "forbidden"
	KindUploadFailed          Kind = "upload_failed"
	KindInternalInconsistency Kind = "internal_inconsistency"
	KindNotFound              Kind = "not_found"
	KindRateLimited           Kind = "rate_limited"
	KindInternal              Kind = "internal"
)

// Error is the concrete failure value. Field is empty when the failure is not
// tied to one input field.
type Error struct {
	Kind      Kind
	Field     string
	Message   string
	Transient bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// ValidationFailed names the first offending field.
func ValidationFailed(field, message string) *Error {
	return &Error{Kind: KindValidationFailed, Field: field, Message: message}
}

// Conflict reports a uniqueness violation on an identity field.
func Conflict(field, message string) *Error {
	return &Error{Kind: KindConflict, Field: field, Message: message}
}

// AuthenticationFailed is a login password mismatch.
func AuthenticationFailed(message string) *Error {
	return &Error{Kind: KindAuthenticationFailed, Message: message}
}

// InvalidCredential covers bad signatures, expired tokens and tokens whose
// subject no longer exists.
func InvalidCredential(message string, err error) *Error {
	return &Error{Kind: KindInvalidCredential, Message: message, Err: err}
}

// Unauthorized means no credential was presented at all.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Forbidden means a valid principal of the wrong kind, or not the owner.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// UploadFailed wraps a remote object store failure.
func UploadFailed(message string, transient bool, err error) *Error {
	return &Error{Kind: KindUploadFailed, Message: message, Transient: transient, Err: err}
}

// InternalInconsistency signals a violated read-back invariant.
func InternalInconsistency(message string, err error) *Error {
	return &Error{Kind: KindInternalInconsistency, Message: message, Err: err}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// RateLimited means the client must slow down.
func RateLimited(message string) *Error {
	return &Error{Kind: KindRateLimited, Message: message, Transient: true}
}

// Internal wraps an unclassified store or runtime fault.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// FieldOf returns the field an error is qualified with, if any.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

// IsTransient reports whether the caller may retry.
func IsTransient(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Transient
}

// IsClientFacing reports whether the message may be shown verbatim.
func IsClientFacing(kind Kind) bool {
	switch kind {
	case KindInternal, KindInternalInconsistency:
		return false
	}
	return true
}

// HTTPStatus maps an error to its response status.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidationFailed:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuthenticationFailed, KindInvalidCredential, KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUploadFailed:
		if IsTransient(err) {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
