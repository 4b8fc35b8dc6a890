package travelkit

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the travel tools can report.
type ErrorKind string

const (
	KindInvalidFormat      ErrorKind = "invalid_format"
	KindPastDate           ErrorKind = "past_date"
	KindNoResultsFound     ErrorKind = "no_results_found"
	KindAccessDenied       ErrorKind = "access_denied"
	KindTransportFailure   ErrorKind = "transport_failure"
	KindValidationFailure  ErrorKind = "validation_failure"
	KindMalformedBookingID ErrorKind = "malformed_booking_id"
	KindProviderRejected   ErrorKind = "provider_rejected"
	KindSystemError        ErrorKind = "system_error"
	KindConfiguration      ErrorKind = "configuration_error"
)

// Sentinel errors, one per kind. An *Error matches the sentinel of its kind with errors.Is.
var (
	ErrInvalidFormat      = errors.New("invalid date format")
	ErrPastDate           = errors.New("date is in the past")
	ErrNoResultsFound     = errors.New("no results found")
	ErrAccessDenied       = errors.New("access denied")
	ErrTransportFailure   = errors.New("transport failure")
	ErrValidationFailure  = errors.New("validation failure")
	ErrMalformedBookingID = errors.New("malformed booking id")
	ErrProviderRejected   = errors.New("provider rejected request")
	ErrSystemError        = errors.New("system error")
	ErrConfiguration      = errors.New("configuration error")
)

var kindSentinels = map[ErrorKind]error{
	KindInvalidFormat:      ErrInvalidFormat,
	KindPastDate:           ErrPastDate,
	KindNoResultsFound:     ErrNoResultsFound,
	KindAccessDenied:       ErrAccessDenied,
	KindTransportFailure:   ErrTransportFailure,
	KindValidationFailure:  ErrValidationFailure,
	KindMalformedBookingID: ErrMalformedBookingID,
	KindProviderRejected:   ErrProviderRejected,
	KindSystemError:        ErrSystemError,
	KindConfiguration:      ErrConfiguration,
}

// Error is the typed failure value returned across every tool boundary.
type Error struct {
	Kind    ErrorKind
	Message string

	// StatusCode is the provider HTTP status, 0 when the failure happened before a response.
	StatusCode int

	// Field names the offending input for validation failures.
	Field string

	// Details carries the provider payload for rejected requests.
	Details map[string]any

	cause error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status: %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NewError creates an *Error of the given kind.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithCause records the underlying error.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// WithStatus records the provider status code.
func (e *Error) WithStatus(code int) *Error {
	e.StatusCode = code
	return e
}

// WithDetails records the provider payload.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// ValidationError reports a missing or invalid input field.
func ValidationError(field, format string, args ...any) *Error {
	e := NewError(KindValidationFailure, format, args...)
	e.Field = field
	return e
}

// SystemError wraps an unanticipated failure, keeping its message.
func SystemError(err error) *Error {
	return NewError(KindSystemError, "System error: %v", err).WithCause(err)
}

// AsError returns err as an *Error. Errors that are not already typed become SystemError.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return te
	}
	return SystemError(err)
}

// KindOf returns the kind of err, or an empty kind when err is nil.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	return AsError(err).Kind
}
