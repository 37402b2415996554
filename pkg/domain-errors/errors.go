// Package derrors defines the typed domain errors shared across fieldgate
// services. Errors carry a stable machine-readable code so transport layers
// can map them to HTTP responses without string matching.
package derrors

import "fmt"

// Code identifies an error category. Codes are part of the API contract
// surfaced in JSON error envelopes; do not rename existing values.
type Code string

const (
	CodeBadRequest           Code = "bad_request"
	CodeInvalidInput         Code = "invalid_input"
	CodeInvariantViolation   Code = "invariant_violation"
	CodeUnauthorized         Code = "unauthorized"
	CodeTenantContextMissing Code = "tenant_context_missing"
	CodeRateLimited          Code = "rate_limit_exceeded"
	CodeNotFound             Code = "not_found"
	CodeInternal             Code = "internal_error"
)

// Error is a domain error with a category code and a human-readable message.
type Error struct {
	Code    Code
	Message string
	wrapped error
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches an underlying cause while keeping the domain code visible.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, wrapped: err}
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.wrapped
}

// CodeOf extracts the domain code from err, or CodeInternal when err is not
// a domain error. Nil returns the empty code.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	if de, ok := err.(*Error); ok {
		return de.Code
	}
	return CodeInternal
}
