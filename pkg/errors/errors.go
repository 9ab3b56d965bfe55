// Package errors provides structured error types for sersmask.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the builder, CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-facing messages that name the offending parameter
//
// # Error Codes
//
// The three layout failure kinds are:
//   - CONFIG_CONFLICT: a cross-section re-registered with different layers
//   - INVALID_GEOMETRY: a negative (or otherwise unusable) dimension
//   - PLACEMENT_ORDER: a stack marker with nothing to stack on
//
// All three are fatal and reported synchronously by the builder. Clamping a
// metal length to the active region is not an error.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidGeometry, "must be non-negative, got %g", gap).WithField("gap")
//	if errors.Is(err, errors.ErrCodeInvalidGeometry) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidConfig, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Layout errors
	ErrCodeConfigConflict  Code = "CONFIG_CONFLICT"
	ErrCodeInvalidGeometry Code = "INVALID_GEOMETRY"
	ErrCodePlacementOrder  Code = "PLACEMENT_ORDER"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Lookup errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code, the parameter it concerns and an optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Field   string // Offending parameter, e.g. "taper.length" (optional)
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithField records the parameter the error concerns and returns e.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// Only the outermost *Error in the chain is consulted, so a wrapped
// INVALID_GEOMETRY inside an INVALID_CONFIG reports INVALID_CONFIG.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsLayout reports whether err is one of the three fatal layout errors.
func IsLayout(err error) bool {
	switch GetCode(err) {
	case ErrCodeConfigConflict, ErrCodeInvalidGeometry, ErrCodePlacementOrder:
		return true
	}
	return false
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message (prefixed by the field) without the code.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Field != "" {
			return e.Field + ": " + e.Message
		}
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidGeometry, ErrCodeInvalidInput, ErrCodeInvalidConfig,
		ErrCodeInvalidFormat, ErrCodeInvalidPath, ErrCodePlacementOrder:
		return http.StatusBadRequest
	case ErrCodeConfigConflict:
		return http.StatusConflict
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}
