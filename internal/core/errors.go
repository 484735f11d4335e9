// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Errorf wraps base with a formatted cause.
func Errorf(base *Error, format string, args ...any) *Error {
	return WrapError(base, fmt.Errorf(format, args...))
}

// Predefined errors
var (
	// Series errors
	ErrInvalidSeries  = &Error{Code: "INVALID_SERIES", Message: "invalid series"}
	ErrLengthMismatch = &Error{Code: "LENGTH_MISMATCH", Message: "series lengths differ"}
	ErrNonMonotonic   = &Error{Code: "NON_MONOTONIC", Message: "timestamps not strictly increasing"}
	ErrIndexMismatch  = &Error{Code: "INDEX_MISMATCH", Message: "series indices differ"}
	ErrInvalidPrice   = &Error{Code: "INVALID_PRICE", Message: "price must be positive"}
	ErrInvalidWindow  = &Error{Code: "INVALID_WINDOW", Message: "window size must be positive"}

	// Data errors
	ErrInvalidTimeframe = &Error{Code: "INVALID_TIMEFRAME", Message: "unsupported timeframe"}
	ErrInvalidSymbol    = &Error{Code: "INVALID_SYMBOL", Message: "invalid symbol"}
	ErrNoData           = &Error{Code: "NO_DATA", Message: "no data available"}

	// Collector errors
	ErrCollectorFailed = &Error{Code: "COLLECTOR_FAILED", Message: "collector failed"}

	// Storage errors
	ErrStorageFailed = &Error{Code: "STORAGE_FAILED", Message: "storage operation failed"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
