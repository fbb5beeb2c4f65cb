// Package errors carries the typed application errors of the pricing
// engine: validation failures name the offending field and row so API
// responses and log lines can point at the exact input.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of an error
type ErrorType uint

const (
	// ErrorTypeUnknown represents an unknown error
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeValidation represents rejected input
	ErrorTypeValidation
	// ErrorTypeConvergence represents an iterative solve that exhausted its
	// iteration budget
	ErrorTypeConvergence
	// ErrorTypeUnsupported represents an unknown model or mode
	ErrorTypeUnsupported
	// ErrorTypeTimeout represents a timeout error
	ErrorTypeTimeout
	// ErrorTypeInternal represents an internal error
	ErrorTypeInternal
	// ErrorTypeResourceExhausted represents a resource exhausted error
	ErrorTypeResourceExhausted
)

// AppError represents an application error. Field and Row are populated for
// validation errors; Row is -1 when the error is not row-specific.
type AppError struct {
	Type    ErrorType
	Message string
	Field   string
	Row     int
	Err     error
}

// Error returns the error message
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new error with the given message
func New(message string) error {
	return &AppError{
		Type:    ErrorTypeUnknown,
		Message: message,
		Row:     -1,
	}
}

// Newf creates a new error with the given format and arguments
func Newf(format string, args ...interface{}) error {
	return New(fmt.Sprintf(format, args...))
}

// Wrap wraps an error with a message, preserving the inner type when it is
// an AppError
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	errType := ErrorTypeUnknown
	var appErr *AppError
	if As(err, &appErr) {
		errType = appErr.Type
	}
	return &AppError{
		Type:    errType,
		Message: message,
		Row:     -1,
		Err:     err,
	}
}

// Wrapf wraps an error with a formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Validation creates a batch-level validation error
func Validation(message string) error {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Row:     -1,
	}
}

// Validationf creates a validation error pointing at a field of a row
func Validationf(field string, row int, format string, args ...interface{}) error {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: fmt.Sprintf(format, args...),
		Field:   field,
		Row:     row,
	}
}

// Convergence creates an error for an exhausted iterative solve
func Convergence(message string) error {
	return &AppError{
		Type:    ErrorTypeConvergence,
		Message: message,
		Row:     -1,
	}
}

// Unsupported creates an error for an unknown model or mode
func Unsupported(message string) error {
	return &AppError{
		Type:    ErrorTypeUnsupported,
		Message: message,
		Row:     -1,
	}
}

// Internal creates a new Internal error
func Internal(message string) error {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Row:     -1,
	}
}

// ResourceExhausted creates a new ResourceExhausted error
func ResourceExhausted(message string) error {
	return &AppError{
		Type:    ErrorTypeResourceExhausted,
		Message: message,
		Row:     -1,
	}
}

// TypeOf returns the ErrorType of err, ErrorTypeUnknown for plain errors
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	return TypeOf(err) == ErrorTypeValidation
}

// Is reports whether err or any error in its chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
