package util

import (
	"errors"
	"fmt"
)

// Common error types for dockyard
var (
	// ErrNotFound indicates a referenced connection does not exist
	ErrNotFound = errors.New("connection not found")

	// ErrDuplicateName indicates a connection name is already taken
	ErrDuplicateName = errors.New("connection name already in use")

	// ErrInvalidConfig indicates a configuration error
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates a backend connection failure
	ErrConnectionFailed = errors.New("connection failed")

	// ErrTimeout indicates an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCancelled indicates an operation was cancelled
	ErrCancelled = errors.New("operation cancelled")

	// ErrKindMismatch indicates an attempt to change a connection's
	// backend kind after creation
	ErrKindMismatch = errors.New("connection kind is immutable")

	// ErrCertificateNotFound indicates a referenced certificate
	// identifier does not resolve in the certificate store
	ErrCertificateNotFound = errors.New("certificate not found")
)

// ValidationError represents a rejected credential or field submission.
// The record is never persisted when validation fails.
type ValidationError struct {
	// Field names the offending field, empty when the whole credential
	// blob is at fault
	Field string

	// Message is the stable, user-readable rejection reason
	Message string

	// Cause carries backend-library detail for logs; it is wrapped, not
	// surfaced in Message
	Cause error
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	if v.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", v.Field, v.Message)
	}
	return fmt.Sprintf("validation failed: %s", v.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility
func (v *ValidationError) Unwrap() error {
	return v.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// WrapValidationError creates a validation error that keeps the
// backend-library cause available via errors.Unwrap
func WrapValidationError(field, message string, cause error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Cause: cause}
}

// IsValidation checks if an error is a validation failure
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// ConnectionError wraps an error with connection context
type ConnectionError struct {
	ConnectionName string
	Err            error
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection %q: %v", e.ConnectionName, e.Err)
}

// Unwrap returns the wrapped error for errors.Is/As compatibility
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// WrapConnectionError wraps an error with connection context
func WrapConnectionError(name string, err error) error {
	if err == nil {
		return nil
	}
	return &ConnectionError{ConnectionName: name, Err: err}
}

// FriendlyError converts technical errors to user-friendly messages
func FriendlyError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case IsValidation(err):
		return err.Error()
	case IsNotFound(err):
		return "Connection not found. Please check the connection name or identifier."
	case errors.Is(err, ErrDuplicateName):
		return "A connection with that name already exists. Connection names are unique across all backend kinds."
	case IsTimeout(err):
		return "Operation timed out. Please try again or increase the timeout with --timeout."
	case errors.Is(err, ErrCancelled):
		return "Operation was cancelled."
	case errors.Is(err, ErrInvalidConfig):
		return "Invalid configuration. Please check your config file and command-line flags."
	case errors.Is(err, ErrKindMismatch):
		return "A connection's backend kind cannot be changed after creation. Delete and recreate it instead."
	default:
		return err.Error()
	}
}
