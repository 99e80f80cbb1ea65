// Package errors defines the error types used by the application router.
package errors

import (
	"fmt"
)

// Error types
const (
	// ErrInvalidInput is returned when user input cannot be mapped to a menu choice
	ErrInvalidInput = "invalid_input"

	// ErrConfigDrift is returned when a configuration change invalidates an active session
	ErrConfigDrift = "config_drift"

	// ErrRouting is returned when the routing table has no target for a message
	ErrRouting = "routing"

	// ErrSessionStore is returned when there is an error with the session store
	ErrSessionStore = "session_store"

	// ErrCorrelation is returned when an event cannot be correlated to a user
	ErrCorrelation = "correlation"

	// ErrInternal is returned when there is an internal error
	ErrInternal = "internal"
)

// Error represents an error in the application
type Error struct {
	// Type is the error type
	Type string

	// Message is the error message
	Message string

	// Cause is the underlying error
	Cause error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new error
func NewError(errorType, message string, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidInputError creates a new invalid input error
func NewInvalidInputError(message string, cause error) *Error {
	return NewError(ErrInvalidInput, message, cause)
}

// NewConfigDriftError creates a new config drift error
func NewConfigDriftError(message string, cause error) *Error {
	return NewError(ErrConfigDrift, message, cause)
}

// NewRoutingError creates a new routing error
func NewRoutingError(message string, cause error) *Error {
	return NewError(ErrRouting, message, cause)
}

// NewSessionStoreError creates a new session store error
func NewSessionStoreError(message string, cause error) *Error {
	return NewError(ErrSessionStore, message, cause)
}

// NewCorrelationError creates a new correlation error
func NewCorrelationError(message string, cause error) *Error {
	return NewError(ErrCorrelation, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *Error {
	return NewError(ErrInternal, message, cause)
}

// IsInvalidInput checks if the error is an invalid input error
func IsInvalidInput(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrInvalidInput
}

// IsConfigDrift checks if the error is a config drift error
func IsConfigDrift(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrConfigDrift
}

// IsRouting checks if the error is a routing error
func IsRouting(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrRouting
}

// IsSessionStore checks if the error is a session store error
func IsSessionStore(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrSessionStore
}

// IsCorrelation checks if the error is a correlation error
func IsCorrelation(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrCorrelation
}

// IsInternal checks if the error is an internal error
func IsInternal(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrInternal
}
