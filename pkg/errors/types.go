package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCategory represents different types of errors that can occur
type ErrorCategory string

const (
	ErrorNetwork    ErrorCategory = "network"
	ErrorAuth       ErrorCategory = "auth"
	ErrorValidation ErrorCategory = "validation"
	ErrorConfig     ErrorCategory = "config"
	ErrorAPI        ErrorCategory = "api"
	ErrorTimeout    ErrorCategory = "timeout"
	ErrorPermission ErrorCategory = "permission"
	ErrorInternal   ErrorCategory = "internal"
)

// FleetError is a structured error carrying the category and code that the
// retry and aggregation layers branch on. Message holds the human-readable
// text; for permission denials it is the server's message verbatim.
type FleetError struct {
	Category    ErrorCategory          `json:"category"`
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	Cause       error                  `json:"cause,omitempty"`
	Recoverable bool                   `json:"recoverable"`
	Timestamp   time.Time              `json:"timestamp"`
	Context     map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *FleetError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *FleetError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison for error chains
func (e *FleetError) Is(target error) bool {
	if t, ok := target.(*FleetError); ok {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// WithContext adds contextual information to the error
func (e *FleetError) WithContext(key string, value interface{}) *FleetError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails adds additional details to the error
func (e *FleetError) WithDetails(details string) *FleetError {
	e.Details = details
	return e
}

// WithCause sets the underlying cause of this error
func (e *FleetError) WithCause(cause error) *FleetError {
	e.Cause = cause
	return e
}

// AsRecoverable marks the error as recoverable
func (e *FleetError) AsRecoverable() *FleetError {
	e.Recoverable = true
	return e
}

// IsCategory checks if the error belongs to a specific category
func (e *FleetError) IsCategory(category ErrorCategory) bool {
	return e.Category == category
}

// IsCode checks if the error has a specific code
func (e *FleetError) IsCode(code string) bool {
	return e.Code == code
}

// New creates a new FleetError with the specified parameters
func New(category ErrorCategory, code, message string) *FleetError {
	return &FleetError{
		Category:  category,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap creates a new FleetError that wraps an existing error
func Wrap(err error, category ErrorCategory, code, message string) *FleetError {
	return &FleetError{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     err,
		Timestamp: time.Now(),
	}
}

// Unauthorized creates the typed auth error for an instance that rejected
// the fleet credentials. The instance URL travels in the message so callers
// aggregating across instances can report which one refused.
func Unauthorized(instanceURL string) *FleetError {
	return New(ErrorAuth, "UNAUTHORIZED", fmt.Sprintf("Unauthorized for instance %s", instanceURL)).
		WithContext("instance", instanceURL)
}

// PermissionDenied creates the hard-failure error for a permission-denial
// response body. Message is the server's message, unmodified.
func PermissionDenied(message string) *FleetError {
	return New(ErrorPermission, "PERMISSION_DENIED", message)
}

// ValidationError creates a validation-related error
func ValidationError(code, message string) *FleetError {
	return New(ErrorValidation, code, message)
}

// ConfigError creates a configuration-related error
func ConfigError(code, message string) *FleetError {
	return New(ErrorConfig, code, message)
}

// TimeoutError creates a timeout-related error
func TimeoutError(code, message string) *FleetError {
	return New(ErrorTimeout, code, message).AsRecoverable()
}

// AsFleetError extracts a *FleetError from an error chain, or wraps the
// error as internal when it carries no structured form.
func AsFleetError(err error) *FleetError {
	var fe *FleetError
	if errors.As(err, &fe) {
		return fe
	}
	return Wrap(err, ErrorInternal, "UNSTRUCTURED", err.Error())
}

// IsAuth reports whether the error chain carries an auth-category error
func IsAuth(err error) bool {
	var fe *FleetError
	return errors.As(err, &fe) && fe.IsCategory(ErrorAuth)
}

// IsTransport reports whether the error chain carries a network or timeout
// category error
func IsTransport(err error) bool {
	var fe *FleetError
	if !errors.As(err, &fe) {
		return false
	}
	return fe.IsCategory(ErrorNetwork) || fe.IsCategory(ErrorTimeout)
}
