package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies application errors by recovery strategy
type ErrorType string

const (
	// ErrorTypeTransientWrite marks a rejected create/update/delete against the
	// document store. Surfaced to the user, never retried automatically.
	ErrorTypeTransientWrite ErrorType = "TRANSIENT_WRITE_FAILURE"
	// ErrorTypeSubscription marks a live subscription that errored or
	// disconnected. Distinct from an empty snapshot, which is valid data.
	ErrorTypeSubscription ErrorType = "SUBSCRIPTION_FAILURE"
	// ErrorTypeContract marks a programming contract violation at an API
	// boundary, such as an out-of-range menu edit.
	ErrorTypeContract ErrorType = "CONTRACT_VIOLATION"

	ErrorTypeValidation     ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound       ErrorType = "NOT_FOUND_ERROR"
	ErrorTypeAuthentication ErrorType = "AUTHENTICATION_ERROR"
	ErrorTypeAuthorization  ErrorType = "AUTHORIZATION_ERROR"
	ErrorTypeInternal       ErrorType = "INTERNAL_ERROR"
)

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidToken = errors.New("invalid token")
)

// Feedback-domain errors
var (
	ErrDocumentNotFound     = errors.New("document not found")
	ErrRatingNotFound       = errors.New("rating not found")
	ErrSuggestionNotFound   = errors.New("suggestion not found")
	ErrNotSuggestionOwner   = errors.New("suggestion belongs to another user")
	ErrInvalidMealType      = errors.New("invalid meal type")
	ErrInvalidRatingValue   = errors.New("rating value must be between 1 and 5")
	ErrInvalidCategory      = errors.New("invalid suggestion category")
	ErrInvalidStatus        = errors.New("invalid suggestion status")
	ErrSubscriptionClosed   = errors.New("subscription closed")
	ErrNotEditing           = errors.New("menu session is not in editing state")
	ErrAlreadyEditing       = errors.New("menu session is already in editing state")
	ErrMenuItemOutOfRange   = errors.New("menu item index out of range")
	ErrMenuFieldNotEditable = errors.New("only breakfast, lunch and dinner are editable")
)

// AppError represents a custom application error with context
type AppError struct {
	Type      ErrorType              `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	HTTPCode  int                    `json:"-"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Cause     error                  `json:"-"`
	Component string                 `json:"component,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(errorType ErrorType, message string, httpCode int) *AppError {
	return &AppError{
		Type:     errorType,
		Message:  message,
		HTTPCode: httpCode,
		Details:  make(map[string]interface{}),
	}
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithCause adds the underlying cause
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithComponent adds the component name
func (e *AppError) WithComponent(component string) *AppError {
	e.Component = component
	return e
}

// WithDetail adds a detail field
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Common error constructors

// NewTransientWriteError wraps a store write rejection. The operation is
// abandoned; the user must re-invoke it.
func NewTransientWriteError(message string, cause error) *AppError {
	return NewAppError(ErrorTypeTransientWrite, message, http.StatusBadGateway).WithCause(cause)
}

// NewSubscriptionError wraps a live subscription failure
func NewSubscriptionError(message string, cause error) *AppError {
	return NewAppError(ErrorTypeSubscription, message, http.StatusServiceUnavailable).WithCause(cause)
}

// NewContractError creates a contract violation error
func NewContractError(message string) *AppError {
	return NewAppError(ErrorTypeContract, message, http.StatusBadRequest)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrorTypeValidation, message, http.StatusBadRequest)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrorTypeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// NewAuthenticationError creates an authentication error
func NewAuthenticationError(message string) *AppError {
	return NewAppError(ErrorTypeAuthentication, message, http.StatusUnauthorized)
}

// NewAuthorizationError creates an authorization error
func NewAuthorizationError(message string) *AppError {
	return NewAppError(ErrorTypeAuthorization, message, http.StatusForbidden)
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *AppError {
	return NewAppError(ErrorTypeInternal, message, http.StatusInternalServerError)
}

// Helper functions for common error scenarios

// WrapError wraps an error with context
func WrapError(err error, message string) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return NewInternalError(message).WithCause(err)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == ErrorTypeNotFound
	}
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrDocumentNotFound) ||
		errors.Is(err, ErrRatingNotFound) || errors.Is(err, ErrSuggestionNotFound)
}

// IsTransientWrite checks if an error is a transient write failure
func IsTransientWrite(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == ErrorTypeTransientWrite
	}
	return false
}

// IsSubscription checks if an error is a subscription failure
func IsSubscription(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == ErrorTypeSubscription
	}
	return errors.Is(err, ErrSubscriptionClosed)
}

// IsContract checks if an error is a contract violation
func IsContract(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == ErrorTypeContract
	}
	return errors.Is(err, ErrMenuItemOutOfRange) || errors.Is(err, ErrMenuFieldNotEditable) ||
		errors.Is(err, ErrNotEditing) || errors.Is(err, ErrAlreadyEditing)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == ErrorTypeValidation
	}
	return errors.Is(err, ErrInvalidMealType) || errors.Is(err, ErrInvalidRatingValue) ||
		errors.Is(err, ErrInvalidCategory) || errors.Is(err, ErrInvalidStatus)
}

// IsAuthorization checks if an error is an authorization error
func IsAuthorization(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == ErrorTypeAuthorization
	}
	return errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotSuggestionOwner)
}
