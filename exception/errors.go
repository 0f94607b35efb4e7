// Package exception turns returned or panicked errors into envelopes.
package exception

import (
	"net/http"
)

// APIError is an error that renders as an envelope with its own status.
// A zero Status means 500.
type APIError struct {
	Message string
	Status  int
	Errors  any
	Inner   error
}

// New creates an APIError with status 500.
func New(message string) *APIError {
	return &APIError{Message: message, Status: http.StatusInternalServerError}
}

// Wrap creates an APIError around err. The inner error is never rendered.
func Wrap(err error, message string) *APIError {
	return New(message).WithInner(err)
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Inner != nil {
		return e.Inner.Error()
	}
	return http.StatusText(e.StatusCode())
}

// Unwrap returns the inner error
func (e *APIError) Unwrap() error {
	return e.Inner
}

// StatusCode returns the status the error renders with.
func (e *APIError) StatusCode() int {
	if e.Status <= 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// WithStatus sets the HTTP status code
func (e *APIError) WithStatus(status int) *APIError {
	e.Status = status
	return e
}

// WithErrors attaches a payload rendered under "errors" when non-empty.
func (e *APIError) WithErrors(errors any) *APIError {
	e.Errors = errors
	return e
}

// WithInner sets the inner error
func (e *APIError) WithInner(err error) *APIError {
	e.Inner = err
	return e
}

func NewBadRequest(message string) *APIError {
	return New(message).WithStatus(http.StatusBadRequest)
}

func NewUnauthorized(message string) *APIError {
	return New(message).WithStatus(http.StatusUnauthorized)
}

func NewForbidden(message string) *APIError {
	return New(message).WithStatus(http.StatusForbidden)
}

func NewNotFound(message string) *APIError {
	return New(message).WithStatus(http.StatusNotFound)
}

func NewConflict(message string) *APIError {
	return New(message).WithStatus(http.StatusConflict)
}

func NewTooManyRequests(message string) *APIError {
	return New(message).WithStatus(http.StatusTooManyRequests)
}

func NewServiceUnavailable(message string) *APIError {
	return New(message).WithStatus(http.StatusServiceUnavailable)
}

// ValidationError renders as a validation envelope, 422 unless Status is set.
// An empty Message renders the localized validation message.
type ValidationError struct {
	Errors  any
	Message string
	Status  int
}

// NewValidation creates a ValidationError carrying errors.
func NewValidation(errors any) *ValidationError {
	return &ValidationError{Errors: errors, Status: http.StatusUnprocessableEntity}
}

// WithMessage overrides the localized default message.
func (e *ValidationError) WithMessage(message string) *ValidationError {
	e.Message = message
	return e
}

// WithStatus sets the HTTP status code
func (e *ValidationError) WithStatus(status int) *ValidationError {
	e.Status = status
	return e
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// StatusCode returns the status the error renders with.
func (e *ValidationError) StatusCode() int {
	if e.Status <= 0 {
		return http.StatusUnprocessableEntity
	}
	return e.Status
}
