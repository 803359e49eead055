package api

import "fmt"

// ErrorType represents the category of an API error.
type ErrorType string

const (
	// ErrorTypeInvalidRequest marks malformed request bodies: missing
	// required fields, wrong types. Detected before any state mutation.
	ErrorTypeInvalidRequest ErrorType = "invalid_request"

	// ErrorTypeNotFound marks unknown provider ids on get/update/delete
	// and unresolved provider references on completion.
	ErrorTypeNotFound ErrorType = "not_found"

	// ErrorTypeProviderUnusable marks providers that exist but cannot be
	// dispatched through (missing credential or dialect).
	ErrorTypeProviderUnusable ErrorType = "provider_unusable"

	// ErrorTypeDispatch marks a failed backend call: network error,
	// backend-side rejection, or timeout. The message carries the
	// backend-provided detail when available, never internal state.
	ErrorTypeDispatch ErrorType = "dispatch_error"

	// ErrorTypeServerError marks internal failures.
	ErrorTypeServerError ErrorType = "server_error"
)

// APIError is a structured error with a machine-readable type, an
// optional offending parameter, and a human-readable message.
type APIError struct {
	Type    ErrorType `json:"type"`
	Param   string    `json:"param,omitempty"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param: %s)", e.Type, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorResponse wraps an APIError for JSON serialization as the
// top-level error response.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// NewInvalidRequestError creates an APIError for invalid request parameters.
func NewInvalidRequestError(param, message string) *APIError {
	return &APIError{
		Type:    ErrorTypeInvalidRequest,
		Param:   param,
		Message: message,
	}
}

// NewNotFoundError creates an APIError for resources that cannot be found.
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewProviderNotFoundError creates the not-found error for an unknown
// provider id, naming the offending id.
func NewProviderNotFoundError(id int64) *APIError {
	return &APIError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("provider with id %d not found", id),
	}
}

// NewProviderUnusableError creates an APIError for providers that exist
// but cannot serve a dispatch.
func NewProviderUnusableError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeProviderUnusable,
		Message: message,
	}
}

// NewDispatchError creates an APIError for failed backend calls. Callers
// must not place process environment contents or other internal state in
// the message.
func NewDispatchError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeDispatch,
		Message: message,
	}
}

// NewServerError creates an APIError for internal server errors.
func NewServerError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeServerError,
		Message: message,
	}
}
