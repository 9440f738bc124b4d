package api

import "fmt"

// ErrorType classifies an API error on the wire.
type ErrorType string

const (
	ErrorTypeInvalidRequest  ErrorType = "invalid_request"
	ErrorTypeNoAuth          ErrorType = "no_auth"
	ErrorTypeLoginFail       ErrorType = "login_fail"
	ErrorTypeTooManyRequests ErrorType = "too_many_requests"
	ErrorTypeServerError     ErrorType = "server_error"
)

// APIError is the structured error carried inside the response
// envelope.
type APIError struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code,omitempty"`
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

// ErrorResponse wraps an APIError as the top-level error response.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// NewInvalidRequestError creates an APIError for malformed request
// parameters.
func NewInvalidRequestError(param, message string) *APIError {
	return &APIError{
		Type:    ErrorTypeInvalidRequest,
		Param:   param,
		Message: message,
	}
}

// NewNoAuthError creates the generic rejection for requests without a
// valid auth context. The message is fixed so a caller learns nothing
// about why resolution failed.
func NewNoAuthError() *APIError {
	return &APIError{
		Type:    ErrorTypeNoAuth,
		Message: "not authenticated",
	}
}

// NewLoginFailError creates the generic rejection for failed login
// attempts. Unknown username, missing hash and wrong password all
// produce this same error.
func NewLoginFailError() *APIError {
	return &APIError{
		Type:    ErrorTypeLoginFail,
		Message: "wrong credentials",
	}
}

// NewTooManyRequestsError creates an APIError for throttled attempts.
func NewTooManyRequestsError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeTooManyRequests,
		Message: message,
	}
}

// NewServerError creates an APIError for internal failures.
func NewServerError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeServerError,
		Message: message,
	}
}
