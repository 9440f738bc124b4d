package api

import "fmt"

// ValidationConfig holds configurable limits for request validation.
type ValidationConfig struct {
	MaxUsernameLen int
	MaxPasswordLen int
}

// DefaultValidationConfig returns a ValidationConfig with sensible
// defaults.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		MaxUsernameLen: 255,
		MaxPasswordLen: 1024,
	}
}

// ValidateLoginRequest checks a LoginRequest for structural validity.
// It returns an *APIError describing the first failure, or nil if the
// request is valid. Whether the credentials actually match is not this
// function's concern.
func ValidateLoginRequest(req *LoginRequest, cfg ValidationConfig) *APIError {
	if req.Username == "" {
		return NewInvalidRequestError("username", "username is required")
	}

	if cfg.MaxUsernameLen > 0 && len(req.Username) > cfg.MaxUsernameLen {
		return NewInvalidRequestError("username",
			fmt.Sprintf("username exceeds maximum of %d bytes", cfg.MaxUsernameLen))
	}

	if req.Password == "" {
		return NewInvalidRequestError("password", "password is required")
	}

	if cfg.MaxPasswordLen > 0 && len(req.Password) > cfg.MaxPasswordLen {
		return NewInvalidRequestError("password",
			fmt.Sprintf("password exceeds maximum of %d bytes", cfg.MaxPasswordLen))
	}

	return nil
}
