package api

import "time"

// LoginRequest is the credential payload for POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse confirms a successful login. The session token itself
// travels only in the auth cookie, never in the body.
type LoginResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`

	// ExpiresAt is the session expiration in RFC 3339 form.
	ExpiresAt string `json:"expires_at"`
}

// LogoffRequest is the payload for POST /api/logoff. The cookie is
// removed only when Logoff is true; anything else is a no-op.
type LogoffRequest struct {
	Logoff bool `json:"logoff"`
}

// LogoffResponse reports whether the session cookie was removed.
type LogoffResponse struct {
	LoggedOff bool `json:"logged_off"`
}

// MeResponse describes the authenticated caller.
type MeResponse struct {
	UserID      int64      `json:"user_id"`
	Username    string     `json:"username"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// HealthResponse is the GET /healthz payload.
type HealthResponse struct {
	Status string `json:"status"`
}
