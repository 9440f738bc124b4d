package auth

import (
	"net/http"
	"strings"
)

// CookieName is the session token cookie.
const CookieName = "auth-token"

// CookieCodec reads and writes the session token cookie. Cookies are
// HttpOnly with root path scope; expiry is enforced by the signed
// token itself, so writes set no Max-Age.
type CookieCodec struct {
	// Secure marks issued cookies HTTPS-only.
	Secure bool
}

// Read returns the trimmed token cookie value when present.
func (c CookieCodec) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return "", false
	}
	return value, true
}

// Write sets the token cookie on the response. The value is checked
// for cookie validity first so a malformed token cannot end up as a
// silently dropped Set-Cookie header.
func (c CookieCodec) Write(w http.ResponseWriter, token string) error {
	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if err := cookie.Valid(); err != nil {
		return err
	}
	http.SetCookie(w, cookie)
	return nil
}

// Clear expires the token cookie on the response.
func (c CookieCodec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
