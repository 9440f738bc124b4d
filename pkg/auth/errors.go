package auth

import "errors"

// ErrTooManyRequests is returned by attempt limiters when a caller
// exceeded the configured login budget.
var ErrTooManyRequests = errors.New("too many attempts")

// FailReason classifies why a resolution cycle produced no Context.
// The reason is recorded for logs and metrics; callers outside the
// service only ever see a generic rejection.
type FailReason int

const (
	// TokenNotInCookie means the request carried no session cookie at
	// all: an anonymous caller, not a tamper signal. This is the only
	// failure that leaves an existing cookie untouched.
	TokenNotInCookie FailReason = iota

	// TokenWrongFormat means the cookie value failed to parse as a
	// three-segment token.
	TokenWrongFormat

	// UserNotFound means the token's identifier matched no stored user.
	UserNotFound

	// StoreError means the user lookup itself failed at the store layer.
	StoreError

	// ValidateFailed means signature or expiration validation failed.
	ValidateFailed

	// CookieSetFailed means validation succeeded but writing the
	// rotated cookie back failed: authenticated, yet the session could
	// not be refreshed.
	CookieSetFailed

	// ContextCreateFailed means the resolved user id was unusable.
	ContextCreateFailed

	// ContextMissing means no resolution result was present in the
	// request; the gate ran without the resolver in front of it.
	ContextMissing
)

// String returns the stable label used in logs and metrics.
func (r FailReason) String() string {
	switch r {
	case TokenNotInCookie:
		return "token_not_in_cookie"
	case TokenWrongFormat:
		return "token_wrong_format"
	case UserNotFound:
		return "user_not_found"
	case StoreError:
		return "store_error"
	case ValidateFailed:
		return "validate_failed"
	case CookieSetFailed:
		return "cookie_set_failed"
	case ContextCreateFailed:
		return "context_create_failed"
	case ContextMissing:
		return "context_missing"
	}
	return "unknown"
}
