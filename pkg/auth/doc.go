// Package auth resolves the per-request authentication context from a
// session-token cookie.
//
// Resolution is a fixed pipeline: read the cookie, parse the token,
// look up the owning user, validate the signature and expiration
// against the user's token salt, rotate the cookie, and materialize a
// Context carrying the user id. Every failure is classified by a
// FailReason; the outcome is stashed in the request context and never
// aborts the surrounding request. RequireContext gates the routes that
// need an authenticated caller and rejects with one generic
// classification, whatever the recorded reason was.
package auth
