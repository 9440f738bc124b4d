package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/geleit/geleit/pkg/storage"
	"github.com/geleit/geleit/pkg/token"
)

// UserLookup is the slice of the user store the resolver needs.
type UserLookup interface {
	ByUsername(ctx context.Context, username string) (*storage.Credential, error)
}

// Resolver turns a request's session cookie into an authenticated
// Context or a classified failure.
type Resolver struct {
	users   UserLookup
	signer  *token.Signer
	cookies CookieCodec
}

// NewResolver creates a Resolver against the given user store and
// token signer.
func NewResolver(users UserLookup, signer *token.Signer, cookies CookieCodec) *Resolver {
	return &Resolver{users: users, signer: signer, cookies: cookies}
}

// Resolve runs one resolution cycle. Cookie rotation and removal are
// written to w; the request itself is never rejected here. On any
// failure except TokenNotInCookie the stale cookie is removed, so a
// broken token cannot be replayed.
func (rv *Resolver) Resolve(w http.ResponseWriter, r *http.Request) Result {
	raw, ok := rv.cookies.Read(r)
	if !ok {
		return Result{Reason: TokenNotInCookie}
	}

	tok, err := token.Parse(raw)
	if err != nil {
		return rv.fail(w, TokenWrongFormat, err)
	}

	cred, err := rv.users.ByUsername(r.Context(), tok.Ident)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return rv.fail(w, UserNotFound, err)
	case err != nil:
		return rv.fail(w, StoreError, err)
	}

	if err := rv.signer.Validate(tok, cred.TokenSalt); err != nil {
		return rv.fail(w, ValidateFailed, err)
	}

	// Rotate: every successful resolution issues a fresh token with a
	// renewed expiration. Concurrent requests for the same user may
	// race on this write; last writer wins, and an older unexpired
	// token stays valid until its own expiration.
	fresh := rv.signer.Generate(cred.Username, cred.TokenSalt)
	if err := rv.cookies.Write(w, fresh.String()); err != nil {
		return rv.fail(w, CookieSetFailed, err)
	}

	authCtx, err := NewContext(cred.ID)
	if err != nil {
		return rv.fail(w, ContextCreateFailed, err)
	}

	return Result{Context: authCtx}
}

// fail removes the credential cookie and records the reason.
func (rv *Resolver) fail(w http.ResponseWriter, reason FailReason, err error) Result {
	rv.cookies.Clear(w)
	return Result{Reason: reason, Err: err}
}
