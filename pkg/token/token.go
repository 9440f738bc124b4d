// Package token implements the signed, expiring session token issued
// after successful authentication.
//
// A token's textual form is three dot-separated segments:
//
//	base64url(identifier).base64url(expiration_rfc3339).signature
//
// The signature is produced by Signer with the same keyed MAC as
// password scheme 01, under a separate token key and a per-identity
// salt. Tokens are immutable; a refreshed session gets a new token
// rather than a mutated one.
package token

import (
	"encoding/base64"
	"strings"
)

// Token is a parsed session token. Sign stays in its encoded form; it
// is only ever compared, never decoded.
type Token struct {
	Ident string
	Exp   string
	Sign  string
}

// Parse splits a token string into its three segments and decodes the
// identifier and expiration. It fails with ErrInvalidFormat unless
// there are exactly three non-empty segments.
func Parse(s string) (Token, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Token{}, ErrInvalidFormat
	}

	ident, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return Token{}, ErrCannotDecodeIdent
	}
	exp, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return Token{}, ErrCannotDecodeExp
	}

	return Token{
		Ident: string(ident),
		Exp:   string(exp),
		Sign:  parts[2],
	}, nil
}

// String serializes the token into its transport form, the inverse of
// Parse.
func (t Token) String() string {
	return base64.RawURLEncoding.EncodeToString([]byte(t.Ident)) +
		"." +
		base64.RawURLEncoding.EncodeToString([]byte(t.Exp)) +
		"." +
		t.Sign
}
