package token

import "errors"

// Sentinel errors.
var (
	ErrInvalidFormat     = errors.New("token is not in ident.exp.sign form")
	ErrCannotDecodeIdent = errors.New("token identifier is not valid base64url")
	ErrCannotDecodeExp   = errors.New("token expiration is not valid base64url")
	ErrSignatureMismatch = errors.New("token signature does not match")
	ErrExpNotISO         = errors.New("token expiration is not an RFC3339 timestamp")
	ErrExpired           = errors.New("token has expired")
)
