package token

import (
	"crypto/hmac"
	"encoding/base64"
	"time"

	"github.com/google/uuid"

	"github.com/geleit/geleit/pkg/debug"
	"github.com/geleit/geleit/pkg/password"
)

// Signer generates and validates token signatures. The key is the
// process-wide token secret, distinct from the password key; the
// lifetime may be well below a second.
type Signer struct {
	key      []byte
	lifetime time.Duration
}

// NewSigner creates a Signer issuing tokens valid for lifetime.
func NewSigner(key []byte, lifetime time.Duration) *Signer {
	return &Signer{key: key, lifetime: lifetime}
}

// Generate issues a token for ident expiring lifetime from now. The
// expiration keeps nanosecond precision so sub-second lifetimes work.
func (s *Signer) Generate(ident string, salt uuid.UUID) Token {
	exp := time.Now().UTC().Add(s.lifetime).Format(time.RFC3339Nano)
	debug.Log("token", "token generated", "ident", ident, "exp", exp)
	return Token{
		Ident: ident,
		Exp:   exp,
		Sign:  s.sign(ident, exp, salt),
	}
}

// Validate recomputes the signature over the claimed identifier and
// expiration and compares it in constant time, then checks the
// expiration. A token whose expiration is not after the current time
// is rejected.
func (s *Signer) Validate(t Token, salt uuid.UUID) error {
	want := s.sign(t.Ident, t.Exp, salt)
	if !hmac.Equal([]byte(want), []byte(t.Sign)) {
		return ErrSignatureMismatch
	}

	exp, err := time.Parse(time.RFC3339Nano, t.Exp)
	if err != nil {
		return ErrExpNotISO
	}
	if !exp.After(time.Now().UTC()) {
		return ErrExpired
	}
	return nil
}

// sign MACs the serialized ident and exp segments with the token key
// and the identity's token salt. Same construction as password scheme
// 01, different key.
func (s *Signer) sign(ident, exp string, salt uuid.UUID) string {
	content := base64.RawURLEncoding.EncodeToString([]byte(ident)) +
		"." +
		base64.RawURLEncoding.EncodeToString([]byte(exp))
	return password.SignBase64URL(s.key, content, salt[:])
}
