package password

import (
	"crypto/hmac"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
)

// SignBase64URL computes HMAC-SHA-512 over content followed by salt,
// keyed with key, and returns the 64-byte MAC as unpadded url-safe
// base64 (86 characters). This is the scheme 01 hash and, under the
// separate token key, the session token signature primitive.
func SignBase64URL(key []byte, content string, salt []byte) string {
	mac := hmac.New(sha512.New, key)
	mac.Write([]byte(content))
	mac.Write(salt)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (h *Hasher) hash01(c ContentToHash) (string, error) {
	return SignBase64URL(h.key, c.Content, c.Salt[:]), nil
}

func (h *Hasher) validate01(c ContentToHash, blob string) error {
	computed, err := h.hash01(c)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(computed), []byte(blob)) != 1 {
		return errHashMismatch
	}
	return nil
}
