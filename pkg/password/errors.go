package password

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrPasswordInvalid is the only validation failure Hasher.Validate
	// exposes. Malformed references, unknown schemes, and genuine
	// mismatches all collapse into it so callers cannot learn why a
	// credential was rejected.
	ErrPasswordInvalid = errors.New("password validation failed")

	errHashFormat   = errors.New("stored hash is not in #scheme#blob form")
	errHashMismatch = errors.New("hash does not match content")
)

// SchemeNotFoundError reports a stored hash naming an unregistered scheme.
type SchemeNotFoundError struct {
	ID string
}

func (e *SchemeNotFoundError) Error() string {
	return fmt.Sprintf("hash scheme %q not registered", e.ID)
}
