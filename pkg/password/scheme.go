package password

import "strings"

// Scheme identifies one of the supported hashing algorithms. The set
// is closed and known at compile time; dispatch is an exhaustive
// switch rather than an open registry.
type Scheme int

const (
	// Scheme01 is keyed HMAC-SHA-512 over content and salt, encoded as
	// unpadded url-safe base64. The salt is mixed into the MAC input
	// but not embedded in the blob, so rotating a credential's stored
	// salt invalidates its existing scheme 01 hashes.
	Scheme01 Scheme = iota + 1

	// Scheme02 is Argon2id in PHC string format. Salt and cost
	// parameters are embedded in the blob, which makes validation
	// self-contained; the externally stored salt is not consulted.
	Scheme02
)

// DefaultScheme is used for all newly produced hashes. A hash that
// validates under any other scheme reports StatusOutdated.
const DefaultScheme = Scheme02

// ID returns the scheme identifier as it appears in stored hash
// prefixes, or "" for an invalid Scheme value.
func (s Scheme) ID() string {
	switch s {
	case Scheme01:
		return "01"
	case Scheme02:
		return "02"
	}
	return ""
}

// ParseScheme resolves a stored scheme id to its implementation.
func ParseScheme(id string) (Scheme, error) {
	switch id {
	case "01":
		return Scheme01, nil
	case "02":
		return Scheme02, nil
	}
	return 0, &SchemeNotFoundError{ID: id}
}

// formatStored wraps a scheme blob in the "#<id>#<blob>" stored form.
func formatStored(s Scheme, blob string) string {
	return "#" + s.ID() + "#" + blob
}

// splitStored parses the "#<id>#<blob>" stored form. The delimiters
// are fixed, so a bounded split suffices.
func splitStored(ref string) (id, blob string, err error) {
	rest, ok := strings.CutPrefix(ref, "#")
	if !ok {
		return "", "", errHashFormat
	}
	id, blob, ok = strings.Cut(rest, "#")
	if !ok || id == "" {
		return "", "", errHashFormat
	}
	return id, blob, nil
}
