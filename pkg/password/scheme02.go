package password

import (
	"crypto/hmac"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id cost parameters for new hashes. Validation reads the
// parameters back from the PHC blob, so changing these affects new
// hashes only.
const (
	argonMemory  uint32 = 19456 // KiB
	argonTime    uint32 = 2
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
)

// prehash folds the password key into the content before key
// derivation. x/crypto's argon2 has no secret parameter, so the pepper
// is applied by MACing the content with the scheme 01 primitive.
func (h *Hasher) prehash(content string) []byte {
	mac := hmac.New(sha512.New, h.key)
	mac.Write([]byte(content))
	return mac.Sum(nil)
}

func (h *Hasher) hash02(c ContentToHash) (string, error) {
	key := argon2.IDKey(h.prehash(c.Content), c.Salt[:], argonTime, argonMemory, argonThreads, argonKeyLen)
	return encodePHC(c.Salt[:], key), nil
}

// validate02 takes salt and cost parameters from the blob itself; the
// externally stored salt plays no part here.
func (h *Hasher) validate02(c ContentToHash, blob string) error {
	p, err := decodePHC(blob)
	if err != nil {
		return err
	}
	computed := argon2.IDKey(h.prehash(c.Content), p.salt, p.time, p.memory, p.threads, uint32(len(p.hash)))
	if subtle.ConstantTimeCompare(computed, p.hash) != 1 {
		return errHashMismatch
	}
	return nil
}

// phcParams holds the pieces of a decoded PHC string.
type phcParams struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	hash    []byte
}

// encodePHC serializes an Argon2id hash in PHC string format:
//
//	$argon2id$v=19$m=19456,t=2,p=1$<salt_b64>$<hash_b64>
//
// Base64 uses the standard alphabet without padding, the convention of
// the Argon2 reference implementation.
func encodePHC(salt, hash []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)
}

// decodePHC parses a PHC string. Splitting on "$" yields six parts,
// the first empty because of the leading delimiter.
func decodePHC(blob string) (*phcParams, error) {
	parts := strings.Split(blob, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, fmt.Errorf("malformed argon2 hash: want 5 segments, got %d", len(parts)-1)
	}
	if parts[1] != "argon2id" {
		return nil, fmt.Errorf("unsupported argon2 variant %q", parts[1])
	}

	version, err := parseKV(parts[2], "v")
	if err != nil {
		return nil, err
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	memory, time, threads, err := parseCosts(parts[3])
	if err != nil {
		return nil, err
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, fmt.Errorf("invalid argon2 salt encoding: %w", err)
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, fmt.Errorf("invalid argon2 hash encoding: %w", err)
	}

	return &phcParams{
		memory:  memory,
		time:    time,
		threads: threads,
		salt:    salt,
		hash:    hash,
	}, nil
}

// parseKV parses a "key=value" segment and returns the numeric value.
func parseKV(s, key string) (uint64, error) {
	v, ok := strings.CutPrefix(s, key+"=")
	if !ok {
		return 0, fmt.Errorf("argon2 segment %q missing %q", s, key)
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("non-numeric argon2 %s in %q", key, s)
	}
	return n, nil
}

// parseCosts splits "m=19456,t=2,p=1" into its three cost parameters.
// Values a later IDKey call would refuse are rejected here.
func parseCosts(s string) (memory, time uint32, threads uint8, err error) {
	vals := make(map[string]uint64, 3)
	for _, kv := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return 0, 0, 0, fmt.Errorf("malformed argon2 cost %q", kv)
		}
		n, perr := strconv.ParseUint(v, 10, 32)
		if perr != nil {
			return 0, 0, 0, fmt.Errorf("non-numeric argon2 cost %q", kv)
		}
		vals[k] = n
	}

	m, ok1 := vals["m"]
	t, ok2 := vals["t"]
	p, ok3 := vals["p"]
	if !ok1 || !ok2 || !ok3 {
		return 0, 0, 0, fmt.Errorf("argon2 cost segment %q missing m, t or p", s)
	}
	if t == 0 {
		return 0, 0, 0, fmt.Errorf("argon2 time cost must be at least 1")
	}
	if p == 0 || p > 255 {
		return 0, 0, 0, fmt.Errorf("argon2 parallelism %d out of range", p)
	}
	return uint32(m), uint32(t), uint8(p), nil
}
