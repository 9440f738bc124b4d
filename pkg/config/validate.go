package config

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// minKeyBytes is the minimum decoded length for the signing keys.
// cmd/genkey produces 64-byte keys; anything under 32 bytes is refused.
const minKeyBytes = 32

// Validate checks the configuration for required fields and valid values,
// and decodes the signing keys. Returns an error with a descriptive field
// path on failure.
func (c *Config) Validate() error {
	var errs []error

	// server.port must be positive.
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	// Signing keys are required and must decode to full-strength secrets.
	var err error
	if c.Auth.passwordKey, err = decodeKey("auth.password_key", c.Auth.PasswordKey); err != nil {
		errs = append(errs, err)
	}
	if c.Auth.tokenKey, err = decodeKey("auth.token_key", c.Auth.TokenKey); err != nil {
		errs = append(errs, err)
	}

	// auth.service_key is optional; validated only when set.
	if c.Auth.ServiceKey != "" {
		if c.Auth.serviceKey, err = decodeKey("auth.service_key", c.Auth.ServiceKey); err != nil {
			errs = append(errs, err)
		}
	}

	// auth.token_duration must be positive.
	if c.Auth.TokenDuration <= 0 {
		errs = append(errs, fmt.Errorf("auth.token_duration must be > 0 seconds, got %v", c.Auth.TokenDuration))
	}

	// Hash pool dimensions must be positive.
	if c.Auth.HashWorkers <= 0 {
		errs = append(errs, fmt.Errorf("auth.hash_workers must be > 0, got %d", c.Auth.HashWorkers))
	}
	if c.Auth.HashQueue <= 0 {
		errs = append(errs, fmt.Errorf("auth.hash_queue must be > 0, got %d", c.Auth.HashQueue))
	}

	// auth.limiter.type must be a known value.
	switch c.Auth.Limiter.Type {
	case "none":
		// valid, no further checks
	case "memory", "redis":
		if c.Auth.Limiter.Attempts <= 0 {
			errs = append(errs, fmt.Errorf("auth.limiter.attempts must be > 0, got %d", c.Auth.Limiter.Attempts))
		}
		if c.Auth.Limiter.Window <= 0 {
			errs = append(errs, fmt.Errorf("auth.limiter.window must be > 0, got %v", c.Auth.Limiter.Window))
		}
		if c.Auth.Limiter.Type == "redis" && c.Auth.Limiter.Redis.Addr == "" {
			errs = append(errs, fmt.Errorf("auth.limiter.redis.addr is required when auth.limiter.type is \"redis\""))
		}
	default:
		errs = append(errs, fmt.Errorf("auth.limiter.type must be \"none\", \"memory\", or \"redis\", got %q", c.Auth.Limiter.Type))
	}

	// auth.bootstrap needs both halves when enabled.
	if c.Auth.Bootstrap.Username != "" && c.Auth.Bootstrap.Password == "" {
		errs = append(errs, fmt.Errorf("auth.bootstrap.password or auth.bootstrap.password_file is required when auth.bootstrap.username is set"))
	}

	// storage.type must be a known value.
	switch c.Storage.Type {
	case "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\" or \"postgres\", got %q", c.Storage.Type))
	}

	// If storage.type is "postgres", DSN or DSNFile must be set.
	if c.Storage.Type == "postgres" {
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	}

	return errors.Join(errs...)
}

// decodeKey decodes a base64url (unpadded) key and checks its strength.
// The key material itself never appears in the returned error.
func decodeKey(field, value string) ([]byte, error) {
	if value == "" {
		return nil, fmt.Errorf("%s is required", field)
	}
	key, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%s is not valid base64url: %w", field, err)
	}
	if len(key) < minKeyBytes {
		return nil, fmt.Errorf("%s decodes to %d bytes, want at least %d", field, len(key), minKeyBytes)
	}
	return key, nil
}
