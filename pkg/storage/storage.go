package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Credential is one identity record. PasswordHash is nil until a
// password has been set and otherwise carries the "#<scheme>#<blob>"
// stored form; it is never returned to clients.
type Credential struct {
	ID           int64
	Tenant       string
	Username     string
	PasswordHash *string
	PasswordSalt uuid.UUID
	TokenSalt    uuid.UUID
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// NewCredential is the creation payload. The store assigns the id and
// both salts. PasswordHash may be nil for accounts provisioned before
// their first password.
type NewCredential struct {
	Username     string
	PasswordHash *string
}

// UserStore is implemented by the identity backends. Lookups are
// scoped to the tenant carried in ctx; without one, records of all
// tenants are visible (single-tenant mode).
type UserStore interface {
	// ByUsername returns the credential for username or ErrNotFound.
	ByUsername(ctx context.Context, username string) (*Credential, error)

	// ByID returns the credential with the given id or ErrNotFound.
	ByID(ctx context.Context, id int64) (*Credential, error)

	// Create inserts a new credential. Usernames are unique per
	// tenant; a duplicate fails with ErrConflict.
	Create(ctx context.Context, nc NewCredential) (*Credential, error)

	// UpdatePasswordHash replaces the stored hash, e.g. after an
	// outdated-scheme validation.
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error

	// TouchLogin records a successful login timestamp.
	TouchLogin(ctx context.Context, id int64) error

	// HealthCheck verifies the backend is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
