package storage

import "errors"

// Sentinel errors for identity store operations.
var (
	// ErrNotFound is returned when no credential matches the lookup.
	ErrNotFound = errors.New("user not found")

	// ErrConflict is returned when the username is already taken within
	// the tenant.
	ErrConflict = errors.New("user already exists")
)
