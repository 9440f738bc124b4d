// Package memory provides an in-memory storage.UserStore for testing
// and lightweight single-process deployments. Records are lost when
// the process restarts.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/geleit/geleit/pkg/storage"
)

// Store is an in-memory UserStore. The store assigns ids sequentially
// and generates both salts at creation time.
type Store struct {
	mu     sync.RWMutex
	byID   map[int64]*storage.Credential
	byName map[string]int64 // tenant + "\x00" + username
	nextID int64
}

// Compile-time interface check.
var _ storage.UserStore = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		byID:   make(map[int64]*storage.Credential),
		byName: make(map[string]int64),
		nextID: 1,
	}
}

func nameKey(tenant, username string) string {
	return tenant + "\x00" + username
}

// Create inserts a new credential with fresh salts. Usernames are
// unique per tenant.
func (s *Store) Create(ctx context.Context, nc storage.NewCredential) (*storage.Credential, error) {
	tenant := storage.GetTenant(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[nameKey(tenant, nc.Username)]; exists {
		return nil, storage.ErrConflict
	}

	cred := &storage.Credential{
		ID:           s.nextID,
		Tenant:       tenant,
		Username:     nc.Username,
		PasswordHash: copyHash(nc.PasswordHash),
		PasswordSalt: uuid.New(),
		TokenSalt:    uuid.New(),
		CreatedAt:    time.Now().UTC(),
	}
	s.nextID++

	s.byID[cred.ID] = cred
	s.byName[nameKey(tenant, cred.Username)] = cred.ID

	out := *cred
	return &out, nil
}

// ByUsername returns the credential for username within the tenant in
// ctx. Without a tenant the first match across tenants wins, which is
// only meaningful in single-tenant mode.
func (s *Store) ByUsername(ctx context.Context, username string) (*storage.Credential, error) {
	tenant := storage.GetTenant(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if tenant != "" {
		id, ok := s.byName[nameKey(tenant, username)]
		if !ok {
			return nil, storage.ErrNotFound
		}
		out := *s.byID[id]
		return &out, nil
	}

	for _, cred := range s.byID {
		if cred.Username == username {
			out := *cred
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

// ByID returns the credential with the given id, tenant-scoped when a
// tenant is present in ctx.
func (s *Store) ByID(ctx context.Context, id int64) (*storage.Credential, error) {
	tenant := storage.GetTenant(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if tenant != "" && cred.Tenant != tenant {
		return nil, storage.ErrNotFound
	}

	out := *cred
	return &out, nil
}

// UpdatePasswordHash replaces the stored hash for id.
func (s *Store) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	tenant := storage.GetTenant(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	cred, ok := s.byID[id]
	if !ok {
		return storage.ErrNotFound
	}
	if tenant != "" && cred.Tenant != tenant {
		return storage.ErrNotFound
	}

	cred.PasswordHash = &hash
	return nil
}

// TouchLogin records the current time as the last successful login.
func (s *Store) TouchLogin(ctx context.Context, id int64) error {
	tenant := storage.GetTenant(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	cred, ok := s.byID[id]
	if !ok {
		return storage.ErrNotFound
	}
	if tenant != "" && cred.Tenant != tenant {
		return storage.ErrNotFound
	}

	now := time.Now().UTC()
	cred.LastLoginAt = &now
	return nil
}

// HealthCheck always succeeds for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// copyHash keeps callers from sharing the stored hash pointer.
func copyHash(h *string) *string {
	if h == nil {
		return nil
	}
	v := *h
	return &v
}
