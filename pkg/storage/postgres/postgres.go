// Package postgres provides a PostgreSQL-backed storage.UserStore.
// It uses pgx/v5 for connection pooling; salts are generated by the
// database so that credential records are fully store-owned.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geleit/geleit/pkg/debug"
	"github.com/geleit/geleit/pkg/storage"
)

// Store is a PostgreSQL-backed UserStore.
type Store struct {
	pool *pgxpool.Pool
}

// Compile-time interface check.
var _ storage.UserStore = (*Store)(nil)

// New creates a PostgreSQL store with the given configuration. If
// MigrateOnStart is set, schema migrations are applied before the
// store is returned.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	debug.Log("storage", "postgres pool established", "max_conns", cfg.MaxConns)

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

const credentialColumns = `id, tenant_id, username, pwd_hash, pwd_salt, token_salt, created_at, last_login_at`

// ByUsername returns the credential for username, scoped to the
// tenant in ctx when one is present.
func (s *Store) ByUsername(ctx context.Context, username string) (*storage.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM users WHERE username = $1`
	args := []any{username}

	if tenant := storage.GetTenant(ctx); tenant != "" {
		query += ` AND tenant_id = $2`
		args = append(args, tenant)
	}

	return s.scanOne(ctx, query, args...)
}

// ByID returns the credential with the given id.
func (s *Store) ByID(ctx context.Context, id int64) (*storage.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM users WHERE id = $1`
	args := []any{id}

	if tenant := storage.GetTenant(ctx); tenant != "" {
		query += ` AND tenant_id = $2`
		args = append(args, tenant)
	}

	return s.scanOne(ctx, query, args...)
}

func (s *Store) scanOne(ctx context.Context, query string, args ...any) (*storage.Credential, error) {
	var cred storage.Credential
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&cred.ID, &cred.Tenant, &cred.Username, &cred.PasswordHash,
		&cred.PasswordSalt, &cred.TokenSalt,
		&cred.CreatedAt, &cred.LastLoginAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying credential: %w", err)
	}
	return &cred, nil
}

// Create inserts a new credential. The database assigns the id and
// generates both salts.
func (s *Store) Create(ctx context.Context, nc storage.NewCredential) (*storage.Credential, error) {
	tenant := storage.GetTenant(ctx)

	cred := storage.Credential{
		Tenant:       tenant,
		Username:     nc.Username,
		PasswordHash: nc.PasswordHash,
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (tenant_id, username, pwd_hash)
		VALUES ($1, $2, $3)
		RETURNING id, pwd_salt, token_salt, created_at
	`, tenant, nc.Username, nc.PasswordHash).Scan(
		&cred.ID, &cred.PasswordSalt, &cred.TokenSalt, &cred.CreatedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, storage.ErrConflict
		}
		return nil, fmt.Errorf("inserting credential: %w", err)
	}

	return &cred, nil
}

// UpdatePasswordHash replaces the stored hash for id.
func (s *Store) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	query := `UPDATE users SET pwd_hash = $1 WHERE id = $2`
	args := []any{hash, id}

	if tenant := storage.GetTenant(ctx); tenant != "" {
		query += ` AND tenant_id = $3`
		args = append(args, tenant)
	}

	result, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating password hash: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// TouchLogin records a successful login timestamp for id.
func (s *Store) TouchLogin(ctx context.Context, id int64) error {
	query := `UPDATE users SET last_login_at = now() WHERE id = $1`
	args := []any{id}

	if tenant := storage.GetTenant(ctx); tenant != "" {
		query += ` AND tenant_id = $2`
		args = append(args, tenant)
	}

	result, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("recording login: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// isDuplicateKey checks if the error is a PostgreSQL unique violation (23505).
func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
