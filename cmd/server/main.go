// Command server runs the geleit credential and session service.
//
// Configuration is loaded from a YAML file (GELEIT_CONFIG, ./config.yaml
// or /etc/geleit/config.yaml) with environment overrides:
//
//	GELEIT_PORT           - Listen port (default: 8080)
//	GELEIT_PWD_KEY        - Password signing key, base64url (required)
//	GELEIT_TOKEN_KEY      - Token signing key, base64url (required)
//	GELEIT_TOKEN_DURATION - Session lifetime in seconds (default: 1800)
//	GELEIT_SERVICE_KEY    - Service bearer key, base64url (optional)
//	GELEIT_STORAGE        - Storage type: "memory" or "postgres" (default: "memory")
//	GELEIT_POSTGRES_DSN   - PostgreSQL connection string
//	GELEIT_LIMITER        - Login limiter: "none", "memory" or "redis" (default: "memory")
//	GELEIT_REDIS_ADDR     - Redis address for the distributed limiter
//	GELEIT_LOG_LEVEL      - ERROR, WARN, INFO or DEBUG (default: INFO)
//	GELEIT_DEBUG          - Debug categories, comma-separated (see pkg/debug)
//
// cmd/genkey generates suitable signing keys.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/geleit/geleit/pkg/auth"
	"github.com/geleit/geleit/pkg/auth/bearer"
	"github.com/geleit/geleit/pkg/auth/redisrate"
	"github.com/geleit/geleit/pkg/config"
	"github.com/geleit/geleit/pkg/debug"
	"github.com/geleit/geleit/pkg/observability"
	"github.com/geleit/geleit/pkg/password"
	"github.com/geleit/geleit/pkg/storage"
	"github.com/geleit/geleit/pkg/storage/memory"
	"github.com/geleit/geleit/pkg/storage/postgres"
	"github.com/geleit/geleit/pkg/token"
	"github.com/geleit/geleit/pkg/transport"
	"github.com/geleit/geleit/pkg/web"
	"github.com/geleit/geleit/pkg/workpool"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	debug.Init(cfg.Server.Debug, cfg.Server.LogLevel)
	if cats := debug.Categories(); len(cats) > 0 {
		slog.Info("debug logging enabled", "categories", cats)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Hash worker pool. Every Argon2 computation goes through here, so
	// the dimensions bound the service's memory appetite.
	pool := workpool.New(cfg.Auth.HashWorkers, cfg.Auth.HashQueue)
	defer pool.Close()
	observability.RegisterHashQueueDepth(pool.Depth)

	hasher := password.NewHasher(cfg.Auth.PasswordKeyBytes(), pool)
	signer := token.NewSigner(cfg.Auth.TokenKeyBytes(), cfg.Auth.TokenLifetime())

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := bootstrapUser(ctx, cfg, store, hasher); err != nil {
		return err
	}

	var bv *bearer.Validator
	if key := cfg.Auth.ServiceKeyBytes(); len(key) > 0 {
		bv = bearer.NewValidator(key)
	}

	srv := web.New(web.Config{
		Users:         store,
		Hasher:        hasher,
		Signer:        signer,
		Limiter:       newLimiter(cfg),
		Bearer:        bv,
		SecureCookies: cfg.Server.SecureCookies,
		Metrics:       cfg.Observability.Metrics.Enabled,
		MetricsPath:   cfg.Observability.Metrics.Path,
	})

	handler := transport.Chain(
		transport.RequestID(),
		transport.Logging(nil),
		observability.MetricsMiddleware,
		transport.Recovery(),
	)(srv.Handler())

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in background.
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting",
			"port", cfg.Server.Port,
			"storage", cfg.Storage.Type,
			"limiter", cfg.Auth.Limiter.Type,
			"bearer", bv != nil,
		)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error.
	select {
	case <-ctx.Done():
		slog.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// openStore creates the configured user store.
func openStore(ctx context.Context, cfg *config.Config) (storage.UserStore, error) {
	switch cfg.Storage.Type {
	case "postgres":
		store, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		slog.Info("storage ready", "type", "postgres")
		return store, nil
	default:
		slog.Info("storage ready", "type", "memory")
		return memory.New(), nil
	}
}

// newLimiter creates the configured login attempt limiter.
func newLimiter(cfg *config.Config) auth.AttemptLimiter {
	lc := cfg.Auth.Limiter
	switch lc.Type {
	case "none":
		slog.Warn("login throttling disabled")
		return auth.NopLimiter{}
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     lc.Redis.Addr,
			Password: lc.Redis.Password,
			DB:       lc.Redis.DB,
		})
		slog.Info("login limiter ready", "type", "redis", "attempts", lc.Attempts, "window", lc.Window)
		return redisrate.New(client, lc.Attempts, lc.Window)
	default:
		slog.Info("login limiter ready", "type", "memory", "attempts", lc.Attempts, "window", lc.Window)
		return auth.NewInProcessLimiter(lc.Attempts, lc.Window)
	}
}

// bootstrapUser provisions the initial account on first start. An
// already existing username is left untouched.
func bootstrapUser(ctx context.Context, cfg *config.Config, store storage.UserStore, hasher *password.Hasher) error {
	bc := cfg.Auth.Bootstrap
	if bc.Username == "" {
		if cfg.Storage.Type == "memory" {
			slog.Warn("no bootstrap user configured, memory store starts empty")
		}
		return nil
	}

	cred, err := store.Create(ctx, storage.NewCredential{Username: bc.Username})
	if errors.Is(err, storage.ErrConflict) {
		slog.Debug("bootstrap user already present", "username", bc.Username)
		return nil
	}
	if err != nil {
		return fmt.Errorf("creating bootstrap user: %w", err)
	}

	hash, err := hasher.Hash(ctx, password.ContentToHash{Content: bc.Password, Salt: cred.PasswordSalt})
	if err != nil {
		return fmt.Errorf("hashing bootstrap password: %w", err)
	}
	if err := store.UpdatePasswordHash(ctx, cred.ID, hash); err != nil {
		return fmt.Errorf("storing bootstrap password: %w", err)
	}

	slog.Info("bootstrap user created", "username", bc.Username, "user_id", cred.ID)
	return nil
}
