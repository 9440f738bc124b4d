// Package redisrate throttles login attempts with counters shared
// across replicas in Redis.
package redisrate

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/geleit/geleit/pkg/auth"
)

// keyPrefix namespaces limiter counters in a shared Redis instance.
const keyPrefix = "geleit:login:"

// Limiter is a fixed-window attempt counter per key, backed by Redis
// so the budget holds across replicas. An unreachable Redis fails
// open: a broken limiter must not lock every caller out.
type Limiter struct {
	client   *redis.Client
	attempts int
	window   time.Duration
}

var _ auth.AttemptLimiter = (*Limiter)(nil)

// New creates a limiter allowing attempts per key within window.
func New(client *redis.Client, attempts int, window time.Duration) *Limiter {
	return &Limiter{client: client, attempts: attempts, window: window}
}

// Allow counts one attempt for key. The window starts with the first
// attempt; ExpireNX keeps later attempts from pushing it forward.
func (l *Limiter) Allow(ctx context.Context, key string) error {
	k := keyPrefix + key

	pipe := l.client.TxPipeline()
	count := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("attempt limiter unavailable", "error", err)
		return nil
	}

	if count.Val() > int64(l.attempts) {
		return auth.ErrTooManyRequests
	}
	return nil
}
