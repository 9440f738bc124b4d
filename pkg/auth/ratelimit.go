package auth

import (
	"context"
	"sync"
	"time"
)

// AttemptLimiter bounds login attempts per caller key.
type AttemptLimiter interface {
	// Allow counts one attempt for key and returns ErrTooManyRequests
	// once the budget for the current window is spent.
	Allow(ctx context.Context, key string) error
}

// NopLimiter allows every attempt.
type NopLimiter struct{}

func (NopLimiter) Allow(context.Context, string) error { return nil }

// maxTrackedKeys caps the limiter's memory. Keys are derived from
// caller-controlled input, so expired windows are swept once the cap
// is reached instead of growing without bound.
const maxTrackedKeys = 65536

// InProcessLimiter is a fixed-window attempt counter per key, kept in
// memory. Suitable for a single instance; use the Redis-backed limiter
// when running more than one.
type InProcessLimiter struct {
	attempts int
	window   time.Duration
	mu       sync.Mutex
	counters map[string]*counter
}

type counter struct {
	count    int
	windowAt time.Time
}

// Compile-time interface checks.
var (
	_ AttemptLimiter = (*InProcessLimiter)(nil)
	_ AttemptLimiter = NopLimiter{}
)

// NewInProcessLimiter allows attempts per window for each key.
func NewInProcessLimiter(attempts int, window time.Duration) *InProcessLimiter {
	return &InProcessLimiter{
		attempts: attempts,
		window:   window,
		counters: make(map[string]*counter),
	}
}

// Allow counts one attempt for key.
func (l *InProcessLimiter) Allow(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	c, ok := l.counters[key]
	if !ok || now.Sub(c.windowAt) >= l.window {
		if !ok && len(l.counters) >= maxTrackedKeys {
			l.sweep(now)
		}
		// New window.
		l.counters[key] = &counter{count: 1, windowAt: now}
		return nil
	}

	c.count++
	if c.count > l.attempts {
		return ErrTooManyRequests
	}

	return nil
}

// sweep drops expired windows. Caller holds the lock.
func (l *InProcessLimiter) sweep(now time.Time) {
	for key, c := range l.counters {
		if now.Sub(c.windowAt) >= l.window {
			delete(l.counters, key)
		}
	}
}
