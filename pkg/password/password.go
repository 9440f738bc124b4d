package password

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/geleit/geleit/pkg/debug"
	"github.com/geleit/geleit/pkg/observability"
	"github.com/geleit/geleit/pkg/workpool"
)

// ContentToHash pairs a clear credential with its per-credential salt.
// Instances are short-lived and never logged.
type ContentToHash struct {
	Content string
	Salt    uuid.UUID
}

// Status reports whether a successfully validated hash is current.
// It is meaningful only when Validate returns a nil error.
type Status int

const (
	// StatusOK means the hash was produced by the default scheme.
	StatusOK Status = iota

	// StatusOutdated means the hash validated under a non-default
	// scheme and should be recomputed while the clear content is
	// still at hand.
	StatusOutdated
)

// String returns a short label for logs.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusOutdated:
		return "outdated"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// defaultOpTimeout bounds a single hash or validate dispatch so a
// stalled worker cannot hold a request open indefinitely.
const defaultOpTimeout = 5 * time.Second

// Hasher produces and validates stored credential hashes. The key is
// the process-wide password secret, loaded once at startup and never
// mutated afterwards.
type Hasher struct {
	key    []byte
	scheme Scheme
	pool   *workpool.Pool
}

// NewHasher creates a Hasher producing hashes under DefaultScheme.
// pool may be nil, in which case work runs on the calling goroutine.
func NewHasher(key []byte, pool *workpool.Pool) *Hasher {
	return &Hasher{key: key, scheme: DefaultScheme, pool: pool}
}

// Hash computes the stored form "#<scheme_id>#<blob>" for c under the
// default scheme. A pool dispatch failure (saturation, shutdown,
// context end) is returned as-is and is distinct from any hashing
// error.
func (h *Hasher) Hash(ctx context.Context, c ContentToHash) (string, error) {
	var (
		blob    string
		hashErr error
	)
	if err := h.dispatch(ctx, func() {
		start := time.Now()
		blob, hashErr = h.hashWith(h.scheme, c)
		elapsed := time.Since(start)
		observability.HashOperationsTotal.WithLabelValues(h.scheme.ID(), "hash").Inc()
		observability.HashDuration.WithLabelValues(h.scheme.ID()).Observe(elapsed.Seconds())
		debug.Log("password", "hash computed", "scheme", h.scheme.ID(), "elapsed", elapsed)
	}); err != nil {
		return "", err
	}
	if hashErr != nil {
		return "", hashErr
	}
	return formatStored(h.scheme, blob), nil
}

// Validate checks c against a stored hash reference. On success the
// Status reports whether the hash should be recomputed under the
// current default scheme. Malformed references, unknown schemes and
// genuine mismatches all surface as ErrPasswordInvalid; the precise
// cause goes to the debug log only. Dispatch failures pass through
// unchanged so callers can tell overload from a bad credential.
func (h *Hasher) Validate(ctx context.Context, c ContentToHash, storedRef string) (Status, error) {
	id, blob, err := splitStored(storedRef)
	if err != nil {
		slog.Debug("stored hash rejected", "error", err)
		return 0, ErrPasswordInvalid
	}
	scheme, err := ParseScheme(id)
	if err != nil {
		slog.Debug("stored hash rejected", "error", err)
		return 0, ErrPasswordInvalid
	}

	var valErr error
	if err := h.dispatch(ctx, func() {
		start := time.Now()
		valErr = h.validateWith(scheme, c, blob)
		elapsed := time.Since(start)
		observability.HashOperationsTotal.WithLabelValues(scheme.ID(), "validate").Inc()
		observability.HashDuration.WithLabelValues(scheme.ID()).Observe(elapsed.Seconds())
		debug.Log("password", "validation computed", "scheme", scheme.ID(), "elapsed", elapsed)
	}); err != nil {
		return 0, err
	}
	if valErr != nil {
		slog.Debug("password validation failed", "error", valErr)
		return 0, ErrPasswordInvalid
	}

	if scheme != h.scheme {
		return StatusOutdated, nil
	}
	return StatusOK, nil
}

func (h *Hasher) hashWith(s Scheme, c ContentToHash) (string, error) {
	switch s {
	case Scheme01:
		return h.hash01(c)
	case Scheme02:
		return h.hash02(c)
	}
	return "", &SchemeNotFoundError{ID: s.ID()}
}

func (h *Hasher) validateWith(s Scheme, c ContentToHash, blob string) error {
	switch s {
	case Scheme01:
		return h.validate01(c, blob)
	case Scheme02:
		return h.validate02(c, blob)
	}
	return &SchemeNotFoundError{ID: s.ID()}
}

// dispatch runs fn on the pool bounded by defaultOpTimeout, or inline
// when no pool is configured.
func (h *Hasher) dispatch(ctx context.Context, fn func()) error {
	if h.pool == nil {
		fn()
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultOpTimeout)
	defer cancel()
	return h.pool.Do(ctx, fn)
}
