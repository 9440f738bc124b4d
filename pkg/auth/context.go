package auth

import (
	"context"
	"errors"
)

// Context identifies the authenticated caller for the rest of the
// request. It carries only the user id; anything else about the user
// is fetched from the store when needed.
type Context struct {
	UserID int64
}

// NewContext materializes the caller context. Non-positive ids are
// reserved and rejected.
func NewContext(userID int64) (*Context, error) {
	if userID <= 0 {
		return nil, errors.New("reserved user id")
	}
	return &Context{UserID: userID}, nil
}

// Result is the recorded outcome of one resolution cycle. Context is
// non-nil exactly on success; otherwise Reason classifies the failure
// and Err carries the diagnostic detail for logs, never for callers.
type Result struct {
	Context *Context
	Reason  FailReason
	Err     error
}

// Outcome returns the logging/metrics label for the result.
func (res *Result) Outcome() string {
	if res.Context != nil {
		return "success"
	}
	return res.Reason.String()
}

// resultKey is a private type for the result context key.
type resultKey struct{}

// WithResult stores the resolution result in the context.
func WithResult(ctx context.Context, res *Result) context.Context {
	return context.WithValue(ctx, resultKey{}, res)
}

// ResultFromContext retrieves the resolution result recorded by the
// resolve middleware. ok is false when the resolver never ran.
func ResultFromContext(ctx context.Context) (*Result, bool) {
	res, ok := ctx.Value(resultKey{}).(*Result)
	return res, ok
}

// FromContext returns the authenticated caller, or nil when the
// request resolved to a failure or the resolver never ran.
func FromContext(ctx context.Context) *Context {
	if res, ok := ResultFromContext(ctx); ok {
		return res.Context
	}
	return nil
}
