package auth

import (
	"log/slog"
	"net/http"

	"github.com/geleit/geleit/pkg/api"
	"github.com/geleit/geleit/pkg/observability"
	"github.com/geleit/geleit/pkg/transport"
)

// ResolveContext creates middleware that runs rv on every request and
// stashes the outcome in the request context. It never rejects a
// request; routes that need an authenticated caller gate later with
// RequireContext.
func ResolveContext(rv *Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := rv.Resolve(w, r)

			switch {
			case res.Context != nil:
				slog.Debug("auth context resolved",
					"user_id", res.Context.UserID,
					"path", r.URL.Path,
				)
			case res.Reason == TokenNotInCookie:
				// Anonymous caller, not worth a warning.
				slog.Debug("request without session token", "path", r.URL.Path)
			default:
				slog.Warn("auth resolution failed",
					"reason", res.Reason.String(),
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", res.Err,
				)
			}

			observability.AuthResolutionsTotal.WithLabelValues(res.Outcome()).Inc()

			next.ServeHTTP(w, r.WithContext(WithResult(r.Context(), &res)))
		})
	}
}

// RequireContext gates routes that need an authenticated caller. The
// rejection is always the same generic classification; the recorded
// failure reason stays in the logs.
func RequireContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, ok := ResultFromContext(r.Context())
		if !ok {
			res = &Result{Reason: ContextMissing}
		}

		if res.Context == nil {
			slog.Warn("rejecting unauthenticated request",
				"reason", res.Reason.String(),
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)
			transport.WriteAPIError(w, api.NewNoAuthError())
			return
		}

		next.ServeHTTP(w, r)
	})
}
