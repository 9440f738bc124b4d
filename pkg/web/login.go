package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/geleit/geleit/pkg/api"
	"github.com/geleit/geleit/pkg/debug"
	"github.com/geleit/geleit/pkg/observability"
	"github.com/geleit/geleit/pkg/password"
	"github.com/geleit/geleit/pkg/storage"
	"github.com/geleit/geleit/pkg/transport"
	"github.com/geleit/geleit/pkg/workpool"
)

// rehashTimeout bounds one background re-hash, hashing dispatch and
// store write included.
const rehashTimeout = 30 * time.Second

// handleLogin handles POST /api/login. Unknown username, missing hash
// and wrong password are indistinguishable on the wire: all collapse
// into the same generic rejection, with the cause kept in the debug
// log.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if apiErr := api.ValidateLoginRequest(&req, s.validation); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	debug.Log("auth", "login attempt", "username", req.Username, "remote_addr", r.RemoteAddr)

	key := req.Username + "@" + clientIP(r)
	if err := s.limiter.Allow(r.Context(), key); err != nil {
		slog.Warn("login throttled", "username", req.Username, "remote_addr", r.RemoteAddr)
		observability.LoginRejectedTotal.WithLabelValues("throttled").Inc()
		transport.WriteAPIError(w, api.NewTooManyRequestsError("too many attempts, try again later"))
		return
	}

	cred, err := s.users.ByUsername(r.Context(), req.Username)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.rejectLogin(w, req.Username, "user_not_found", err)
		return
	case err != nil:
		slog.Error("user lookup failed", "username", req.Username, "error", err)
		transport.WriteAPIError(w, api.NewServerError("internal server error"))
		return
	}

	if cred.PasswordHash == nil {
		s.rejectLogin(w, req.Username, "no_password_set", nil)
		return
	}

	content := password.ContentToHash{Content: req.Password, Salt: cred.PasswordSalt}
	status, err := s.hasher.Validate(r.Context(), content, *cred.PasswordHash)
	switch {
	case errors.Is(err, password.ErrPasswordInvalid):
		s.rejectLogin(w, req.Username, "wrong_password", err)
		return
	case errors.Is(err, workpool.ErrSaturated), errors.Is(err, workpool.ErrClosed),
		errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		slog.Warn("hashing capacity exhausted", "username", req.Username, "error", err)
		transport.WriteErrorResponse(w, api.NewServerError("server busy"), http.StatusServiceUnavailable)
		return
	case err != nil:
		slog.Error("password validation failed to run", "username", req.Username, "error", err)
		transport.WriteAPIError(w, api.NewServerError("internal server error"))
		return
	}

	if status == password.StatusOutdated {
		s.rehashAsync(cred, req.Password, storage.GetTenant(r.Context()))
	}

	if err := s.users.TouchLogin(r.Context(), cred.ID); err != nil {
		// Not worth failing the login over.
		slog.Warn("recording login time failed", "user_id", cred.ID, "error", err)
	}

	tok := s.signer.Generate(cred.Username, cred.TokenSalt)
	if err := s.cookies.Write(w, tok.String()); err != nil {
		slog.Error("setting session cookie failed", "user_id", cred.ID, "error", err)
		transport.WriteAPIError(w, api.NewServerError("internal server error"))
		return
	}

	slog.Info("login succeeded", "user_id", cred.ID, "username", cred.Username)
	respondJSON(w, http.StatusOK, api.LoginResponse{
		UserID:    cred.ID,
		Username:  cred.Username,
		ExpiresAt: tok.Exp,
	})
}

// rejectLogin answers a failed attempt with the generic rejection. The
// actual cause stays out of the response and out of anything above
// debug level.
func (s *Server) rejectLogin(w http.ResponseWriter, username, cause string, err error) {
	slog.Debug("login rejected", "username", username, "cause", cause, "error", err)
	observability.LoginRejectedTotal.WithLabelValues("bad_credentials").Inc()
	transport.WriteAPIError(w, api.NewLoginFailError())
}

// rehashAsync recomputes an outdated hash under the current default
// scheme and stores it. Failures only log; the next successful login
// tries again.
func (s *Server) rehashAsync(cred *storage.Credential, clear string, tenant string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), rehashTimeout)
		defer cancel()
		if tenant != "" {
			ctx = storage.SetTenant(ctx, tenant)
		}

		hash, err := s.hasher.Hash(ctx, password.ContentToHash{Content: clear, Salt: cred.PasswordSalt})
		if err != nil {
			slog.Warn("credential re-hash failed", "user_id", cred.ID, "error", err)
			return
		}
		if err := s.users.UpdatePasswordHash(ctx, cred.ID, hash); err != nil {
			slog.Warn("storing re-hashed credential failed", "user_id", cred.ID, "error", err)
			return
		}

		observability.RehashTotal.Inc()
		slog.Info("credential re-hashed", "user_id", cred.ID, "scheme", password.DefaultScheme.ID())
	}()
}

// clientIP extracts the caller address without the port, for limiter
// keys.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
