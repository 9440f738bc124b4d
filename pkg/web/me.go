package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geleit/geleit/pkg/api"
	"github.com/geleit/geleit/pkg/auth"
	"github.com/geleit/geleit/pkg/storage"
	"github.com/geleit/geleit/pkg/transport"
)

// handleMe handles GET /api/me. The RequireContext gate guarantees an
// authenticated caller; the record is re-read so the response reflects
// the store, not the token.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.FromContext(r.Context())

	cred, err := s.users.ByID(r.Context(), authCtx.UserID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// The account vanished while its token was still live.
		slog.Warn("authenticated user no longer in store", "user_id", authCtx.UserID)
		s.cookies.Clear(w)
		transport.WriteAPIError(w, api.NewNoAuthError())
		return
	case err != nil:
		slog.Error("user lookup failed", "user_id", authCtx.UserID, "error", err)
		transport.WriteAPIError(w, api.NewServerError("internal server error"))
		return
	}

	respondJSON(w, http.StatusOK, api.MeResponse{
		UserID:      cred.ID,
		Username:    cred.Username,
		CreatedAt:   cred.CreatedAt,
		LastLoginAt: cred.LastLoginAt,
	})
}
