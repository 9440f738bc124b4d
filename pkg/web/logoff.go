package web

import (
	"net/http"

	"github.com/geleit/geleit/pkg/api"
)

// handleLogoff handles POST /api/logoff. The session cookie is removed
// only when the payload asks for it. The endpoint runs without the
// auth gate so a browser holding a broken token can still get rid of
// it.
func (s *Server) handleLogoff(w http.ResponseWriter, r *http.Request) {
	var req api.LogoffRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if !req.Logoff {
		respondJSON(w, http.StatusOK, api.LogoffResponse{LoggedOff: false})
		return
	}

	s.cookies.Clear(w)
	respondJSON(w, http.StatusOK, api.LogoffResponse{LoggedOff: true})
}
