package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/granblue-checker/internal/domain"
)

// CreateSession handles POST /sessions. It stores the selection state and
// answers with the share link that restores it.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body selectionState
	if !s.decode(w, r, &body) {
		return
	}
	sess, err := s.sessions.Create(r.Context(), body.toDomain())
	if err != nil {
		s.handleError(w, r, err, "session not found")
		return
	}
	s.writeJSON(w, r, http.StatusCreated, s.sessionToResponse(sess))
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleError(w, r, err, "session not found")
		return
	}
	s.writeJSON(w, r, http.StatusOK, s.sessionToResponse(sess))
}

// shareURL builds "<base>/?s=<id>".
func (s *Server) shareURL(id string) string {
	return strings.TrimRight(s.baseURL, "/") + "/?s=" + url.QueryEscape(id)
}

func (s *Server) sessionToResponse(sess domain.Session) sessionResponse {
	st := stateToResponse(sess.State())
	return sessionResponse{
		ID:              sess.ID,
		ShareURL:        s.shareURL(sess.ID),
		InputValues:     st.InputValues,
		SelectedItemIDs: st.SelectedItemIDs,
		WeaponCounts:    st.WeaponCounts,
		CreatedAt:       sess.CreatedAt,
	}
}
