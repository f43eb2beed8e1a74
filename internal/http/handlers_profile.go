package http

import (
	"net/http"

	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/session"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	u, err := s.profiles.Get(sess)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// handleUpdateProfile applies a partial update; omitted fields keep their
// value.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var in services.ProfileInput
	if err := decodeJSON(w, r, &in); err != nil {
		BadRequestError(r.Context(), err.Error()).Write(w)
		return
	}
	if in.Name != nil {
		name := sanitizeInput(*in.Name)
		in.Name = &name
	}
	if in.Email != nil {
		email := sanitizeInput(*in.Email)
		in.Email = &email
	}

	u, err := s.profiles.Update(r.Context(), sess, in)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
