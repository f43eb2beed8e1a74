package http

import (
	"errors"
	"net/http"
	"time"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/session"
)

type loginResponse struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
	User      core.User `json:"user"`
}

// handleLogin opens a session. An empty body is a plain demo login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds session.Credentials
	if err := decodeJSON(w, r, &creds); err != nil && !errors.Is(err, errEmptyBody) {
		BadRequestError(r.Context(), err.Error()).Write(w)
		return
	}
	creds.Name = sanitizeInput(creds.Name)
	creds.Email = sanitizeInput(creds.Email)

	sess, token, err := s.sessions.Login(r.Context(), creds)
	if err != nil {
		writeError(w, r, applog.OpLogin, err)
		return
	}
	user, err := s.profiles.Get(sess)
	if err != nil {
		writeError(w, r, applog.OpLogin, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusCreated, loginResponse{
		Token:     token,
		SessionID: sess.ID,
		ExpiresAt: sess.ExpiresAt,
		User:      user,
	})
}

// handleLogout resets and forgets the session and drops its cached views.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := tokenFrom(r)
	if token == "" {
		writeError(w, r, applog.OpLogout, session.ErrNoSession)
		return
	}
	sess, err := s.sessions.Resolve(r.Context(), token)
	if err != nil {
		writeError(w, r, applog.OpLogout, err)
		return
	}
	if err := s.sessions.Logout(r.Context(), token); err != nil {
		writeError(w, r, applog.OpLogout, err)
		return
	}
	s.reports.Invalidate(sess.ID)

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
