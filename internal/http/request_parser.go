// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for decoding request bodies and resolving
// the session a request belongs to.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"fintrack/internal/session"
)

const (
	// SessionCookie carries the session token for browser clients.
	SessionCookie = "fintrack_session"

	maxBodyBytes = 1 << 20
)

// errEmptyBody is returned by decodeJSON when the body is empty and the
// caller required one.
var errEmptyBody = errors.New("request body is empty")

// decodeJSON decodes a single JSON value from the body into dst. An empty
// body is reported as errEmptyBody so callers can treat it as optional.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return fmt.Errorf("malformed JSON: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}

// tokenFrom extracts the session token from a bearer Authorization header,
// falling back to the session cookie.
func tokenFrom(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// sessionHandler is a handler that runs with a resolved session.
type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

// withSession resolves the request's session before calling next. Requests
// without a live session get 401.
func (s *Server) withSession(op string, next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := tokenFrom(r)
		if token == "" {
			writeError(w, r, op, session.ErrNoSession)
			return
		}
		sess, err := s.sessions.Resolve(r.Context(), token)
		if err != nil {
			writeError(w, r, op, err)
			return
		}
		next(w, r, sess)
	}
}
