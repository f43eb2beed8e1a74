package http

import (
	"context"
	"errors"
	"net/http"

	applog "fintrack/internal/log"
	"fintrack/internal/session"
)

type askRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	msgs, err := s.chat.Transcript(sess)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// handleAsk posts a question and waits for the advisor's reply. If the
// client goes away during the typing delay nothing is written.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req askRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(r.Context(), err.Error()).Write(w)
		return
	}
	reply, err := s.chat.Ask(r.Context(), sess, sanitizeInput(req.Text))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		writeError(w, r, applog.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, reply)
}
