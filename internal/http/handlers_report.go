package http

import (
	"net/http"

	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/session"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	d, err := s.reports.Dashboard(r.Context(), sess)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	rep, err := s.reports.Report(r.Context(), sess)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleInvestments(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	items, err := s.reports.Investments(sess)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleExport runs an export in the ?format= requested. PDF and Excel are
// answered with 501.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	format, err := services.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, r, applog.OpExport, err)
		return
	}
	result, err := s.exports.Export(r.Context(), sess, format)
	if err != nil {
		writeError(w, r, applog.OpExport, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
