package http

import (
	"net/http"

	"fintrack/internal/analytics"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/session"
)

type budgetsResponse struct {
	analytics.BudgetOverview
	Recommendations []analytics.Recommendation `json:"recommendations,omitempty"`
}

// handleGetBudgets returns the budget analysis. ?recommendations=true adds
// the income-based ceilings.
func (s *Server) handleGetBudgets(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	overview, err := s.budgets.Analysis(sess)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	resp := budgetsResponse{BudgetOverview: overview}
	if isTrue(r.URL.Query().Get("recommendations")) {
		if resp.Recommendations, err = s.budgets.Recommendations(sess); err != nil {
			writeError(w, r, applog.OpRead, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBudgetRecommendations(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	recs, err := s.budgets.Recommendations(sess)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// handleReplaceBudgets swaps the whole budget list. The body is a JSON
// array of budget rows.
func (s *Server) handleReplaceBudgets(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var rows []services.BudgetInput
	if err := decodeJSON(w, r, &rows); err != nil {
		BadRequestError(r.Context(), err.Error()).Write(w)
		return
	}
	for i := range rows {
		rows[i].Category = sanitizeInput(rows[i].Category)
	}
	overview, err := s.budgets.Replace(r.Context(), sess, rows)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, budgetsResponse{BudgetOverview: overview})
}
