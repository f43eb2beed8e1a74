package http

import (
	"net/http"

	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/session"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	items, err := s.expenses.List(sess, sanitizeInput(r.URL.Query().Get("category")))
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	in, ok := s.expenseInput(w, r)
	if !ok {
		return
	}
	e, err := s.expenses.Add(r.Context(), sess, in)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/expenses/"+e.ID).
		Body(e).
		Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	in, ok := s.expenseInput(w, r)
	if !ok {
		return
	}
	e, err := s.expenses.Update(r.Context(), sess, r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := s.expenses.Delete(r.Context(), sess, r.PathValue("id")); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) expenseInput(w http.ResponseWriter, r *http.Request) (services.ExpenseInput, bool) {
	var in services.ExpenseInput
	if err := decodeJSON(w, r, &in); err != nil {
		BadRequestError(r.Context(), err.Error()).Write(w)
		return in, false
	}
	in.Category = sanitizeInput(in.Category)
	in.Description = sanitizeInput(in.Description)
	return in, true
}
