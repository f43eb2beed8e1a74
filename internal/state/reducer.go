// Package state holds the application state container and its reducer.
//
// Reduce is the only writer of State. It is pure and total: it never fails,
// never blocks and never mutates its input. Slices that an action does not
// touch are shared between the old and new state, so consumers must treat
// every slice in a State as read-only.
package state

import (
	"slices"

	"fintrack/internal/core"
)

// State is a snapshot of one user's session.
type State struct {
	User          *core.User         `json:"user"`
	Expenses      []core.Expense     `json:"expenses"`
	Budgets       []core.Budget      `json:"budgets"`
	ChatHistory   []core.ChatMessage `json:"chat_history"`
	Investments   []core.Investment  `json:"investments"`
	Authenticated bool               `json:"authenticated"`
}

// Initial returns the empty, unauthenticated state.
func Initial() State {
	return State{}
}

// Reduce maps the current state and one action to the next state.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetUser:
		u := a.User
		u.Goals = slices.Clone(a.User.Goals)
		s.User = &u
		s.Authenticated = true
	case Logout:
		return Initial()
	case AddExpense:
		s.Expenses = append(slices.Clip(s.Expenses), a.Expense)
	case UpdateExpense:
		i := indexOfExpense(s.Expenses, a.Expense.ID)
		if i < 0 {
			return s
		}
		next := slices.Clone(s.Expenses)
		next[i] = a.Expense
		s.Expenses = next
	case DeleteExpense:
		i := indexOfExpense(s.Expenses, a.ID)
		if i < 0 {
			return s
		}
		next := make([]core.Expense, 0, len(s.Expenses)-1)
		next = append(next, s.Expenses[:i]...)
		s.Expenses = append(next, s.Expenses[i+1:]...)
	case SetBudgets:
		s.Budgets = slices.Clone(a.Budgets)
	case AddChatMessage:
		s.ChatHistory = append(slices.Clip(s.ChatHistory), a.Message)
	case SetInvestments:
		s.Investments = slices.Clone(a.Investments)
	}
	return s
}

// Replay folds actions over the initial state.
func Replay(actions []Action) State {
	s := Initial()
	for _, a := range actions {
		s = Reduce(s, a)
	}
	return s
}

// Expense looks up an expense by ID.
func (s State) Expense(id string) (core.Expense, bool) {
	if i := indexOfExpense(s.Expenses, id); i >= 0 {
		return s.Expenses[i], true
	}
	return core.Expense{}, false
}

func indexOfExpense(expenses []core.Expense, id string) int {
	return slices.IndexFunc(expenses, func(e core.Expense) bool { return e.ID == id })
}
