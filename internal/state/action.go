package state

import "fintrack/internal/core"

// Kind names an action on the wire and in the journal.
type Kind string

const (
	KindSetUser        Kind = "set_user"
	KindLogout         Kind = "logout"
	KindAddExpense     Kind = "add_expense"
	KindUpdateExpense  Kind = "update_expense"
	KindDeleteExpense  Kind = "delete_expense"
	KindSetBudgets     Kind = "set_budgets"
	KindAddChatMessage Kind = "add_chat_message"
	KindSetInvestments Kind = "set_investments"
)

// Action is the closed set of state transitions. Only types in this package
// implement it.
type Action interface {
	Kind() Kind
	sealed()
}

type (
	// SetUser replaces the user and marks the session authenticated.
	SetUser struct {
		User core.User `json:"user"`
	}

	// Logout resets the store to its initial form.
	Logout struct{}

	AddExpense struct {
		Expense core.Expense `json:"expense"`
	}

	// UpdateExpense replaces the expense with the same ID. An unknown ID is
	// a no-op.
	UpdateExpense struct {
		Expense core.Expense `json:"expense"`
	}

	// DeleteExpense removes the expense with ID. An unknown ID is a no-op.
	DeleteExpense struct {
		ID string `json:"id"`
	}

	SetBudgets struct {
		Budgets []core.Budget `json:"budgets"`
	}

	AddChatMessage struct {
		Message core.ChatMessage `json:"message"`
	}

	SetInvestments struct {
		Investments []core.Investment `json:"investments"`
	}
)

func (SetUser) Kind() Kind        { return KindSetUser }
func (Logout) Kind() Kind         { return KindLogout }
func (AddExpense) Kind() Kind     { return KindAddExpense }
func (UpdateExpense) Kind() Kind  { return KindUpdateExpense }
func (DeleteExpense) Kind() Kind  { return KindDeleteExpense }
func (SetBudgets) Kind() Kind     { return KindSetBudgets }
func (AddChatMessage) Kind() Kind { return KindAddChatMessage }
func (SetInvestments) Kind() Kind { return KindSetInvestments }

func (SetUser) sealed()        {}
func (Logout) sealed()         {}
func (AddExpense) sealed()     {}
func (UpdateExpense) sealed()  {}
func (DeleteExpense) sealed()  {}
func (SetBudgets) sealed()     {}
func (AddChatMessage) sealed() {}
func (SetInvestments) sealed() {}
