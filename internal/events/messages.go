package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// Type names a domain event. It doubles as the AMQP routing key.
type Type string

const (
	TypeExpenseAdded   Type = "expense.added"
	TypeExpenseUpdated Type = "expense.updated"
	TypeExpenseDeleted Type = "expense.deleted"
	TypeBudgetAlert    Type = "budget.alert"
)

// Types lists every event type, the set of routing keys a consumer binds.
var Types = []Type{TypeExpenseAdded, TypeExpenseUpdated, TypeExpenseDeleted, TypeBudgetAlert}

// Event is the envelope published for every domain event.
type Event struct {
	ID        string          `json:"id"`
	Type      Type            `json:"type"`
	SessionID string          `json:"session_id"`
	UserID    string          `json:"user_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// ExpensePayload carries the expense for added and updated events.
type ExpensePayload struct {
	Expense core.Expense `json:"expense"`
}

// ExpenseDeletedPayload carries the id of a removed expense.
type ExpenseDeletedPayload struct {
	ExpenseID string `json:"expense_id"`
}

// BudgetAlertPayload reports a budget whose status got worse.
type BudgetAlertPayload struct {
	BudgetID string        `json:"budget_id"`
	Category core.Category `json:"category"`
	From     string        `json:"from"`
	To       string        `json:"to"`
	Spent    core.Money    `json:"spent"`
	Ceiling  core.Money    `json:"ceiling"`
	Ratio    float64       `json:"ratio"`
}

// NewEvent wraps payload in an envelope with a fresh id and timestamp.
func NewEvent(t Type, sessionID, userID string, payload any) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		SessionID: sessionID,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Payload:   body,
	}, nil
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON parses an envelope. Unknown types are rejected so a
// consumer never acknowledges something it cannot route.
func EventFromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	for _, t := range Types {
		if e.Type == t {
			return e, nil
		}
	}
	return Event{}, fmt.Errorf("unknown event type %q", e.Type)
}

// DecodePayload unmarshals the event payload into T.
func DecodePayload[T any](e Event) (T, error) {
	var v T
	if err := json.Unmarshal(e.Payload, &v); err != nil {
		return v, fmt.Errorf("unmarshal %s payload: %w", e.Type, err)
	}
	return v, nil
}
