// Package services orchestrates session state changes with their side
// effects: domain events, budget alerts, caching and exports.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"fintrack/internal/analytics"
	"fintrack/internal/events"
	applog "fintrack/internal/log"
	"fintrack/internal/session"
	"fintrack/internal/state"
)

var (
	// ErrNotAuthenticated means the session has no user, e.g. after logout.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrExpenseNotFound is returned for updates and deletes of unknown ids.
	ErrExpenseNotFound = errors.New("expense not found")
	// ErrExportNotImplemented is returned for acknowledged but unsupported
	// export formats.
	ErrExportNotImplemented = errors.New("export format not implemented")
	// ErrInvalidInput wraps every validation failure so callers can map it
	// with a single errors.Is.
	ErrInvalidInput = errors.New("invalid input")
)

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// authenticated returns the session state, or ErrNotAuthenticated.
func authenticated(sess *session.Session) (state.State, error) {
	if sess == nil || sess.Store == nil {
		return state.State{}, ErrNotAuthenticated
	}
	st := sess.Store.State()
	if !state.IsAuthenticated(st) {
		return state.State{}, ErrNotAuthenticated
	}
	return st, nil
}

// dispatch applies a only while the session is still authenticated. A
// logout racing with the caller wins and the action is dropped.
func dispatch(sess *session.Session, a state.Action) (state.Change, error) {
	change, ok := sess.Store.ApplyIf(state.IsAuthenticated, a)
	if !ok {
		return state.Change{}, ErrNotAuthenticated
	}
	return change, nil
}

func discardLogger(component string) *applog.Logger {
	return applog.New(applog.Config{Output: io.Discard, Component: component})
}

// notifier publishes domain events. Publishing is best effort: failures are
// logged and never returned.
type notifier struct {
	publisher events.Publisher
	logger    *applog.Logger
}

func (n notifier) publish(ctx context.Context, sessionID, userID string, t events.Type, payload any) {
	if n.publisher == nil {
		n.logger.DebugContext(ctx, "Event publisher not available, skipping event",
			applog.FieldEventType, string(t))
		return
	}
	e, err := events.NewEvent(t, sessionID, userID, payload)
	if err != nil {
		n.logger.ErrorContext(ctx, "Failed to build event",
			applog.FieldEventType, string(t),
			applog.FieldError, err)
		return
	}
	if err := n.publisher.Publish(ctx, e); err != nil {
		n.logger.ErrorContext(ctx, "Failed to publish event",
			applog.FieldOperation, applog.OpPublish,
			applog.FieldEventType, string(t),
			applog.FieldSessionID, sessionID,
			applog.FieldError, err)
	}
}

// alertWorsened publishes a budget.alert for every budget whose status got
// worse across change.
func (n notifier) alertWorsened(ctx context.Context, sessionID string, change state.Change) int {
	before := analytics.AnalyzeBudgets(change.Prev.Budgets, change.Prev.Expenses)
	after := analytics.AnalyzeBudgets(change.Next.Budgets, change.Next.Expenses)
	worsened := analytics.WorsenedBudgets(before, after)

	userID := ""
	if change.Next.User != nil {
		userID = change.Next.User.ID
	}
	for _, w := range worsened {
		n.logger.WarnContext(ctx, "Budget status worsened",
			applog.FieldSessionID, sessionID,
			applog.FieldBudgetID, w.Budget.ID,
			applog.FieldCategory, string(w.Budget.Category),
			applog.FieldStatus, string(w.To),
			"from", string(w.From))
		n.publish(ctx, sessionID, userID, events.TypeBudgetAlert, events.BudgetAlertPayload{
			BudgetID: w.Budget.ID,
			Category: w.Budget.Category,
			From:     string(w.From),
			To:       string(w.To),
			Spent:    w.Spent,
			Ceiling:  w.Budget.Ceiling,
			Ratio:    w.Ratio,
		})
	}
	return len(worsened)
}
