package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/events"
	applog "fintrack/internal/log"
	"fintrack/internal/session"
	"fintrack/internal/state"
)

// ExpenseInput is what the expense form submits. A zero Date means today.
type ExpenseInput struct {
	Amount      core.Money `json:"amount"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Date        core.Date  `json:"date"`
	Recurring   bool       `json:"recurring"`
}

// ExpenseService applies expense commands to a session and publishes the
// resulting domain events.
type ExpenseService struct {
	notifier
	now func() time.Time
}

// NewExpenseService creates the service. publisher may be nil, in which case
// events are skipped.
func NewExpenseService(publisher events.Publisher, logger *applog.Logger) *ExpenseService {
	if logger == nil {
		logger = discardLogger(applog.ComponentExpense)
	}
	return &ExpenseService{
		notifier: notifier{publisher: publisher, logger: logger},
		now:      time.Now,
	}
}

func (s *ExpenseService) build(in ExpenseInput, id, userID string) (core.Expense, error) {
	category, err := core.ParseCategory(in.Category)
	if err != nil {
		return core.Expense{}, invalid(err)
	}
	date := in.Date
	if date.IsZero() {
		date = core.DateOf(s.now())
	}
	e := core.Expense{
		ID:          id,
		UserID:      userID,
		Amount:      in.Amount,
		Category:    category,
		Description: strings.TrimSpace(in.Description),
		Date:        date,
		Recurring:   in.Recurring,
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, invalid(err)
	}
	return e, nil
}

// List returns the session's expenses in insertion order, optionally
// restricted to one category.
func (s *ExpenseService) List(sess *session.Session, category string) ([]core.Expense, error) {
	st, err := authenticated(sess)
	if err != nil {
		return nil, err
	}
	var c core.Category
	if strings.TrimSpace(category) != "" {
		if c, err = core.ParseCategory(category); err != nil {
			return nil, invalid(err)
		}
	}
	return analytics.FilterByCategory(st.Expenses, c), nil
}

// Add records a new expense with a fresh id.
func (s *ExpenseService) Add(ctx context.Context, sess *session.Session, in ExpenseInput) (core.Expense, error) {
	st, err := authenticated(sess)
	if err != nil {
		return core.Expense{}, err
	}
	e, err := s.build(in, uuid.NewString(), st.User.ID)
	if err != nil {
		return core.Expense{}, err
	}

	change, err := dispatch(sess, state.AddExpense{Expense: e})
	if err != nil {
		return core.Expense{}, err
	}
	s.logger.InfoContext(ctx, "Expense added", applog.NewFields().
		WithOperation(applog.OpCreate).
		WithExpense(e.ID, string(e.Category), e.Amount.Paise).
		With(applog.FieldSessionID, sess.ID).
		ToSlice()...)

	s.publish(ctx, sess.ID, e.UserID, events.TypeExpenseAdded, events.ExpensePayload{Expense: e})
	s.alertWorsened(ctx, sess.ID, change)
	return e, nil
}

// Update replaces the expense with id. The owner is kept.
func (s *ExpenseService) Update(ctx context.Context, sess *session.Session, id string, in ExpenseInput) (core.Expense, error) {
	st, err := authenticated(sess)
	if err != nil {
		return core.Expense{}, err
	}
	existing, ok := st.Expense(id)
	if !ok {
		return core.Expense{}, ErrExpenseNotFound
	}
	e, err := s.build(in, id, existing.UserID)
	if err != nil {
		return core.Expense{}, err
	}

	change, err := dispatch(sess, state.UpdateExpense{Expense: e})
	if err != nil {
		return core.Expense{}, err
	}
	// A concurrent delete between the lookup and the dispatch makes the
	// update a no-op.
	if _, ok := change.Next.Expense(id); !ok {
		return core.Expense{}, ErrExpenseNotFound
	}
	s.logger.InfoContext(ctx, "Expense updated", applog.NewFields().
		WithOperation(applog.OpUpdate).
		WithExpense(e.ID, string(e.Category), e.Amount.Paise).
		With(applog.FieldSessionID, sess.ID).
		ToSlice()...)

	s.publish(ctx, sess.ID, e.UserID, events.TypeExpenseUpdated, events.ExpensePayload{Expense: e})
	s.alertWorsened(ctx, sess.ID, change)
	return e, nil
}

// Delete removes the expense with id.
func (s *ExpenseService) Delete(ctx context.Context, sess *session.Session, id string) error {
	st, err := authenticated(sess)
	if err != nil {
		return err
	}
	existing, ok := st.Expense(id)
	if !ok {
		return ErrExpenseNotFound
	}

	change, err := dispatch(sess, state.DeleteExpense{ID: id})
	if err != nil {
		return err
	}
	if _, ok := change.Prev.Expense(id); !ok {
		return ErrExpenseNotFound
	}
	s.logger.InfoContext(ctx, "Expense deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldSessionID, sess.ID,
		applog.FieldExpenseID, id)

	s.publish(ctx, sess.ID, existing.UserID, events.TypeExpenseDeleted, events.ExpenseDeletedPayload{ExpenseID: id})
	return nil
}
