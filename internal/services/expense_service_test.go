package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/state"
)

func newExpenseService(pub events.Publisher) *ExpenseService {
	s := NewExpenseService(pub, quietLogger())
	s.now = fixedClock()
	return s
}

func TestExpenseServiceAdd(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newExpenseService(pub)
	sess := demoSession(t)

	e, err := svc.Add(context.Background(), sess, ExpenseInput{
		Amount:      core.Rupees(450),
		Category:    "food",
		Description: "  Lunch ",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, core.CategoryFood, e.Category)
	assert.Equal(t, "Lunch", e.Description)
	assert.Equal(t, core.NewDate(2025, 1, 15), e.Date)
	assert.Equal(t, "1", e.UserID)

	st := sess.Store.State()
	require.Len(t, st.Expenses, 5)
	assert.Equal(t, e, st.Expenses[4])

	assert.Equal(t, []events.Type{events.TypeExpenseAdded}, pub.types())
	payload, err := events.DecodePayload[events.ExpensePayload](pub.last())
	require.NoError(t, err)
	assert.Equal(t, e.ID, payload.Expense.ID)
}

func TestExpenseServiceFoldsTransportation(t *testing.T) {
	svc := newExpenseService(nil)
	e, err := svc.Add(context.Background(), demoSession(t), ExpenseInput{
		Amount:      core.Rupees(120),
		Category:    "Transportation",
		Description: "Metro card",
		Date:        core.NewDate(2024, 12, 20),
	})
	require.NoError(t, err)
	assert.Equal(t, core.CategoryTravel, e.Category)
}

func TestExpenseServiceRejectsInvalidInput(t *testing.T) {
	valid := ExpenseInput{Amount: core.Rupees(10), Category: "Food", Description: "Tea"}
	tests := []struct {
		name   string
		mutate func(*ExpenseInput)
		want   error
	}{
		{"zero amount", func(in *ExpenseInput) { in.Amount = core.Money{} }, core.ErrInvalidAmount},
		{"negative amount", func(in *ExpenseInput) { in.Amount = core.Rupees(-5) }, core.ErrInvalidAmount},
		{"unknown category", func(in *ExpenseInput) { in.Category = "Pets" }, core.ErrInvalidCategory},
		{"blank description", func(in *ExpenseInput) { in.Description = "   " }, core.ErrEmptyDescription},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &recordingPublisher{}
			svc := newExpenseService(pub)
			sess := demoSession(t)
			before := sess.Store.Version()

			in := valid
			tt.mutate(&in)
			_, err := svc.Add(context.Background(), sess, in)

			require.ErrorIs(t, err, ErrInvalidInput)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, sess.Store.Version())
			assert.Empty(t, pub.types())
		})
	}
}

func TestExpenseServiceBudgetAlert(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newExpenseService(pub)
	sess := demoSession(t)

	// Food is at 9000 of 37500. 25000 more puts it at 90.7%.
	_, err := svc.Add(context.Background(), sess, ExpenseInput{
		Amount: core.Rupees(25000), Category: "Food", Description: "Party catering",
	})
	require.NoError(t, err)

	require.Equal(t, []events.Type{events.TypeExpenseAdded, events.TypeBudgetAlert}, pub.types())
	alert, err := events.DecodePayload[events.BudgetAlertPayload](pub.last())
	require.NoError(t, err)
	assert.Equal(t, "1", alert.BudgetID)
	assert.Equal(t, "good", alert.From)
	assert.Equal(t, "warning", alert.To)
	assert.Equal(t, core.Rupees(34000), alert.Spent)

	// Staying in warning does not alert again.
	_, err = svc.Add(context.Background(), sess, ExpenseInput{
		Amount: core.Rupees(100), Category: "Food", Description: "Snacks",
	})
	require.NoError(t, err)
	assert.Len(t, pub.types(), 3)
}

func TestExpenseServicePublishFailureDoesNotFailAdd(t *testing.T) {
	svc := newExpenseService(&recordingPublisher{err: errors.New("broker down")})
	sess := demoSession(t)

	_, err := svc.Add(context.Background(), sess, ExpenseInput{
		Amount: core.Rupees(10), Category: "Food", Description: "Tea",
	})
	require.NoError(t, err)
	assert.Len(t, sess.Store.State().Expenses, 5)
}

func TestExpenseServiceUpdate(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newExpenseService(pub)
	sess := demoSession(t)

	e, err := svc.Update(context.Background(), sess, "1", ExpenseInput{
		Amount: core.Rupees(9500), Category: "Food", Description: "Groceries and fruit",
		Date: core.NewDate(2024, 12, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, "1", e.ID)

	got, ok := sess.Store.State().Expense("1")
	require.True(t, ok)
	assert.Equal(t, core.Rupees(9500), got.Amount)
	assert.Equal(t, []events.Type{events.TypeExpenseUpdated}, pub.types())

	_, err = svc.Update(context.Background(), sess, "missing", ExpenseInput{
		Amount: core.Rupees(1), Category: "Food", Description: "x",
	})
	assert.ErrorIs(t, err, ErrExpenseNotFound)
}

func TestExpenseServiceDelete(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newExpenseService(pub)
	sess := demoSession(t)

	require.NoError(t, svc.Delete(context.Background(), sess, "3"))
	_, ok := sess.Store.State().Expense("3")
	assert.False(t, ok)
	assert.Equal(t, []events.Type{events.TypeExpenseDeleted}, pub.types())

	version := sess.Store.Version()
	assert.ErrorIs(t, svc.Delete(context.Background(), sess, "3"), ErrExpenseNotFound)
	assert.Equal(t, version, sess.Store.Version())
}

func TestExpenseServiceList(t *testing.T) {
	svc := newExpenseService(nil)
	sess := demoSession(t)

	all, err := svc.List(sess, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	bills, err := svc.List(sess, "bills")
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, "Rent", bills[0].Description)

	_, err = svc.List(sess, "Pets")
	assert.ErrorIs(t, err, core.ErrInvalidCategory)
}

func TestExpenseServiceAfterLogout(t *testing.T) {
	svc := newExpenseService(nil)
	sess := demoSession(t)
	sess.Store.Dispatch(state.Logout{})

	_, err := svc.Add(context.Background(), sess, ExpenseInput{
		Amount: core.Rupees(10), Category: "Food", Description: "Tea",
	})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = svc.List(sess, "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
