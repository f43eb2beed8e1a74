package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/events"
)

func newBudgetService(pub events.Publisher) *BudgetService {
	s := NewBudgetService(pub, quietLogger())
	s.now = fixedClock()
	return s
}

func TestBudgetServiceAnalysis(t *testing.T) {
	o, err := newBudgetService(nil).Analysis(demoSession(t))
	require.NoError(t, err)

	assert.Equal(t, 2, o.Count)
	assert.Equal(t, core.Rupees(52500), o.TotalBudget)
	require.Len(t, o.Budgets, 2)
	// Live spend, not the stale seed values.
	assert.Equal(t, core.Rupees(9000), o.Budgets[0].Spent)
	assert.Equal(t, core.Rupees(3375), o.Budgets[1].Spent)
}

func TestBudgetServiceReplace(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newBudgetService(pub)
	sess := demoSession(t)

	o, err := svc.Replace(context.Background(), sess, []BudgetInput{
		{Category: "Food", Ceiling: core.Rupees(5000)},
		{ID: "travel", Category: "Travel", Ceiling: core.Money{}, Period: "weekly"},
	})
	require.NoError(t, err)

	budgets := sess.Store.State().Budgets
	require.Len(t, budgets, 2)
	assert.NotEmpty(t, budgets[0].ID)
	assert.Equal(t, core.Monthly, budgets[0].Period)
	assert.Equal(t, core.NewDate(2025, 1, 15), budgets[0].StartDate)
	assert.Equal(t, core.Weekly, budgets[1].Period)
	assert.Equal(t, "1", budgets[1].UserID)

	assert.Equal(t, analytics.StatusOver, o.Budgets[0].Status)
	assert.Equal(t, analytics.StatusGood, o.Budgets[1].Status)

	// The new Food budget is compared against good and is now over.
	assert.Equal(t, []events.Type{events.TypeBudgetAlert}, pub.types())
}

func TestBudgetServiceReplaceIsAllOrNothing(t *testing.T) {
	svc := newBudgetService(nil)
	sess := demoSession(t)
	before := sess.Store.State().Budgets

	_, err := svc.Replace(context.Background(), sess, []BudgetInput{
		{Category: "Food", Ceiling: core.Rupees(100)},
		{Category: "Food", Ceiling: core.Rupees(100), Period: "yearly"},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, core.ErrInvalidPeriod)
	assert.Equal(t, before, sess.Store.State().Budgets)

	_, err = svc.Replace(context.Background(), sess, []BudgetInput{
		{Category: "Food", Ceiling: core.Rupees(-1)},
	})
	assert.ErrorIs(t, err, core.ErrNegativeAmount)
}

func TestBudgetServiceRecommendations(t *testing.T) {
	recs, err := newBudgetService(nil).Recommendations(demoSession(t))
	require.NoError(t, err)
	require.Len(t, recs, len(analytics.RecommendedCategories))
	// 15% of 375000
	assert.Equal(t, core.Rupees(56250), recs[0].Recommended)
	assert.Equal(t, core.Rupees(9000), recs[0].Current)
}
