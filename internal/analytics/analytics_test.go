package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func expense(id string, c core.Category, rupees int64, date core.Date) core.Expense {
	return core.Expense{ID: id, Amount: core.Rupees(rupees), Category: c, Description: id, Date: date}
}

func TestCategoryTotals(t *testing.T) {
	d := core.NewDate(2024, 12, 1)
	expenses := []core.Expense{
		expense("1", core.CategoryFood, 100, d),
		expense("2", core.CategoryFood, 50, d),
		expense("3", core.CategoryBills, 200, d),
	}

	ordered := CategoryTotals(expenses)
	assert.Equal(t, []core.CategoryAmount{
		{Category: core.CategoryFood, Amount: core.Rupees(150)},
		{Category: core.CategoryBills, Amount: core.Rupees(200)},
	}, ordered)
}

func TestCategoryTotalsEmpty(t *testing.T) {
	assert.Empty(t, CategoryTotals(nil))
	assert.Equal(t, core.Money{}, TotalExpenses(nil))
}

func TestBudgetStatus(t *testing.T) {
	budget := core.Budget{ID: "b", Category: core.CategoryFood, Ceiling: core.Rupees(100)}
	cases := []struct {
		spent      int64
		status     Status
		percentage float64
	}{
		{50, StatusGood, 50},
		{80, StatusGood, 80},
		{81, StatusWarning, 81},
		{100, StatusWarning, 100},
		{101, StatusOver, 100},
		{250, StatusOver, 100},
	}
	for _, tc := range cases {
		a := AnalyzeBudget(budget, core.Rupees(tc.spent))
		assert.Equal(t, tc.status, a.Status, "spent %d", tc.spent)
		assert.InDelta(t, tc.percentage, a.Percentage, 1e-9, "spent %d", tc.spent)
		assert.Equal(t, core.Rupees(100-tc.spent), a.Remaining)
	}
}

func TestBudgetRatioStaysUnclamped(t *testing.T) {
	a := AnalyzeBudget(core.Budget{Ceiling: core.Rupees(100)}, core.Rupees(150))
	assert.InDelta(t, 150, a.Ratio, 1e-9)
	assert.InDelta(t, 100, a.Percentage, 1e-9)
}

func TestZeroCeilingPolicy(t *testing.T) {
	zero := core.Budget{ID: "z", Category: core.CategoryTravel}

	spent := AnalyzeBudget(zero, core.Rupees(1))
	assert.Equal(t, StatusOver, spent.Status)
	assert.InDelta(t, 100, spent.Percentage, 1e-9)
	assert.Equal(t, core.Rupees(-1), spent.Remaining)

	idle := AnalyzeBudget(zero, core.Money{})
	assert.Equal(t, StatusGood, idle.Status)
	assert.Zero(t, idle.Percentage)
}

func TestAnalyzeBudgetsIgnoresStoredSpent(t *testing.T) {
	d := core.NewDate(2024, 12, 1)
	budgets := []core.Budget{
		{ID: "food", Category: core.CategoryFood, Ceiling: core.Rupees(37500), Spent: core.Rupees(24000)},
		{ID: "fun", Category: core.CategoryEntertainment, Ceiling: core.Rupees(15000), Spent: core.Rupees(10875)},
	}
	expenses := []core.Expense{
		expense("1", core.CategoryFood, 9000, d),
		expense("2", core.CategoryBills, 63750, d),
		expense("3", core.CategoryEntertainment, 3375, d),
	}

	got := AnalyzeBudgets(budgets, expenses)
	require.Len(t, got, 2)
	assert.Equal(t, core.Rupees(9000), got[0].Spent)
	assert.Equal(t, core.Rupees(3375), got[1].Spent)
	assert.Equal(t, StatusGood, got[0].Status)

	o := OverviewBudgets(budgets, expenses)
	assert.Equal(t, core.Rupees(52500), o.TotalBudget)
	assert.Equal(t, core.Rupees(76125), o.TotalSpent)
	assert.Equal(t, 2, o.OnTrack)
	assert.Equal(t, 2, o.Count)
}

func TestSavingsRate(t *testing.T) {
	rate, ok := SavingsRate(core.Rupees(1000), core.Rupees(300))
	require.True(t, ok)
	assert.InDelta(t, 70.0, rate, 1e-9)
	assert.Equal(t, "70.0%", core.FormatPercent(rate))

	rate, ok = SavingsRate(core.Rupees(1000), core.Rupees(1500))
	require.True(t, ok)
	assert.InDelta(t, -50.0, rate, 1e-9)
}

func TestSavingsRateZeroIncomeIsNotApplicable(t *testing.T) {
	_, ok := SavingsRate(core.Money{}, core.Rupees(300))
	assert.False(t, ok)
}

func TestRecommendBudgetUsesUnifiedCategories(t *testing.T) {
	income := core.Rupees(100000)
	assert.Equal(t, core.Rupees(15000), RecommendBudget(income, core.CategoryFood))
	assert.Equal(t, core.Rupees(35000), RecommendBudget(income, core.CategoryBills))
	assert.Equal(t, core.Rupees(15000), RecommendBudget(income, core.CategoryTravel))
	assert.Equal(t, core.Rupees(5000), RecommendBudget(income, core.CategoryHealthcare))

	for _, c := range core.Categories {
		_, ok := budgetShares[c]
		assert.True(t, ok, "category %s has no share", c)
	}
}

func TestRecommendBudgetFallback(t *testing.T) {
	assert.Equal(t, core.Rupees(10000), RecommendBudget(core.Rupees(100000), core.Category("Pets")))
}

func TestRecommendations(t *testing.T) {
	d := core.NewDate(2024, 12, 1)
	recs := Recommendations(core.Rupees(100000), []core.Expense{
		expense("1", core.CategoryFood, 20000, d),
		expense("2", core.CategoryBills, 1000, d),
	})
	require.Len(t, recs, len(RecommendedCategories))

	food := recs[0]
	assert.Equal(t, core.CategoryFood, food.Category)
	assert.True(t, food.Over)
	assert.Equal(t, core.Rupees(5000), food.Difference)

	bills := recs[1]
	assert.False(t, bills.Over)
	assert.Equal(t, core.Rupees(34000), bills.Difference)
}

func TestTopCategoriesAndAverage(t *testing.T) {
	d := core.NewDate(2024, 12, 1)
	expenses := []core.Expense{
		expense("1", core.CategoryFood, 9000, d),
		expense("2", core.CategoryBills, 63750, d),
		expense("3", core.CategoryEntertainment, 3375, d),
		expense("4", core.CategoryShopping, 15000, d),
	}

	top := TopCategories(expenses, 3)
	require.Len(t, top, 3)
	assert.Equal(t, core.CategoryBills, top[0].Category)
	assert.Equal(t, core.CategoryShopping, top[1].Category)
	assert.Equal(t, core.CategoryFood, top[2].Category)

	best, ok := TopCategory(expenses)
	assert.True(t, ok)
	assert.Equal(t, core.Rupees(63750), best.Amount)
	_, ok = TopCategory(nil)
	assert.False(t, ok)

	assert.Equal(t, core.Money{Paise: 2278125}, AverageExpense(expenses))
	assert.Equal(t, core.Money{}, AverageExpense(nil))
}

func TestTopCategoriesTiesKeepCanonicalOrder(t *testing.T) {
	d := core.NewDate(2024, 12, 1)
	top := TopCategories([]core.Expense{
		expense("1", core.CategoryOthers, 10, d),
		expense("2", core.CategoryFood, 10, d),
	}, 5)
	assert.Equal(t, core.CategoryFood, top[0].Category)
	assert.Equal(t, core.CategoryOthers, top[1].Category)
}

func TestMonthlyTotalsChronological(t *testing.T) {
	expenses := []core.Expense{
		expense("1", core.CategoryFood, 10, core.NewDate(2025, 1, 5)),
		expense("2", core.CategoryFood, 20, core.NewDate(2024, 12, 1)),
		expense("3", core.CategoryBills, 30, core.NewDate(2025, 1, 20)),
	}
	assert.Equal(t, []core.MonthTotal{
		{Key: "2024-12", Year: 2024, Month: 12, Amount: core.Rupees(20)},
		{Key: "2025-01", Year: 2025, Month: 1, Amount: core.Rupees(40)},
	}, MonthlyTotals(expenses))
}

func TestFilterByCategory(t *testing.T) {
	d := core.NewDate(2024, 12, 1)
	expenses := []core.Expense{
		expense("1", core.CategoryFood, 10, d),
		expense("2", core.CategoryBills, 20, d),
	}
	assert.Len(t, FilterByCategory(expenses, ""), 2)
	only := FilterByCategory(expenses, core.CategoryBills)
	require.Len(t, only, 1)
	assert.Equal(t, "2", only[0].ID)
}

func TestRecentExpensesDoesNotReorderInput(t *testing.T) {
	expenses := []core.Expense{
		expense("old", core.CategoryFood, 10, core.NewDate(2024, 1, 1)),
		expense("new", core.CategoryFood, 10, core.NewDate(2024, 12, 1)),
		expense("mid", core.CategoryFood, 10, core.NewDate(2024, 6, 1)),
	}
	recent := RecentExpenses(expenses, 2)

	require.Len(t, recent, 2)
	assert.Equal(t, "new", recent[0].ID)
	assert.Equal(t, "mid", recent[1].ID)
	assert.Equal(t, "old", expenses[0].ID)
}

func TestWorsenedBudgets(t *testing.T) {
	b := core.Budget{ID: "b", Category: core.CategoryFood, Ceiling: core.Rupees(100)}
	before := []BudgetAnalysis{AnalyzeBudget(b, core.Rupees(50))}

	changes := WorsenedBudgets(before, []BudgetAnalysis{AnalyzeBudget(b, core.Rupees(90))})
	require.Len(t, changes, 1)
	assert.Equal(t, StatusGood, changes[0].From)
	assert.Equal(t, StatusWarning, changes[0].To)

	assert.Empty(t, WorsenedBudgets(
		[]BudgetAnalysis{AnalyzeBudget(b, core.Rupees(120))},
		[]BudgetAnalysis{AnalyzeBudget(b, core.Rupees(60))},
	))
}

func TestBuildDashboard(t *testing.T) {
	user := &core.User{Name: "Asha", Income: core.Rupees(1000)}
	d := BuildDashboard(user,
		[]core.Expense{expense("1", core.CategoryFood, 300, core.NewDate(2024, 12, 1))},
		[]core.Budget{{ID: "b", Category: core.CategoryFood, Ceiling: core.Rupees(500)}},
	)

	assert.Equal(t, core.Rupees(300), d.TotalExpenses)
	assert.Equal(t, core.Rupees(200), d.RemainingBudget)
	assert.True(t, d.OnTrack)
	require.NotNil(t, d.SavingsRate)
	assert.InDelta(t, 70, *d.SavingsRate, 1e-9)
	assert.True(t, d.Excellent)
	assert.Len(t, d.Recent, 1)
	assert.Equal(t, DashboardLabels{
		Income:          "₹1.0 K",
		TotalExpenses:   "₹300",
		TotalBudget:     "₹500",
		RemainingBudget: "₹200",
	}, d.Labels)

	empty := BuildDashboard(&core.User{Name: "New"}, nil, nil)
	assert.Nil(t, empty.SavingsRate)
	assert.False(t, empty.OnTrack)
}

func TestBuildReport(t *testing.T) {
	user := &core.User{Income: core.Rupees(1000)}
	r := BuildReport(user, []core.Expense{
		expense("1", core.CategoryFood, 100, core.NewDate(2024, 12, 1)),
		expense("2", core.CategoryFood, 50, core.NewDate(2024, 12, 3)),
		expense("3", core.CategoryBills, 200, core.NewDate(2025, 1, 1)),
	})

	assert.Equal(t, 3, r.Count)
	assert.Equal(t, core.Rupees(350), r.Total)
	assert.Len(t, r.Monthly, 2)
	assert.Len(t, r.ByCategory, 2)
	assert.Equal(t, core.CategoryBills, r.Top[0].Category)
	require.NotNil(t, r.SavingsRate)
	assert.InDelta(t, 65, *r.SavingsRate, 1e-9)
}
