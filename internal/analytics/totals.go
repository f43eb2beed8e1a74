// Package analytics derives read-only views from expenses and budgets.
//
// Every function here is pure: inputs are never mutated and results are
// freshly allocated.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// TotalExpenses sums every expense amount.
func TotalExpenses(expenses []core.Expense) core.Money {
	var total core.Money
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// CategoryTotals sums expenses per category. Categories with no expenses are
// omitted. The result follows canonical category order.
func CategoryTotals(expenses []core.Expense) []core.CategoryAmount {
	sums := categorySums(expenses)
	out := make([]core.CategoryAmount, 0, len(sums))
	for _, c := range core.Categories {
		if amount, ok := sums[c]; ok {
			out = append(out, core.CategoryAmount{Category: c, Amount: amount})
		}
	}
	return out
}

func categorySums(expenses []core.Expense) map[core.Category]core.Money {
	sums := make(map[core.Category]core.Money)
	for _, e := range expenses {
		sums[e.Category] = sums[e.Category].Add(e.Amount)
	}
	return sums
}

// TopCategories returns up to n categories by descending spend. Ties keep
// canonical category order.
func TopCategories(expenses []core.Expense, n int) []core.CategoryAmount {
	totals := CategoryTotals(expenses)
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Amount.Paise > totals[j].Amount.Paise
	})
	if n >= 0 && len(totals) > n {
		totals = totals[:n]
	}
	return totals
}

// TopCategory returns the highest-spending category, if any.
func TopCategory(expenses []core.Expense) (core.CategoryAmount, bool) {
	top := TopCategories(expenses, 1)
	if len(top) == 0 {
		return core.CategoryAmount{}, false
	}
	return top[0], true
}

// AverageExpense is the mean expense amount, zero for no expenses.
func AverageExpense(expenses []core.Expense) core.Money {
	if len(expenses) == 0 {
		return core.Money{}
	}
	total := TotalExpenses(expenses)
	return core.Money{Paise: decimal.NewFromInt(total.Paise).Div(decimal.NewFromInt(int64(len(expenses)))).Round(0).IntPart()}
}

// MonthlyTotals sums expenses per calendar month in chronological order.
func MonthlyTotals(expenses []core.Expense) []core.MonthTotal {
	months := make(map[string]core.MonthTotal)
	for _, e := range expenses {
		k := e.Date.MonthKey()
		m, ok := months[k]
		if !ok {
			m = core.MonthTotal{Key: k, Year: e.Date.Year(), Month: int(e.Date.Month())}
		}
		m.Amount = m.Amount.Add(e.Amount)
		months[k] = m
	}
	out := make([]core.MonthTotal, 0, len(months))
	for _, m := range months {
		out = append(out, m)
	}
	// Keys are zero-padded, so string order is chronological.
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// FilterByCategory keeps expenses in category c. An empty c keeps all.
func FilterByCategory(expenses []core.Expense, c core.Category) []core.Expense {
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if c == "" || e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

// RecentExpenses returns up to n expenses, newest date first. Expenses on the
// same day keep their insertion order.
func RecentExpenses(expenses []core.Expense, n int) []core.Expense {
	out := make([]core.Expense, len(expenses))
	copy(out, expenses)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
