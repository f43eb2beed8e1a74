package analytics

import (
	"log/slog"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// ExcellentSavingsRate is the savings percentage the advisor aims for.
const ExcellentSavingsRate = 20.0

// SavingsRate returns the percentage of income not consumed by total. It
// reports ok=false when income is zero, where the rate is not applicable.
func SavingsRate(income, total core.Money) (rate float64, ok bool) {
	if income.Paise == 0 {
		return 0, false
	}
	return float64(income.Paise-total.Paise) / float64(income.Paise) * 100, true
}

// budgetShares is the recommended fraction of monthly income per category.
var budgetShares = map[core.Category]float64{
	core.CategoryFood:          0.15,
	core.CategoryBills:         0.35,
	core.CategoryTravel:        0.15,
	core.CategoryEntertainment: 0.05,
	core.CategoryShopping:      0.10,
	core.CategoryHealthcare:    0.05,
	core.CategoryOthers:        0.15,
}

// DefaultBudgetShare applies to categories missing from the table.
const DefaultBudgetShare = 0.10

// RecommendedCategories are the categories the budget planner suggests
// ceilings for, in display order.
var RecommendedCategories = []core.Category{
	core.CategoryFood,
	core.CategoryBills,
	core.CategoryTravel,
	core.CategoryEntertainment,
	core.CategoryShopping,
	core.CategoryHealthcare,
}

// BudgetShare returns the recommended income share for c. A category outside
// the table falls back to DefaultBudgetShare and is logged, so a vocabulary
// drift shows up instead of being silently absorbed.
func BudgetShare(c core.Category) float64 {
	if share, ok := budgetShares[c]; ok {
		return share
	}
	slog.Warn("No budget share for category, using default",
		applog.FieldComponent, applog.ComponentAnalytics,
		applog.FieldCategory, string(c),
		"default_share", DefaultBudgetShare)
	return DefaultBudgetShare
}

// RecommendBudget is income times the recommended share for c.
func RecommendBudget(income core.Money, c core.Category) core.Money {
	return income.Scale(BudgetShare(c))
}

// Recommendation compares a suggested ceiling with actual spend.
type Recommendation struct {
	Category    core.Category `json:"category"`
	Recommended core.Money    `json:"recommended"`
	Current     core.Money    `json:"current"`
	Over        bool          `json:"over"`
	// Difference is how far Current is from Recommended, always positive.
	Difference core.Money `json:"difference"`
}

// Recommendations builds one Recommendation per RecommendedCategories entry.
func Recommendations(income core.Money, expenses []core.Expense) []Recommendation {
	sums := categorySums(expenses)
	out := make([]Recommendation, 0, len(RecommendedCategories))
	for _, c := range RecommendedCategories {
		rec := RecommendBudget(income, c)
		cur := sums[c]
		out = append(out, Recommendation{
			Category:    c,
			Recommended: rec,
			Current:     cur,
			Over:        cur.Paise > rec.Paise,
			Difference:  cur.Sub(rec).Abs(),
		})
	}
	return out
}
