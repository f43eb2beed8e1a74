package analytics

import "fintrack/internal/core"

// RecentLimit is how many expenses the dashboard lists.
const RecentLimit = 5

// TopLimit is how many categories the report ranks.
const TopLimit = 3

// Dashboard is the landing-page summary.
type Dashboard struct {
	UserName        string          `json:"user_name"`
	Income          core.Money      `json:"income"`
	TotalExpenses   core.Money      `json:"total_expenses"`
	TotalBudget     core.Money      `json:"total_budget"`
	RemainingBudget core.Money      `json:"remaining_budget"`
	OnTrack         bool            `json:"on_track"`
	SavingsRate     *float64        `json:"savings_rate"` // nil when income is zero
	Excellent       bool            `json:"excellent"`
	Recent          []core.Expense  `json:"recent"`
	Labels          DashboardLabels `json:"labels"`
}

// DashboardLabels are the headline amounts in compact form, e.g. "₹3.8 L".
type DashboardLabels struct {
	Income          string `json:"income"`
	TotalExpenses   string `json:"total_expenses"`
	TotalBudget     string `json:"total_budget"`
	RemainingBudget string `json:"remaining_budget"`
}

// BuildDashboard derives the dashboard. user may be nil, in which case income
// is zero and the savings rate is not applicable.
func BuildDashboard(user *core.User, expenses []core.Expense, budgets []core.Budget) Dashboard {
	d := Dashboard{
		TotalExpenses: TotalExpenses(expenses),
		TotalBudget:   TotalBudget(budgets),
		Recent:        RecentExpenses(expenses, RecentLimit),
	}
	if user != nil {
		d.UserName = user.Name
		d.Income = user.Income
	}
	d.RemainingBudget = d.TotalBudget.Sub(d.TotalExpenses)
	d.OnTrack = d.RemainingBudget.Paise > 0
	d.Labels = DashboardLabels{
		Income:          core.FormatCompact(d.Income),
		TotalExpenses:   core.FormatCompact(d.TotalExpenses),
		TotalBudget:     core.FormatCompact(d.TotalBudget),
		RemainingBudget: core.FormatCompact(d.RemainingBudget),
	}
	if rate, ok := SavingsRate(d.Income, d.TotalExpenses); ok {
		d.SavingsRate = &rate
		d.Excellent = rate >= ExcellentSavingsRate
	}
	return d
}

// Report is the reports-page aggregate.
type Report struct {
	Total       core.Money            `json:"total"`
	Count       int                   `json:"count"`
	Average     core.Money            `json:"average"`
	SavingsRate *float64              `json:"savings_rate"`
	Monthly     []core.MonthTotal     `json:"monthly"`
	ByCategory  []core.CategoryAmount `json:"by_category"`
	Top         []core.CategoryAmount `json:"top"`
}

func BuildReport(user *core.User, expenses []core.Expense) Report {
	r := Report{
		Total:      TotalExpenses(expenses),
		Count:      len(expenses),
		Average:    AverageExpense(expenses),
		Monthly:    MonthlyTotals(expenses),
		ByCategory: CategoryTotals(expenses),
		Top:        TopCategories(expenses, TopLimit),
	}
	if user != nil {
		if rate, ok := SavingsRate(user.Income, r.Total); ok {
			r.SavingsRate = &rate
		}
	}
	return r
}
