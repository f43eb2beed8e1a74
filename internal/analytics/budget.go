package analytics

import "fintrack/internal/core"

// Status classifies spend against a budget ceiling.
type Status string

const (
	StatusGood    Status = "good"
	StatusWarning Status = "warning"
	StatusOver    Status = "over"
)

// WarningThreshold is the spend percentage above which a budget warns.
const WarningThreshold = 80.0

// Severity orders statuses so that transitions can be compared.
func (s Status) Severity() int {
	switch s {
	case StatusWarning:
		return 1
	case StatusOver:
		return 2
	default:
		return 0
	}
}

// BudgetAnalysis is the live view of one budget.
type BudgetAnalysis struct {
	Budget core.Budget `json:"budget"`
	Spent  core.Money  `json:"spent"`
	// Percentage is clamped to 100 for display.
	Percentage float64 `json:"percentage"`
	// Ratio is the unclamped spend percentage that decides Status.
	Ratio     float64    `json:"ratio"`
	Remaining core.Money `json:"remaining"`
	Status    Status     `json:"status"`
}

// AnalyzeBudget computes the analysis of b given the live spend in its
// category.
//
// A zero ceiling cannot be divided by: any spend counts as over budget at
// 100%, and no spend counts as good at 0%.
func AnalyzeBudget(b core.Budget, spent core.Money) BudgetAnalysis {
	a := BudgetAnalysis{
		Budget:    b,
		Spent:     spent,
		Remaining: b.Ceiling.Sub(spent),
	}
	if b.Ceiling.Paise <= 0 {
		if spent.Paise > 0 {
			a.Ratio, a.Percentage, a.Status = 100, 100, StatusOver
		} else {
			a.Status = StatusGood
		}
		return a
	}

	a.Ratio = float64(spent.Paise) / float64(b.Ceiling.Paise) * 100
	a.Percentage = min(a.Ratio, 100)
	a.Status = classify(a.Ratio)
	return a
}

func classify(ratio float64) Status {
	switch {
	case ratio > 100:
		return StatusOver
	case ratio > WarningThreshold:
		return StatusWarning
	default:
		return StatusGood
	}
}

// AnalyzeBudgets analyses each budget against the sum of expenses in its
// category. The budget's own Spent field is ignored.
func AnalyzeBudgets(budgets []core.Budget, expenses []core.Expense) []BudgetAnalysis {
	sums := categorySums(expenses)
	out := make([]BudgetAnalysis, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, AnalyzeBudget(b, sums[b.Category]))
	}
	return out
}

// BudgetOverview summarises all budgets.
type BudgetOverview struct {
	TotalBudget core.Money       `json:"total_budget"`
	TotalSpent  core.Money       `json:"total_spent"`
	OnTrack     int              `json:"on_track"`
	Count       int              `json:"count"`
	Budgets     []BudgetAnalysis `json:"budgets"`
}

// OverviewBudgets aggregates AnalyzeBudgets. TotalSpent covers every
// expense, budgeted category or not.
func OverviewBudgets(budgets []core.Budget, expenses []core.Expense) BudgetOverview {
	analyses := AnalyzeBudgets(budgets, expenses)
	o := BudgetOverview{
		TotalSpent: TotalExpenses(expenses),
		Count:      len(analyses),
		Budgets:    analyses,
	}
	for _, a := range analyses {
		o.TotalBudget = o.TotalBudget.Add(a.Budget.Ceiling)
		if a.Status == StatusGood {
			o.OnTrack++
		}
	}
	return o
}

// TotalBudget sums budget ceilings.
func TotalBudget(budgets []core.Budget) core.Money {
	var total core.Money
	for _, b := range budgets {
		total = total.Add(b.Ceiling)
	}
	return total
}

// StatusChange records a budget whose status got worse.
type StatusChange struct {
	Budget core.Budget `json:"budget"`
	From   Status      `json:"from"`
	To     Status      `json:"to"`
	Spent  core.Money  `json:"spent"`
	Ratio  float64     `json:"ratio"`
}

// WorsenedBudgets compares two analyses of the same budgets, matched by ID,
// and returns those whose status became more severe. Budgets that are new in
// after are compared against good.
func WorsenedBudgets(before, after []BudgetAnalysis) []StatusChange {
	prev := make(map[string]Status, len(before))
	for _, a := range before {
		prev[a.Budget.ID] = a.Status
	}
	var out []StatusChange
	for _, a := range after {
		from, ok := prev[a.Budget.ID]
		if !ok {
			from = StatusGood
		}
		if a.Status.Severity() > from.Severity() {
			out = append(out, StatusChange{
				Budget: a.Budget,
				From:   from,
				To:     a.Status,
				Spent:  a.Spent,
				Ratio:  a.Ratio,
			})
		}
	}
	return out
}
