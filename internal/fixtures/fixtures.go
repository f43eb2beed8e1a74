// Package fixtures holds the demo profile and the seed data every login
// starts from. Each call returns fresh values so callers may mutate them.
package fixtures

import (
	"time"

	"fintrack/internal/core"
)

// DemoUserID is the id of the demo profile.
const DemoUserID = "1"

// DemoUser is the profile used by a plain login.
func DemoUser() core.User {
	return core.User{
		ID:          DemoUserID,
		Name:        "Alex Johnson",
		Email:       "alex.johnson@example.com",
		Income:      core.Rupees(375000),
		Goals:       []string{"Emergency Fund", "Vacation", "Investment Portfolio"},
		RiskProfile: core.RiskMedium,
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Expenses returns the seed expenses owned by userID.
func Expenses(userID string) []core.Expense {
	return []core.Expense{
		{ID: "1", UserID: userID, Amount: core.Rupees(9000), Category: core.CategoryFood, Description: "Groceries", Date: core.NewDate(2024, 12, 1)},
		{ID: "2", UserID: userID, Amount: core.Rupees(63750), Category: core.CategoryBills, Description: "Rent", Date: core.NewDate(2024, 12, 1), Recurring: true},
		{ID: "3", UserID: userID, Amount: core.Rupees(3375), Category: core.CategoryEntertainment, Description: "Movie tickets", Date: core.NewDate(2024, 12, 10)},
		{ID: "4", UserID: userID, Amount: core.Rupees(15000), Category: core.CategoryShopping, Description: "Clothing", Date: core.NewDate(2024, 12, 12)},
	}
}

// Budgets returns the seed budgets owned by userID. The Spent values are
// stale on purpose; analytics always recomputes spend from expenses.
func Budgets(userID string) []core.Budget {
	start := core.NewDate(2024, 12, 1)
	return []core.Budget{
		{ID: "1", UserID: userID, Category: core.CategoryFood, Ceiling: core.Rupees(37500), Spent: core.Rupees(24000), Period: core.Monthly, StartDate: start},
		{ID: "2", UserID: userID, Category: core.CategoryEntertainment, Ceiling: core.Rupees(15000), Spent: core.Rupees(10875), Period: core.Monthly, StartDate: start},
	}
}

// Investments is the static instrument catalog.
func Investments() []core.Investment {
	return []core.Investment{
		{ID: "1", Name: "S&P 500 Index Fund", Type: core.InstrumentETF, RiskLevel: core.RiskMedium, ExpectedReturn: 8.5, MinInvestment: core.Rupees(100)},
		{ID: "2", Name: "Treasury Bonds", Type: core.InstrumentBond, RiskLevel: core.RiskLow, ExpectedReturn: 3.2, MinInvestment: core.Rupees(3750)},
		{ID: "3", Name: "Technology Growth Fund", Type: core.InstrumentMutualFund, RiskLevel: core.RiskHigh, ExpectedReturn: 12.1, MinInvestment: core.Rupees(37500)},
	}
}
