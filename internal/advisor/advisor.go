// Package advisor answers free-text finance questions with canned,
// data-driven tips. Rules are tried in a fixed order and the first one that
// both matches a keyword and can answer wins.
package advisor

import (
	"fmt"
	"strings"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
)

// Fallback is returned when no rule answers.
const Fallback = "I'm here to help with your financial questions! Ask me about budgeting, saving strategies, investment advice, or expense management. What specific aspect of your finances would you like to discuss?"

// Welcome is the savings reply for a user with no recorded expenses.
const Welcome = "Welcome to your AI Financial Advisor! Start by adding some expenses to get personalized advice."

// Snapshot is the data a rule may read.
type Snapshot struct {
	User     *core.User
	Expenses []core.Expense
}

func (s Snapshot) income() core.Money {
	if s.User == nil {
		return core.Money{}
	}
	return s.User.Income
}

func (s Snapshot) risk() core.RiskProfile {
	if s.User == nil || s.User.RiskProfile == "" {
		return core.RiskMedium
	}
	return s.User.RiskProfile
}

// Rule maps a keyword group to a reply template. Respond may decline with
// ok=false, in which case evaluation moves on to the next rule.
type Rule struct {
	Name     string
	Keywords []string
	Respond  func(Snapshot) (reply string, ok bool)
}

// Matches reports whether text contains any keyword, ignoring case.
func (r Rule) Matches(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range r.Keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// Rule names, in priority order.
const (
	RuleSaving     = "saving"
	RuleInvestment = "investment"
	RuleBudget     = "budget"
	RuleExpense    = "expense"
	RuleGoal       = "goal"
	RuleFallback   = "fallback"
)

// Rules returns the rules in evaluation order.
func Rules() []Rule {
	return []Rule{
		{Name: RuleSaving, Keywords: []string{"saving", "save"}, Respond: savingsAdvice},
		{Name: RuleInvestment, Keywords: []string{"invest", "investment"}, Respond: investmentAdvice},
		{Name: RuleBudget, Keywords: []string{"budget"}, Respond: budgetAdvice},
		{Name: RuleExpense, Keywords: []string{"expense", "spending"}, Respond: spendingAdvice},
		{Name: RuleGoal, Keywords: []string{"goal", "target"}, Respond: goalAdvice},
	}
}

// Answer returns the reply for text along with the name of the rule that
// produced it.
func Answer(text string, snap Snapshot) (reply, rule string) {
	for _, r := range Rules() {
		if !r.Matches(text) {
			continue
		}
		if reply, ok := r.Respond(snap); ok {
			return reply, r.Name
		}
	}
	return Fallback, RuleFallback
}

// Respond is Answer without the rule name.
func Respond(text string, user *core.User, expenses []core.Expense) string {
	reply, _ := Answer(text, Snapshot{User: user, Expenses: expenses})
	return reply
}

func savingsAdvice(s Snapshot) (string, bool) {
	if s.User == nil || len(s.Expenses) == 0 {
		return Welcome, true
	}
	total := analytics.TotalExpenses(s.Expenses)
	rate, ok := analytics.SavingsRate(s.income(), total)
	if !ok {
		return fmt.Sprintf("You've spent %s so far, but your monthly income isn't set, so I can't work out a savings rate yet. Add your income in your profile and ask me again.",
			core.FormatINR(total)), true
	}

	income := s.income()
	switch {
	case rate < 10:
		return fmt.Sprintf("Your savings rate is %s, which is below the recommended 20%%. Consider reviewing your expenses, especially in categories where you're overspending. Start with the 50/30/20 rule: 50%% needs, 30%% wants, 20%% savings. Focus on building an emergency fund of %s-%s first.",
			core.FormatPercent(rate), core.FormatINR(income.Mul(3)), core.FormatINR(income.Mul(6))), true
	case rate < analytics.ExcellentSavingsRate:
		return fmt.Sprintf("Great job! You're saving %s of your income. To reach the ideal 20%% savings rate, try reducing discretionary spending. Consider automating your savings to make it easier. Aim to save at least %s per month.",
			core.FormatPercent(rate), core.FormatINR(income.Scale(0.2))), true
	default:
		return fmt.Sprintf("Excellent! You're saving %s of your income. With your %s risk profile, consider diversifying into investments. Focus on building an emergency fund of %s-%s first.",
			core.FormatPercent(rate), s.risk(), core.FormatINR(total.Mul(3)), core.FormatINR(total.Mul(6))), true
	}
}

var investmentTemplates = map[core.RiskProfile]string{
	core.RiskLow:    "For your conservative profile, consider starting with government bonds, PPF, and high-yield savings accounts. Once comfortable, add some low-risk mutual funds like debt funds or hybrid funds.",
	core.RiskMedium: "With a balanced approach, consider 60% equity mutual funds and 40% debt instruments. Nifty 50 index funds and SIP investments are great starting points for long-term growth in India.",
	core.RiskHigh:   "For aggressive growth, consider 80% equity mutual funds and 20% debt instruments. Look into large-cap and mid-cap funds, but remember to diversify across sectors and maintain an emergency fund.",
}

func investmentAdvice(s Snapshot) (string, bool) {
	reply, ok := investmentTemplates[s.risk()]
	return reply, ok
}

const fiftyThirtyTwenty = "I recommend the 50/30/20 rule: 50% for needs, 30% for wants, and 20% for savings and debt repayment."

func budgetAdvice(s Snapshot) (string, bool) {
	total := analytics.TotalExpenses(s.Expenses)
	rate, ok := analytics.SavingsRate(s.income(), total)
	if !ok {
		return fmt.Sprintf("Based on your current spending of %s, I can't compute a savings rate until your income is set. %s",
			core.FormatINR(total), fiftyThirtyTwenty), true
	}
	return fmt.Sprintf("Based on your current spending of %s, you're saving %s of your income. %s",
		core.FormatINR(total), core.FormatPercent(rate), fiftyThirtyTwenty), true
}

func spendingAdvice(s Snapshot) (string, bool) {
	top, ok := analytics.TopCategory(s.Expenses)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("Your highest spending category is %s at %s. Consider reviewing this category for potential savings opportunities.",
		top.Category, core.FormatINR(top.Amount)), true
}

func goalAdvice(s Snapshot) (string, bool) {
	goals := "your personal goals"
	if s.User != nil && len(s.User.Goals) > 0 {
		goals = strings.Join(s.User.Goals, ", ")
	}
	return fmt.Sprintf("Based on your risk profile (%s), I recommend setting SMART financial goals. Start with an emergency fund of 3-6 months expenses, then focus on retirement savings and specific goals like %s.",
		s.risk(), goals), true
}
