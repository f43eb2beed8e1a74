package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/events"
	applog "fintrack/internal/log"
	"fintrack/internal/session"
	"fintrack/internal/state"
)

// BudgetInput is one row of the budget planner. An empty ID gets a fresh
// one, an empty period means monthly and a zero start date means today.
type BudgetInput struct {
	ID        string     `json:"id"`
	Category  string     `json:"category"`
	Ceiling   core.Money `json:"ceiling"`
	Period    string     `json:"period"`
	StartDate core.Date  `json:"start_date"`
}

type BudgetService struct {
	notifier
	now func() time.Time
}

func NewBudgetService(publisher events.Publisher, logger *applog.Logger) *BudgetService {
	if logger == nil {
		logger = discardLogger(applog.ComponentBudget)
	}
	return &BudgetService{
		notifier: notifier{publisher: publisher, logger: logger},
		now:      time.Now,
	}
}

// Analysis returns every budget with its live spend.
func (s *BudgetService) Analysis(sess *session.Session) (analytics.BudgetOverview, error) {
	st, err := authenticated(sess)
	if err != nil {
		return analytics.BudgetOverview{}, err
	}
	return analytics.OverviewBudgets(st.Budgets, st.Expenses), nil
}

// Recommendations compares recommended ceilings for the user's income with
// current spend.
func (s *BudgetService) Recommendations(sess *session.Session) ([]analytics.Recommendation, error) {
	st, err := authenticated(sess)
	if err != nil {
		return nil, err
	}
	return analytics.Recommendations(st.User.Income, st.Expenses), nil
}

// Replace swaps the whole budget set. Nothing is dispatched unless every
// row is valid.
func (s *BudgetService) Replace(ctx context.Context, sess *session.Session, in []BudgetInput) (analytics.BudgetOverview, error) {
	st, err := authenticated(sess)
	if err != nil {
		return analytics.BudgetOverview{}, err
	}

	budgets := make([]core.Budget, 0, len(in))
	for _, row := range in {
		b, err := s.build(row, st.User.ID)
		if err != nil {
			return analytics.BudgetOverview{}, err
		}
		budgets = append(budgets, b)
	}

	change, err := dispatch(sess, state.SetBudgets{Budgets: budgets})
	if err != nil {
		return analytics.BudgetOverview{}, err
	}
	s.logger.InfoContext(ctx, "Budgets replaced",
		applog.FieldOperation, applog.OpUpdate,
		applog.FieldSessionID, sess.ID,
		"count", len(budgets))
	s.alertWorsened(ctx, sess.ID, change)

	return analytics.OverviewBudgets(change.Next.Budgets, change.Next.Expenses), nil
}

func (s *BudgetService) build(row BudgetInput, userID string) (core.Budget, error) {
	category, err := core.ParseCategory(row.Category)
	if err != nil {
		return core.Budget{}, invalid(err)
	}
	period := core.Monthly
	if row.Period != "" {
		if period, err = core.ParsePeriod(row.Period); err != nil {
			return core.Budget{}, invalid(err)
		}
	}
	b := core.Budget{
		ID:        row.ID,
		UserID:    userID,
		Category:  category,
		Ceiling:   row.Ceiling,
		Period:    period,
		StartDate: row.StartDate,
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.StartDate.IsZero() {
		b.StartDate = core.DateOf(s.now())
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, invalid(err)
	}
	return b, nil
}
