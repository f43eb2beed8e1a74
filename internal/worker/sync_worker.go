package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/events"
	applog "fintrack/internal/log"
	"fintrack/internal/sheets"
)

// SyncWorker consumes domain events: new expenses are mirrored to the
// expenses sheet and budget alerts are logged.
type SyncWorker struct {
	sheets sheets.ExpenseWriter
	seen   cache.Cache[string]
	logger *applog.Logger

	synced     atomic.Int64
	alerts     atomic.Int64
	duplicates atomic.Int64
}

// Stats counts what the worker has handled since start.
type Stats struct {
	Synced     int64
	Alerts     int64
	Duplicates int64
}

// NewSyncWorker creates a worker. seen remembers handled event ids so that
// redelivered messages do not append a row twice; it may be nil.
func NewSyncWorker(w sheets.ExpenseWriter, seen cache.Cache[string], logger *applog.Logger) *SyncWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &SyncWorker{
		sheets: w,
		seen:   seen,
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// Handle processes one event. An error requeues the message.
func (w *SyncWorker) Handle(ctx context.Context, e events.Event) error {
	if w.seen != nil {
		if ref, ok := w.seen.Get(e.ID); ok {
			w.duplicates.Add(1)
			w.logger.DebugContext(ctx, "Duplicate event skipped",
				"event_id", e.ID,
				applog.FieldEventType, string(e.Type),
				applog.FieldSheetsRef, ref)
			return nil
		}
	}

	var (
		ref string
		err error
	)
	switch e.Type {
	case events.TypeExpenseAdded:
		ref, err = w.handleExpenseAdded(ctx, e)
	case events.TypeBudgetAlert:
		err = w.handleBudgetAlert(ctx, e)
	default:
		w.logger.DebugContext(ctx, "Event acknowledged without action",
			"event_id", e.ID,
			applog.FieldEventType, string(e.Type),
			applog.FieldSessionID, e.SessionID)
	}
	if err != nil {
		return err
	}

	if w.seen != nil {
		w.seen.Set(e.ID, ref)
	}
	return nil
}

func (w *SyncWorker) handleExpenseAdded(ctx context.Context, e events.Event) (string, error) {
	payload, err := events.DecodePayload[events.ExpensePayload](e)
	if err != nil {
		// A malformed payload will never succeed; drop it.
		w.logger.ErrorContext(ctx, "Dropping expense event with bad payload",
			"event_id", e.ID,
			applog.FieldError, err)
		return "", nil
	}
	if w.sheets == nil {
		w.logger.WarnContext(ctx, "No sheets writer configured, skipping expense sync",
			applog.FieldExpenseID, payload.Expense.ID)
		return "", nil
	}

	start := time.Now()
	ref, err := w.sheets.Append(ctx, payload.Expense)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to sync expense to sheets", applog.NewFields().
			WithExpense(payload.Expense.ID, string(payload.Expense.Category), payload.Expense.Amount.Paise).
			WithOperation(applog.OpAppend).
			WithError(err).
			ToSlice()...)
		return "", fmt.Errorf("append expense %s: %w", payload.Expense.ID, err)
	}
	w.synced.Add(1)

	w.logger.InfoContext(ctx, "Expense synced to sheets", applog.NewFields().
		WithExpense(payload.Expense.ID, string(payload.Expense.Category), payload.Expense.Amount.Paise).
		WithOperation(applog.OpAppend).
		With(applog.FieldSessionID, e.SessionID).
		With(applog.FieldSheetsRef, ref).
		With(applog.FieldDuration, time.Since(start).Milliseconds()).
		ToSlice()...)
	return ref, nil
}

func (w *SyncWorker) handleBudgetAlert(ctx context.Context, e events.Event) error {
	alert, err := events.DecodePayload[events.BudgetAlertPayload](e)
	if err != nil {
		w.logger.ErrorContext(ctx, "Dropping budget alert with bad payload",
			"event_id", e.ID,
			applog.FieldError, err)
		return nil
	}
	w.alerts.Add(1)
	w.logger.WarnContext(ctx, "Budget alert",
		applog.FieldSessionID, e.SessionID,
		applog.FieldUserID, e.UserID,
		applog.FieldBudgetID, alert.BudgetID,
		applog.FieldCategory, string(alert.Category),
		"from", alert.From,
		"to", alert.To,
		"spent", alert.Spent.String(),
		"ceiling", alert.Ceiling.String(),
		"ratio", alert.Ratio)
	return nil
}

// Stats returns the worker counters.
func (w *SyncWorker) Stats() Stats {
	return Stats{
		Synced:     w.synced.Load(),
		Alerts:     w.alerts.Load(),
		Duplicates: w.duplicates.Load(),
	}
}
