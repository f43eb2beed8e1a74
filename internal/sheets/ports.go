// Package sheets defines the spreadsheet export ports. Adapters live in the
// google and memory subpackages.
package sheets

import (
	"context"
	"strconv"

	"fintrack/internal/core"
)

// Ports for outbound adapters.
//
// The two ports write to different sheets. ExpenseWriter feeds the running
// expense log, one row per recorded expense. ExpenseExporter writes on-demand
// snapshots of a whole session to a separate export sheet, so an export never
// duplicates rows in the running log.
type (
	// ExpenseWriter appends a single expense row to the expense log.
	ExpenseWriter interface {
		Append(ctx context.Context, e core.Expense) (rowRef string, err error)
	}

	// ExpenseExporter appends a batch of expense rows to the export sheet in
	// one call.
	ExpenseExporter interface {
		AppendExpenses(ctx context.Context, expenses []core.Expense) (rangeRef string, err error)
	}
)

// Header is the column layout of the expenses sheet.
var Header = []any{"Date", "Description", "Category", "Amount", "Recurring", "Expense ID", "User ID"}

// Row renders e in Header order. Amounts are plain rupee numbers so the
// sheet can sum them.
func Row(e core.Expense) []any {
	amount, _ := e.Amount.Decimal().Float64()
	return []any{
		e.Date.String(),
		e.Description,
		string(e.Category),
		amount,
		strconv.FormatBool(e.Recurring),
		e.ID,
		e.UserID,
	}
}

// Rows renders every expense.
func Rows(expenses []core.Expense) [][]any {
	out := make([][]any, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, Row(e))
	}
	return out
}
