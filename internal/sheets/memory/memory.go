// Package memory is an in-process sheet used when Google Sheets is not
// configured, and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"
)

var (
	_ ports.ExpenseWriter   = (*Sheet)(nil)
	_ ports.ExpenseExporter = (*Sheet)(nil)
)

// Sheet keeps appended rows in memory. Log rows and export rows are kept
// apart, like the two sheets of the Google adapter.
type Sheet struct {
	mu      sync.Mutex
	rows    [][]any
	exports [][]any
}

func New() *Sheet {
	return &Sheet{}
}

// Append stores the expense and returns a synthetic row reference.
func (s *Sheet) Append(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, ports.Row(e))
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// AppendExpenses stores all rows as an export and returns the covered range.
func (s *Sheet) AppendExpenses(_ context.Context, expenses []core.Expense) (string, error) {
	if len(expenses) == 0 {
		return "", nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	first := len(s.exports) + 1
	s.exports = append(s.exports, ports.Rows(expenses)...)
	return fmt.Sprintf("mem:export:%d-%d", first, len(s.exports)), nil
}

// Rows returns a copy of the expense log.
func (s *Sheet) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.rows))
	copy(out, s.rows)
	return out
}

// Exports returns a copy of every exported row.
func (s *Sheet) Exports() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.exports))
	copy(out, s.exports)
	return out
}
