package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/sheets/memory"
)

type failingExporter struct{}

func (failingExporter) AppendExpenses(context.Context, []core.Expense) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	_, err = ParseFormat("csv")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExportUnsupportedFormats(t *testing.T) {
	svc := NewExportService(memory.New(), quietLogger())
	sess := demoSession(t)

	for _, f := range []Format{FormatPDF, FormatExcel} {
		_, err := svc.Export(context.Background(), sess, f)
		assert.ErrorIs(t, err, ErrExportNotImplemented, "format %s", f)
	}
}

func TestExportToSheets(t *testing.T) {
	sheet := memory.New()
	svc := NewExportService(sheet, quietLogger())

	res, err := svc.Export(context.Background(), demoSession(t), FormatSheets)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Rows)
	assert.Equal(t, "mem:export:1-4", res.Ref)
	assert.Len(t, sheet.Exports(), 4)
	assert.Empty(t, sheet.Rows(), "exports must not add to the expense log")
}

func TestExportToSheetsFailures(t *testing.T) {
	sess := demoSession(t)

	_, err := NewExportService(nil, quietLogger()).Export(context.Background(), sess, FormatSheets)
	assert.ErrorIs(t, err, ErrExportNotImplemented)

	_, err = NewExportService(failingExporter{}, quietLogger()).Export(context.Background(), sess, FormatSheets)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}
