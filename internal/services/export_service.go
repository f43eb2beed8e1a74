package services

import (
	"context"
	"fmt"
	"strings"

	applog "fintrack/internal/log"
	"fintrack/internal/session"
	"fintrack/internal/sheets"
)

// Format is an export target.
type Format string

const (
	FormatPDF    Format = "pdf"
	FormatExcel  Format = "excel"
	FormatSheets Format = "sheets"
)

// ParseFormat resolves an export format case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatPDF, FormatExcel, FormatSheets:
		return f, nil
	default:
		return "", invalid(fmt.Errorf("unknown export format %q", s))
	}
}

// ExportResult describes a finished export.
type ExportResult struct {
	Format Format `json:"format"`
	Rows   int    `json:"rows"`
	// Ref locates the written rows, e.g. a sheet range.
	Ref string `json:"ref,omitempty"`
}

type ExportService struct {
	exporter sheets.ExpenseExporter
	logger   *applog.Logger
}

// NewExportService creates the service. A nil exporter leaves the sheets
// format unavailable.
func NewExportService(exporter sheets.ExpenseExporter, logger *applog.Logger) *ExportService {
	if logger == nil {
		logger = discardLogger(applog.ComponentExport)
	}
	return &ExportService{exporter: exporter, logger: logger}
}

// Export writes the session's expenses in format. PDF and Excel are
// acknowledged but return ErrExportNotImplemented.
func (s *ExportService) Export(ctx context.Context, sess *session.Session, format Format) (ExportResult, error) {
	st, err := authenticated(sess)
	if err != nil {
		return ExportResult{}, err
	}
	result := ExportResult{Format: format}

	switch format {
	case FormatPDF, FormatExcel:
		s.logger.InfoContext(ctx, "Export requested for unsupported format",
			applog.FieldOperation, applog.OpExport,
			applog.FieldSessionID, sess.ID,
			applog.FieldFormat, string(format))
		return result, fmt.Errorf("%w: %s", ErrExportNotImplemented, format)
	case FormatSheets:
	default:
		return result, invalid(fmt.Errorf("unknown export format %q", format))
	}

	if s.exporter == nil {
		return result, fmt.Errorf("%w: sheets export is not configured", ErrExportNotImplemented)
	}
	if len(st.Expenses) == 0 {
		return result, nil
	}
	ref, err := s.exporter.AppendExpenses(ctx, st.Expenses)
	if err != nil {
		s.logger.ErrorContext(ctx, "Sheets export failed", applog.NewFields().
			WithOperation(applog.OpExport).
			WithError(err).
			With(applog.FieldSessionID, sess.ID).
			ToSlice()...)
		return result, fmt.Errorf("export to sheets: %w", err)
	}
	result.Rows = len(st.Expenses)
	result.Ref = ref

	s.logger.InfoContext(ctx, "Expenses exported",
		applog.FieldOperation, applog.OpExport,
		applog.FieldSessionID, sess.ID,
		applog.FieldFormat, string(format),
		applog.FieldSheetsRef, ref,
		"rows", result.Rows)
	return result, nil
}
