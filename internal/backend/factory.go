package backend

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/events"
	applog "fintrack/internal/log"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/sheets/memory"
	"fintrack/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// Create opens the journal, the sheets adapter and the event client. If
// any required part fails, whatever was already opened is closed.
func (f *DefaultFactory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	res := &Result{}
	var closers []CleanupFunc
	res.Cleanup = func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	if config.Journal == SQLiteBackend {
		j, err := storage.OpenJournal(config.SQLiteDBPath, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open action journal: %w", err)
		}
		res.Journal = j
		closers = append(closers, j.Close)
		f.logger.InfoContext(ctx, "Initialized SQLite journal", "db_path", config.SQLiteDBPath)
	} else {
		f.logger.InfoContext(ctx, "Sessions are kept in memory only")
	}

	sheets, err := f.createSheets(ctx, config)
	if err != nil {
		_ = res.Cleanup()
		return nil, err
	}
	res.Sheets = sheets

	if config.AMQPURL != "" {
		client, err := events.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events",
				applog.FieldError, err)
		} else {
			res.Events = client
			closers = append(closers, client.Close)
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	return res, nil
}

func (f *DefaultFactory) createSheets(ctx context.Context, config Config) (Sheets, error) {
	if config.Sheets == GoogleBackend {
		cli, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			SheetName:       config.GoogleSheetName,
			ExportSheetName: config.GoogleExportSheetName,
			CredentialsFile: config.GoogleCredentialsFile,
			CredentialsJSON: config.GoogleCredentialsJSON,
		}, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized Google Sheets export",
			"spreadsheet_id", config.GoogleSpreadsheetID)
		return cli, nil
	}

	f.logger.InfoContext(ctx, "Initialized in-memory sheet")
	return memory.New(), nil
}
