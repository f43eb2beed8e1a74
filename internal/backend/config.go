package backend

import (
	"errors"
	"fmt"

	"fintrack/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	cfg := Config{
		Journal:          BackendType(appConfig.JournalBackend),
		SQLiteDBPath:     appConfig.SQLiteDBPath,
		JournalRetention: appConfig.JournalRetention,

		Sheets:                BackendType(appConfig.SheetsBackend),
		GoogleSpreadsheetID:   appConfig.GoogleSpreadsheetID,
		GoogleSheetName:       appConfig.GoogleSheetName,
		GoogleExportSheetName: appConfig.GoogleExportSheetName,
		GoogleCredentialsFile: appConfig.GoogleCredentialsFile,
		GoogleCredentialsJSON: appConfig.GoogleCredentialsJSON,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}
	return cfg, cfg.Validate()
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	var errs []error

	switch c.Journal {
	case MemoryBackend:
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			errs = append(errs, errors.New("SQLite database path is required for the sqlite journal"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid journal backend: %q", c.Journal))
	}

	switch c.Sheets {
	case MemoryBackend:
	case GoogleBackend:
		if c.GoogleSpreadsheetID == "" {
			errs = append(errs, errors.New("Google Spreadsheet ID is required for the google sheets backend"))
		}
		if c.GoogleCredentialsFile == "" && c.GoogleCredentialsJSON == "" {
			errs = append(errs, errors.New("a service account file or JSON is required for the google sheets backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid sheets backend: %q", c.Sheets))
	}

	return errors.Join(errs...)
}
