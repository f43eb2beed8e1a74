package backend

import (
	"context"
	"time"

	"fintrack/internal/events"
	"fintrack/internal/session"
	"fintrack/internal/sheets"
	"fintrack/internal/state"
)

// Journal is the persistence surface the API process needs from an action
// journal.
type Journal interface {
	Listener(sessionID string) state.Listener
	Replay(ctx context.Context, sessionID string) (state.State, uint64, bool, error)
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
	Sessions(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// Sheets bundles both spreadsheet ports; every adapter implements both.
type Sheets interface {
	sheets.ExpenseWriter
	sheets.ExpenseExporter
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the created backends and their cleanup.
type Result struct {
	// Journal is nil for the memory backend.
	Journal Journal
	Sheets  Sheets
	// Events is nil when AMQP is disabled or unreachable at startup.
	Events  *events.Client
	Cleanup CleanupFunc
}

// SessionOptions wires the journal into a session manager: every dispatch
// is appended and unknown sessions are replayed.
func (r *Result) SessionOptions() []session.Option {
	if r.Journal == nil {
		return nil
	}
	j := r.Journal
	return []session.Option{
		session.WithListeners(func(id string) []state.Listener {
			return []state.Listener{j.Listener(id)}
		}),
		session.WithLoader(j.Replay),
	}
}

// Publisher returns the event publisher, or nil when events are disabled.
// A nil *events.Client is never returned inside a non-nil interface.
func (r *Result) Publisher() events.Publisher {
	if r.Events == nil {
		return nil
	}
	return r.Events
}

// Ready pings the journal when there is one.
func (r *Result) Ready(ctx context.Context) error {
	if r.Journal == nil {
		return nil
	}
	return r.Journal.Ping(ctx)
}

// Factory creates backends based on configuration
type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Journal          BackendType
	SQLiteDBPath     string
	JournalRetention time.Duration

	Sheets                BackendType
	GoogleSpreadsheetID   string
	GoogleSheetName       string
	GoogleExportSheetName string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
	GoogleBackend BackendType = "google"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}
