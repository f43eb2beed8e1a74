// Package storage persists dispatched actions to SQLite so a session can be
// rebuilt after a restart. The in-memory store stays the source of truth;
// the journal only records what was applied to it.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	applog "fintrack/internal/log"
	"fintrack/internal/state"

	_ "modernc.org/sqlite"
)

const actionsTable = "actions"

// appendTimeout bounds a journal write made from a store listener, which
// has no caller context.
const appendTimeout = 5 * time.Second

// Entry is one journaled action.
type Entry struct {
	SessionID string `db:"session_id"`
	Version   int64  `db:"version"`
	Kind      string `db:"kind"`
	Payload   string `db:"payload"`
	CreatedAt int64  `db:"created_at"` // unix milliseconds
}

// Action decodes the entry payload.
func (e Entry) Action() (state.Action, error) {
	return state.DecodeAction([]byte(e.Payload))
}

// Journal is an append-only action log.
type Journal struct {
	db     *sqlx.DB
	logger *applog.Logger
	now    func() time.Time
}

// OpenJournal opens (creating if needed) the SQLite journal at dbPath and
// applies migrations.
func OpenJournal(dbPath string, logger *applog.Logger) (*Journal, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Journal{
		db:     db,
		logger: logger.WithComponent(applog.ComponentStorage),
		now:    time.Now,
	}, nil
}

func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Ping checks the database is reachable.
func (j *Journal) Ping(ctx context.Context) error {
	return j.db.PingContext(ctx)
}

// Append records action a as version of sessionID.
func (j *Journal) Append(ctx context.Context, sessionID string, version uint64, a state.Action) error {
	payload, err := state.EncodeAction(a)
	if err != nil {
		return fmt.Errorf("encode action: %w", err)
	}

	query, args, err := sq.Insert(actionsTable).
		Columns("session_id", "version", "kind", "payload", "created_at").
		Values(sessionID, int64(version), string(a.Kind()), string(payload), j.now().UnixMilli()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := j.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append action: %w", err)
	}
	return nil
}

// Load returns the entries of sessionID in version order.
func (j *Journal) Load(ctx context.Context, sessionID string) ([]Entry, error) {
	query, args, err := sq.Select("session_id", "version", "kind", "payload", "created_at").
		From(actionsTable).
		Where(sq.Eq{"session_id": sessionID}).
		OrderBy("version ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var entries []Entry
	if err := j.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("load actions: %w", err)
	}
	return entries, nil
}

// Replay rebuilds the state of sessionID. found is false when the journal
// holds nothing for it. Its signature matches session.Loader.
func (j *Journal) Replay(ctx context.Context, sessionID string) (state.State, uint64, bool, error) {
	entries, err := j.Load(ctx, sessionID)
	if err != nil {
		return state.State{}, 0, false, err
	}
	if len(entries) == 0 {
		return state.State{}, 0, false, nil
	}

	actions := make([]state.Action, 0, len(entries))
	for _, e := range entries {
		a, err := e.Action()
		if err != nil {
			return state.State{}, 0, false, fmt.Errorf("decode action %s/%d: %w", e.SessionID, e.Version, err)
		}
		actions = append(actions, a)
	}

	last := entries[len(entries)-1].Version
	j.logger.InfoContext(ctx, "Session replayed",
		applog.FieldOperation, applog.OpReplay,
		applog.FieldSessionID, sessionID,
		applog.FieldVersion, last,
		"actions", len(actions))
	return state.Replay(actions), uint64(last), true, nil
}

// Sessions lists session ids with at least one journaled action.
func (j *Journal) Sessions(ctx context.Context) ([]string, error) {
	query, args, err := sq.Select("DISTINCT session_id").
		From(actionsTable).
		OrderBy("session_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	var ids []string
	if err := j.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return ids, nil
}

// Prune deletes actions of sessions whose newest action is older than
// cutoff, returning the number of rows removed.
func (j *Journal) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	stale := sq.Select("session_id").
		From(actionsTable).
		GroupBy("session_id").
		Having(sq.Lt{"MAX(created_at)": cutoff.UnixMilli()})
	sub, subArgs, err := stale.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build prune subquery: %w", err)
	}

	query, args, err := sq.Delete(actionsTable).
		Where(sq.Expr("session_id IN ("+sub+")", subArgs...)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	res, err := j.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("prune actions: %w", err)
	}
	return res.RowsAffected()
}

// Listener returns a store listener journaling every change of sessionID.
// Write failures are logged; the in-memory dispatch has already happened.
func (j *Journal) Listener(sessionID string) state.Listener {
	return func(c state.Change) {
		ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
		defer cancel()
		if err := j.Append(ctx, sessionID, c.Version, c.Action); err != nil {
			j.logger.Error("Failed to journal action",
				applog.FieldSessionID, sessionID,
				applog.FieldVersion, c.Version,
				applog.FieldAction, string(c.Action.Kind()),
				applog.FieldError, err)
		}
	}
}
