package qtable

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const schema = `CREATE TABLE IF NOT EXISTS qtable (
	state TEXT PRIMARY KEY,
	value REAL NOT NULL
)`

// SQLiteStore keeps values in a single SQLite table. Several processes may
// share one file; commits that find the database locked are retried.
type SQLiteStore struct {
	db          *sql.DB
	busyRetries uint
	busyDelay   time.Duration
	logger      zerolog.Logger
}

// DefaultBusyTimeout is the SQLite busy_timeout used when none is set
const DefaultBusyTimeout = 5 * time.Second

// OpenSQLite opens (creating if needed) the value table at opts.Path
func OpenSQLite(ctx context.Context, opts Options, logger zerolog.Logger) (*SQLiteStore, error) {
	path := opts.Path
	if path == "" {
		return nil, errors.New("sqlite value table needs a path")
	}
	busyTimeout := opts.BusyTimeout
	if busyTimeout <= 0 {
		busyTimeout = DefaultBusyTimeout
	}
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	db, err := sql.Open("sqlite", path+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if isMemoryPath(path) {
		// every connection to :memory: gets its own empty database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema in %s: %w", path, err)
	}

	s := &SQLiteStore{
		db:          db,
		busyRetries: opts.BusyRetries,
		busyDelay:   opts.BusyDelay,
		logger:      logger.With().Str("component", "SQLiteStore").Str("path", path).Logger(),
	}
	s.logger.Debug().Msg("Value table opened")
	return s, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (float64, bool, error) {
	var v float64
	err := s.db.QueryRowContext(ctx, `SELECT value FROM qtable WHERE state = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read %q: %w", key, err)
	}
	return v, true, nil
}

// PutMany writes rows in one transaction
func (s *SQLiteStore) PutMany(ctx context.Context, rows map[string]float64) error {
	if len(rows) == 0 {
		return nil
	}
	return retry.Do(
		func() error { return s.putMany(ctx, rows) },
		retry.Context(ctx),
		retry.Attempts(s.busyRetries+1),
		retry.Delay(s.busyDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(isBusy),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn().Err(err).Uint("attempt", n+1).Int("rows", len(rows)).Msg("Value table busy, retrying commit")
		}),
	)
}

func (s *SQLiteStore) putMany(ctx context.Context, rows map[string]float64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO qtable (state, value) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for k, v := range rows {
		if _, err = stmt.ExecContext(ctx, k, v); err != nil {
			return fmt.Errorf("write %q: %w", k, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM qtable`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func isMemoryPath(path string) bool {
	return path == ":memory:" || strings.HasPrefix(path, "file::memory:")
}

// isBusy reports whether err is SQLite's "database is locked"
func isBusy(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code() & 0xff
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}
