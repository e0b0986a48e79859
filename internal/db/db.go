// Package db manages the embedded SQLite connection backing the graph index:
// pragma setup, single-writer discipline, and a bounded retry wrapper around
// transient busy/locked errors.
package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cenkalti/backoff/v4"
	_ "modernc.org/sqlite"

	"github.com/nexus-kg/nexus/internal/config"
	"github.com/nexus-kg/nexus/internal/telemetry"
)

//go:embed schema.sql
var schemaSQL string

const fileName = "graph.sqlite"

// Handle wraps a *sql.DB with the pragmas, connection limits, and retry
// behavior the graph index depends on. SQLite tolerates only one writer at a
// time, so every Handle is pinned to a single connection.
type Handle struct {
	DB   *sql.DB
	Path string
}

// Open opens (creating if needed) the database at path, applies pragmas, and
// runs the embedded schema. path may be ":memory:" for tests.
func Open(path string) (*Handle, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite behaves best with a single connection per process; multiple
	// connections contend for the write lock and surface as SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}

	if _, err := sqlDB.Exec(schemaSQL); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Handle{DB: sqlDB, Path: path}, nil
}

// OpenDefault opens the database at the configured data directory.
func OpenDefault() (*Handle, error) {
	path, err := GetPath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}

// GetPath returns the path to the configured database file.
func GetPath() (string, error) {
	dataDir, err := config.GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, fileName), nil
}

func (h *Handle) Close() error {
	return h.DB.Close()
}

// isRetryableError reports whether err is a transient SQLite condition worth
// retrying rather than surfacing immediately.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "database is locked") ||
		strings.Contains(s, "busy") ||
		strings.Contains(s, "database table is locked")
}

func newRetryBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = telemetry.RetryMaxElapsed
	return bo
}

func withRetry(ctx context.Context, op func() error) error {
	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		err := op()
		if err != nil && isRetryableError(err) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, backoff.WithContext(newRetryBackoff(), ctx))
	if attempts > 1 {
		telemetry.RecordRetry(ctx, int64(attempts-1))
	}
	return err
}

// WithRetry runs op, retrying on transient "database is locked"/"busy"
// errors with exponential backoff. The graph index wraps its entire
// begin-exec-commit sequence in a single WithRetry call so a SQLITE_BUSY hit
// anywhere in that sequence restarts the whole transaction attempt rather
// than leaving it half-committed.
func (h *Handle) WithRetry(ctx context.Context, op func() error) error {
	return withRetry(ctx, op)
}

// BeginTx starts a transaction. Callers are responsible for commit/rollback;
// the graph index always defers a Rollback immediately after a successful
// BeginTx so an early return or panic never leaves a transaction open.
func (h *Handle) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	ctx, span := telemetry.StartSpan(ctx, "db.begin", "")
	tx, err := h.DB.BeginTx(ctx, opts)
	telemetry.EndSpan(span, err)
	return tx, err
}
