package graph

import (
	"context"
	"database/sql"
	"time"

	"github.com/nexus-kg/nexus/internal/db"
	"github.com/nexus-kg/nexus/internal/telemetry"
)

// Index is the graph store. It owns only a database handle; it holds no
// mutable caches. Every public mutating method opens
// exactly one write transaction spanning all of its sub-queries; every
// read-only method opens one transaction for the duration of the call so
// its intermediate reads see a consistent snapshot.
type Index struct {
	h *db.Handle
}

// New wraps an already-opened database handle.
func New(h *db.Handle) *Index {
	return &Index{h: h}
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// withWriteTx runs fn inside a single write transaction, committing on a nil
// return and rolling back otherwise. The deferred Rollback is a no-op after
// a successful Commit, so every error path leaves no transaction open. The
// whole begin-fn-commit sequence is retried as a unit on transient
// SQLITE_BUSY/locked errors: each retry starts a fresh transaction, so a
// failed attempt never leaves partial writes behind for the next one.
func (idx *Index) withWriteTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) (err error) {
	ctx, span := telemetry.StartSpan(ctx, op, "")
	defer func() { telemetry.EndSpan(span, err) }()

	return idx.h.WithRetry(ctx, func() error {
		tx, err := idx.h.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if err = fn(tx); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// withReadTx runs fn inside a read-only transaction snapshot, retried as a
// unit on transient SQLITE_BUSY/locked errors.
func (idx *Index) withReadTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) (err error) {
	ctx, span := telemetry.StartSpan(ctx, op, "")
	defer func() { telemetry.EndSpan(span, err) }()

	return idx.h.WithRetry(ctx, func() error {
		tx, err := idx.h.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
		if err != nil {
			return err
		}
		defer tx.Rollback()

		return fn(tx)
	})
}
