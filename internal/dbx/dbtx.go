// Package dbx provides the small database abstractions shared by repositories:
// a query interface (DBTX) satisfied by pooled handles, dedicated connections
// and transactions, plus helpers that scope a connection or a transaction to
// a single function call.
package dbx

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// DBTX is the subset of sqlx used by our repositories.
// *sqlx.DB, *sqlx.Conn and *sqlx.Tx all satisfy it.
//
// Queries are written with '?' placeholders and passed through Rebind, so the
// same statement runs on Postgres ($1) and SQLite (?).
type DBTX interface {
	sqlx.ExecerContext
	sqlx.QueryerContext
	Rebind(query string) string
}

// WithConn checks out a dedicated connection from the pool, runs fn with it and
// always returns the connection, including when fn fails or panics.
func WithConn(ctx context.Context, db *sqlx.DB, fn func(ctx context.Context, conn DBTX) error) error {
	conn, err := db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(ctx, conn)
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
// Typical use:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM tasks WHERE id = ?"), id)
//	    return err
//	})
func WithTx(ctx context.Context, db *sqlx.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
