// Package dbx holds the small database/sql abstractions shared by the SQL
// key-value substrates: DBTX, satisfied by both *sql.DB and *sql.Tx, and a
// helper running a function inside a transaction.
package dbx

import (
	"context"
	"database/sql"
	"errors"
)

// DBTX is the subset of database/sql used by the substrates.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with the transactional handle and
// commits on success. An error from fn, or a panic, rolls the transaction
// back; panics are rethrown and a failed rollback is joined to fn's error.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "DELETE FROM kv_store WHERE ...")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, rbErr)
			}
			return
		}
		err = tx.Commit()
	}()

	return fn(ctx, tx)
}
