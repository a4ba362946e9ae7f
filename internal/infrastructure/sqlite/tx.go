package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// withTx runs fn in a transaction unless db already is one.
func withTx(ctx context.Context, db sqlx.ExtContext, fn func(q sqlx.ExtContext) error) error {
	conn, ok := db.(*sqlx.DB)
	if !ok {
		return fn(db)
	}
	return WithTransaction(ctx, conn, func(tx *sqlx.Tx) error { return fn(tx) })
}

// WithTransaction executes fn within a transaction, rolling back on error or panic.
func WithTransaction(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
