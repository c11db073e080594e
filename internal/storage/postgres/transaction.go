package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type ctxKey struct{}

// TransactionManager scopes a function to one database transaction. Each
// logical unit of work in the pipeline (one article insert, one bulk delete)
// runs in its own transaction so a mid-batch failure rolls back only the
// current unit.
type TransactionManager struct {
	db *sqlx.DB
}

func NewTransactionManager(db *sqlx.DB) *TransactionManager {
	return &TransactionManager{db: db}
}

// WithTransaction begins a transaction, stores it in the context for the
// stores to pick up, and commits when fn succeeds or rolls back when it
// fails.
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := tm.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(context.WithValue(ctx, ctxKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// executor returns the transaction bound to ctx, or the plain DB handle when
// the call is not transactional.
func executor(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx, ok := ctx.Value(ctxKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}
