package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type contextKey string

// TxKey carries the active transaction through a request context so that
// repositories participate in the same unit of work.
const TxKey contextKey = "db_tx"

// Beginner is the subset of pgxpool.Pool needed to open transactions.
// pgxmock pools satisfy it too.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ContextWithTx returns a context carrying the given transaction.
func ContextWithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, TxKey, tx)
}

// TxFromContext retrieves the transaction from context, or nil when the
// caller is not inside a unit of work.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(TxKey).(pgx.Tx)
	return tx
}

// TxRunner executes a function inside a single atomic unit of work.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PgxTxRunner runs the function in a database transaction. The transaction is
// placed in the context so every repository call inside fn uses it.
type PgxTxRunner struct {
	DB Beginner
}

func NewTxRunner(db Beginner) *PgxTxRunner {
	return &PgxTxRunner{DB: db}
}

func (r *PgxTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		// Already inside a unit of work; join it.
		return fn(ctx)
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(ContextWithTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("rollback: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	return tx.Commit(ctx)
}

// NopTxRunner calls fn directly without a transaction. Used by tests and by
// callers that already manage their own unit of work.
type NopTxRunner struct{}

func (NopTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
