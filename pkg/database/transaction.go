package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
)

type txKey struct{}

// Tx is the transaction surface the repositories use. Commit and Rollback
// are safe to call more than once.
type Tx interface {
	IsOpen() bool
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Transaction struct {
	*sqlx.Tx
	logger ectologger.Logger
	closed bool
}

// GetTx returns the transaction the context already carries when one is still
// open, otherwise begins a new one and attaches it. Rollback on an inherited
// transaction is a no-op so the caller that opened it stays in charge.
func GetTx(ctx context.Context, logger ectologger.Logger, db DB, opts *sql.TxOptions) (context.Context, Tx, error) {
	if inherited, ok := ctx.Value(txKey{}).(*Transaction); ok && inherited.IsOpen() {
		return ctx, inherited, nil
	}

	sqlxTx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		logger.WithContext(ctx).WithError(err).Errorf("failed to begin transaction")
		return ctx, nil, fmt.Errorf("failed to begin transaction")
	}

	tx := &Transaction{Tx: sqlxTx, logger: logger}
	return context.WithValue(ctx, txKey{}, tx), tx, nil
}

func (t *Transaction) IsOpen() bool {
	return !t.closed
}

func (t *Transaction) Rollback(ctx context.Context) error {
	if t.closed {
		return nil
	}

	if inherited, ok := ctx.Value(txKey{}).(*Transaction); ok && inherited == t {
		return nil // inherited from the context; the opener finishes it
	}

	if err := t.Tx.Rollback(); err != nil {
		t.logger.WithContext(ctx).WithError(err).Errorf("failed to roll back transaction")
		return fmt.Errorf("failed to roll back transaction")
	}

	t.closed = true
	return nil
}

func (t *Transaction) Commit(ctx context.Context) error {
	if t.closed {
		return nil
	}

	if err := t.Tx.Commit(); err != nil {
		t.logger.WithContext(ctx).WithError(err).Errorf("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction")
	}

	t.closed = true
	return nil
}
