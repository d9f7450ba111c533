package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/upb/employee-management/repositories"
	"go.uber.org/zap"
)

type txKey struct{}

// TransactionManager opens transactions on the pool. A context that already
// carries a transaction joins it: Begin returns a handle whose Commit and
// Rollback are left to the outermost owner.
type TransactionManager struct {
	db     *DB
	logger *zap.Logger
}

func NewTransactionManager(db *DB, logger *zap.Logger) repositories.TransactionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransactionManager{db: db, logger: logger}
}

func (tm *TransactionManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	if outer, ok := ctx.Value(txKey{}).(*Transaction); ok {
		return &Transaction{tx: outer.tx, ctx: ctx, logger: outer.logger, joined: true}, nil
	}

	sqlTx, err := tm.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	t := &Transaction{tx: sqlTx, logger: tm.logger.With(zap.String("driver", tm.db.Driver()))}
	t.ctx = context.WithValue(ctx, txKey{}, t)
	t.logger.Debug("transaction started")
	return t, nil
}

// InTransaction runs fn and commits when it returns nil
func (tm *TransactionManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	tx, err := tm.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx.Context(), tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			tm.logger.Error("rollback failed", zap.Error(rbErr), zap.NamedError("cause", err))
		}
		return err
	}
	return tx.Commit()
}

// Transaction wraps *sql.Tx; a joined handle does not end the transaction
type Transaction struct {
	tx     *sql.Tx
	ctx    context.Context
	logger *zap.Logger
	joined bool
}

func (t *Transaction) Commit() error {
	if t.joined {
		return nil
	}
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	t.logger.Debug("transaction committed")
	return nil
}

// Rollback is a no-op once the transaction has ended
func (t *Transaction) Rollback() error {
	if t.joined {
		return nil
	}
	err := t.tx.Rollback()
	switch {
	case err == nil:
		t.logger.Debug("transaction rolled back")
		return nil
	case errors.Is(err, sql.ErrTxDone):
		return nil
	default:
		return fmt.Errorf("rollback transaction: %w", err)
	}
}

// Context carries the transaction to repositories through GetExecutor
func (t *Transaction) Context() context.Context { return t.ctx }

// Executor is satisfied by both *sql.DB and *sql.Tx
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// GetExecutor returns the transaction carried by ctx, or the pool
func GetExecutor(ctx context.Context, db *DB) Executor {
	if t, ok := ctx.Value(txKey{}).(*Transaction); ok {
		return t.tx
	}
	return db.DB
}
