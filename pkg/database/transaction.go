package database

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
)

// WithTx runs fn with a Manager bound to a single transaction.
// If fn returns an error, the transaction is rolled back.
// If fn panics, the transaction is rolled back and the panic is re-raised.
// If fn succeeds, the transaction is committed.
// Calling WithTx on a transaction-bound Manager opens a savepoint.
func (m *Manager) WithTx(ctx context.Context, fn func(tx *Manager) error) error {
	var (
		tx  pgx.Tx
		err error
	)
	if m.tx != nil {
		tx, err = m.tx.Begin(ctx)
	} else {
		var pool Pool
		pool, err = m.Connection(ctx)
		if err != nil {
			return err
		}
		tx, err = pool.Begin(ctx)
	}
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	bound := &Manager{
		conn:    m.conn,
		tx:      tx,
		builder: m.builder,
		logger:  m.logger,
	}

	if err := fn(bound); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			m.logger.ErrorContext(ctx, "transaction rollback failed", "error", rbErr)
		}
		return err
	}

	return errors.Wrap(tx.Commit(ctx), "commit transaction")
}
