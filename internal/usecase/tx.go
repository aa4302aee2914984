package usecase

import (
	"context"
	"fmt"
)

// inTransaction runs fn in a store transaction bounded by
// DefaultTransactionTimeout and commits when fn succeeds. Any error, including
// context cancellation, rolls the whole unit back. fn may run again when the
// retrier classifies a failure as transient, so it must rebuild its results on
// every attempt.
func inTransaction(ctx context.Context, txManager TransactionManager, retrier Retrier, fn func(ctx context.Context, tx Transaction) error) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	attempt := func() error {
		tx, err := txManager.Begin(txCtx)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		if err := fn(txCtx, tx); err != nil {
			return err
		}

		if err := tx.Commit(txCtx); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	}

	if retrier == nil {
		return attempt()
	}
	return retrier.Retry(txCtx, attempt)
}
