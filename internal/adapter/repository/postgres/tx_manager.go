package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/iho/cashledger/internal/usecase"
)

type pgxPool interface {
	BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	pool pgxPool
	opts pgx.TxOptions
}

// NewTxManager creates a TxManager that opens transactions at the given
// isolation level ("read committed", "repeatable read" or "serializable").
func NewTxManager(pool pgxPool, isolation string) (*TxManager, error) {
	level, err := ParseIsolation(isolation)
	if err != nil {
		return nil, err
	}
	return &TxManager{pool: pool, opts: pgx.TxOptions{IsoLevel: level}}, nil
}

// ParseIsolation converts a configured isolation level name.
func ParseIsolation(s string) (pgx.TxIsoLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "serializable":
		return pgx.Serializable, nil
	case "repeatable read", "repeatable_read":
		return pgx.RepeatableRead, nil
	case "read committed", "read_committed":
		return pgx.ReadCommitted, nil
	default:
		return "", fmt.Errorf("unsupported isolation level %q", s)
	}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.BeginTx(ctx, m.opts)
	if err != nil {
		return nil, err
	}

	return &Tx{tx: tx}, nil
}

// Tx wraps a pgx transaction.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return mapError(t.tx.Commit(ctx))
}

// Rollback rolls back the transaction. Rolling back a finished
// transaction is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

// PgxTx returns the underlying pgx.Tx.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}
