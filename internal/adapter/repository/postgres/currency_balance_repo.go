package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/infrastructure/postgres/generated"
	"github.com/iho/cashledger/internal/usecase"
)

// CurrencyBalanceRepository implements usecase.CurrencyBalanceRepository.
type CurrencyBalanceRepository struct {
	db      generated.DBTX
	queries *generated.Queries
}

// NewCurrencyBalanceRepository creates a new CurrencyBalanceRepository.
func NewCurrencyBalanceRepository(db generated.DBTX) *CurrencyBalanceRepository {
	return &CurrencyBalanceRepository{
		db:      db,
		queries: generated.New(db),
	}
}

// Create inserts a projection row.
func (r *CurrencyBalanceRepository) Create(ctx context.Context, tx usecase.Transaction, cb *domain.CurrencyBalance) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	return mapError(queries.CreateCurrencyBalance(ctx, generated.CreateCurrencyBalanceParams{
		ID:         cb.ID,
		BalanceID:  cb.BalanceID,
		CurrencyID: cb.CurrencyID,
		Amount:     cb.Amount,
		CreatedAt:  cb.CreatedAt,
		UpdatedAt:  cb.UpdatedAt,
	}))
}

// GetOrCreateForUpdate inserts the row of key at zero unless it exists and
// returns it locked. Concurrent callers converge on the same row.
func (r *CurrencyBalanceRepository) GetOrCreateForUpdate(ctx context.Context, tx usecase.Transaction, id string, key domain.PairKey, now time.Time) (*domain.GetOrCreateResult, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	created := true
	_, err := queries.InsertCurrencyBalanceIfAbsent(ctx, generated.InsertCurrencyBalanceIfAbsentParams{
		ID:         id,
		BalanceID:  key.BalanceID,
		CurrencyID: key.CurrencyID,
		CreatedAt:  now,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		created = false
	} else if err != nil {
		return nil, mapError(err)
	}

	row, err := queries.GetCurrencyBalanceByPairForUpdate(ctx, generated.GetCurrencyBalanceByPairForUpdateParams{
		BalanceID:  key.BalanceID,
		CurrencyID: key.CurrencyID,
	})
	if err != nil {
		return nil, notFound(err, domain.ErrCurrencyBalanceNotFound)
	}

	return &domain.GetOrCreateResult{CurrencyBalance: rowToCurrencyBalance(row), Created: created}, nil
}

// SetAmount overwrites the amount of key.
func (r *CurrencyBalanceRepository) SetAmount(ctx context.Context, tx usecase.Transaction, key domain.PairKey, amount int64, now time.Time) (*domain.CurrencyBalance, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	row, err := queries.SetCurrencyBalanceAmount(ctx, generated.SetCurrencyBalanceAmountParams{
		BalanceID:  key.BalanceID,
		CurrencyID: key.CurrencyID,
		Amount:     amount,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, notFound(err, domain.ErrCurrencyBalanceNotFound)
	}
	return rowToCurrencyBalance(row), nil
}

// Increment adds amount to key.
func (r *CurrencyBalanceRepository) Increment(ctx context.Context, tx usecase.Transaction, key domain.PairKey, amount int64, now time.Time) (*domain.CurrencyBalance, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	row, err := queries.IncrementCurrencyBalance(ctx, generated.IncrementCurrencyBalanceParams{
		BalanceID:  key.BalanceID,
		CurrencyID: key.CurrencyID,
		Amount:     amount,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, notFound(err, domain.ErrCurrencyBalanceNotFound)
	}
	return rowToCurrencyBalance(row), nil
}

// Decrement subtracts amount from key. The guarded update matches no row
// when the amount would go below zero.
func (r *CurrencyBalanceRepository) Decrement(ctx context.Context, tx usecase.Transaction, key domain.PairKey, amount int64, now time.Time) (*domain.CurrencyBalance, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	row, err := queries.DecrementCurrencyBalance(ctx, generated.DecrementCurrencyBalanceParams{
		BalanceID:  key.BalanceID,
		CurrencyID: key.CurrencyID,
		Amount:     amount,
		UpdatedAt:  now,
	})
	if err == nil {
		return rowToCurrencyBalance(row), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapError(err)
	}

	_, err = queries.GetCurrencyBalanceByPair(ctx, generated.GetCurrencyBalanceByPairParams{
		BalanceID:  key.BalanceID,
		CurrencyID: key.CurrencyID,
	})
	if err != nil {
		return nil, notFound(err, domain.ErrCurrencyBalanceNotFound)
	}
	return nil, domain.ErrInsufficientFunds
}

// LockByBalance locks every row of a balance in currency order.
func (r *CurrencyBalanceRepository) LockByBalance(ctx context.Context, tx usecase.Transaction, balanceID string) ([]*domain.CurrencyBalance, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	rows, err := queries.LockCurrencyBalancesByBalance(ctx, balanceID)
	if err != nil {
		return nil, mapError(err)
	}
	return rowsToCurrencyBalances(rows), nil
}

// ZeroByBalance sets every row of a balance to zero.
func (r *CurrencyBalanceRepository) ZeroByBalance(ctx context.Context, tx usecase.Transaction, balanceID string, now time.Time) (int64, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	n, err := queries.ZeroCurrencyBalancesByBalance(ctx, generated.ZeroCurrencyBalancesByBalanceParams{
		BalanceID: balanceID,
		UpdatedAt: now,
	})
	return n, mapError(err)
}

// Delete removes a projection row.
func (r *CurrencyBalanceRepository) Delete(ctx context.Context, id string) error {
	n, err := r.queries.DeleteCurrencyBalance(ctx, id)
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return domain.ErrCurrencyBalanceNotFound
	}
	return nil
}

// GetByID retrieves a projection row by ID.
func (r *CurrencyBalanceRepository) GetByID(ctx context.Context, id string) (*domain.CurrencyBalance, error) {
	row, err := r.queries.GetCurrencyBalanceByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrCurrencyBalanceNotFound)
	}
	return rowToCurrencyBalance(row), nil
}

// GetByKey retrieves the row of a pair.
func (r *CurrencyBalanceRepository) GetByKey(ctx context.Context, key domain.PairKey) (*domain.CurrencyBalance, error) {
	row, err := r.queries.GetCurrencyBalanceByPair(ctx, generated.GetCurrencyBalanceByPairParams{
		BalanceID:  key.BalanceID,
		CurrencyID: key.CurrencyID,
	})
	if err != nil {
		return nil, notFound(err, domain.ErrCurrencyBalanceNotFound)
	}
	return rowToCurrencyBalance(row), nil
}

// ListByBalance returns the rows of a balance in currency order.
func (r *CurrencyBalanceRepository) ListByBalance(ctx context.Context, balanceID string) ([]*domain.CurrencyBalance, error) {
	rows, err := r.queries.ListCurrencyBalancesByBalance(ctx, balanceID)
	if err != nil {
		return nil, err
	}
	return rowsToCurrencyBalances(rows), nil
}

// Search lists projection rows matching filter.
func (r *CurrencyBalanceRepository) Search(ctx context.Context, filter domain.CurrencyBalanceFilter, sort domain.Sort) ([]*domain.CurrencyBalance, int64, error) {
	var q searchQuery
	if filter.BalanceID != "" {
		q.where("balance_id = ?", filter.BalanceID)
	}
	if filter.CurrencyID != "" {
		q.where("currency_id = ?", filter.CurrencyID)
	}
	if filter.MinAmount != nil {
		q.where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		q.where("amount <= ?", *filter.MaxAmount)
	}

	total, err := q.count(ctx, r.db, "currency_balances")
	if err != nil {
		return nil, 0, err
	}

	sql := "SELECT id, balance_id, currency_id, amount, created_at, updated_at FROM currency_balances" + q.clause() +
		q.page(sortColumn(sort.Field), sort, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, sql, q.args...)
	if err != nil {
		return nil, 0, err
	}

	cbs, err := collect(rows, func(rows pgx.Rows) (*domain.CurrencyBalance, error) {
		var cb domain.CurrencyBalance
		err := rows.Scan(&cb.ID, &cb.BalanceID, &cb.CurrencyID, &cb.Amount, &cb.CreatedAt, &cb.UpdatedAt)
		return &cb, err
	})
	if err != nil {
		return nil, 0, err
	}

	return cbs, total, nil
}

func rowToCurrencyBalance(row generated.CurrencyBalance) *domain.CurrencyBalance {
	return &domain.CurrencyBalance{
		ID:         row.ID,
		BalanceID:  row.BalanceID,
		CurrencyID: row.CurrencyID,
		Amount:     row.Amount,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

func rowsToCurrencyBalances(rows []generated.CurrencyBalance) []*domain.CurrencyBalance {
	out := make([]*domain.CurrencyBalance, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToCurrencyBalance(row))
	}
	return out
}
