package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/infrastructure/postgres/generated"
	"github.com/iho/cashledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	db      generated.DBTX
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{
		db:      db,
		queries: generated.New(db),
	}
}

// Create inserts a transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	return mapError(queries.CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:         t.ID,
		Type:       string(t.Type),
		Amount:     t.Amount,
		BalanceID:  t.BalanceID,
		CurrencyID: t.CurrencyID,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}))
}

// Update overwrites a transaction.
func (r *TransactionRepository) Update(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	n, err := queries.UpdateTransaction(ctx, generated.UpdateTransactionParams{
		ID:         t.ID,
		Type:       string(t.Type),
		Amount:     t.Amount,
		BalanceID:  t.BalanceID,
		CurrencyID: t.CurrencyID,
		UpdatedAt:  t.UpdatedAt,
	})
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// Delete removes a transaction.
func (r *TransactionRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	n, err := queries.DeleteTransaction(ctx, id)
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrTransactionNotFound)
	}
	return rowToTransaction(row), nil
}

// GetByIDForUpdate retrieves a transaction by ID with a FOR UPDATE lock.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	row, err := queries.GetTransactionByIDForUpdate(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrTransactionNotFound)
	}
	return rowToTransaction(row), nil
}

// DeleteByBalance removes every transaction of a balance.
func (r *TransactionRepository) DeleteByBalance(ctx context.Context, tx usecase.Transaction, balanceID string) (int64, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	n, err := queries.DeleteTransactionsByBalance(ctx, balanceID)
	return n, mapError(err)
}

// DeleteByPair removes every transaction of a (balance, currency) pair.
func (r *TransactionRepository) DeleteByPair(ctx context.Context, tx usecase.Transaction, key domain.PairKey) (int64, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	n, err := queries.DeleteTransactionsByPair(ctx, generated.DeleteTransactionsByPairParams{
		BalanceID:  key.BalanceID,
		CurrencyID: key.CurrencyID,
	})
	return n, mapError(err)
}

// Search lists transactions matching filter.
func (r *TransactionRepository) Search(ctx context.Context, filter domain.TransactionFilter, sort domain.Sort) ([]*domain.Transaction, int64, error) {
	var q searchQuery
	if filter.Type != "" {
		q.where("type = ?", string(filter.Type))
	}
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
	if filter.DateFrom != nil {
		q.where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		q.where("created_at <= ?", *filter.DateTo)
	}

	total, err := q.count(ctx, r.db, "transactions")
	if err != nil {
		return nil, 0, err
	}

	sql := "SELECT id, type, amount, balance_id, currency_id, created_at, updated_at FROM transactions" + q.clause() +
		q.page(sortColumn(sort.Field), sort, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, sql, q.args...)
	if err != nil {
		return nil, 0, err
	}

	txs, err := collect(rows, func(rows pgx.Rows) (*domain.Transaction, error) {
		var row generated.Transaction
		err := rows.Scan(&row.ID, &row.Type, &row.Amount, &row.BalanceID, &row.CurrencyID, &row.CreatedAt, &row.UpdatedAt)
		return rowToTransaction(row), err
	})
	if err != nil {
		return nil, 0, err
	}

	return txs, total, nil
}

// Statistics sums INCOME and EXPENSE amounts and counts every row.
func (r *TransactionRepository) Statistics(ctx context.Context, balanceID, currencyID string) (*domain.BalanceStatistics, error) {
	row, err := r.queries.GetBalanceStatistics(ctx, generated.GetBalanceStatisticsParams{
		BalanceID:  balanceID,
		CurrencyID: currencyID,
	})
	if err != nil {
		return nil, err
	}

	return &domain.BalanceStatistics{
		BalanceID:         balanceID,
		CurrencyID:        currencyID,
		TotalIncome:       row.TotalIncome,
		TotalExpense:      row.TotalExpense,
		TotalTransactions: row.TotalTransactions,
	}, nil
}

// PairTotals aggregates history per pair in lock order.
func (r *TransactionRepository) PairTotals(ctx context.Context, balanceID string) ([]*domain.PairTotals, error) {
	rows, err := r.queries.GetPairTotals(ctx, balanceID)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.PairTotals, 0, len(rows))
	for _, row := range rows {
		out = append(out, &domain.PairTotals{
			Key:      domain.PairKey{BalanceID: row.BalanceID, CurrencyID: row.CurrencyID},
			Baseline: row.Baseline,
			Credits:  row.Credits,
			Debits:   row.Debits,
		})
	}
	return out, nil
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:         row.ID,
		Type:       domain.TransactionType(row.Type),
		Amount:     row.Amount,
		BalanceID:  row.BalanceID,
		CurrencyID: row.CurrencyID,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
