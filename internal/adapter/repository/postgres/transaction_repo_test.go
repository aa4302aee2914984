package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cashledger/internal/domain"
)

func TestTransactionRepositoryCreate(t *testing.T) {
	pool := newMockPool(t)
	repo := NewTransactionRepository(pool)
	tx := beginTx(t, pool)
	now := time.Now().UTC()

	pool.ExpectExec("INSERT INTO transactions").
		WithArgs("tx-1", "INCOME", int64(1000), "bal", "cur", now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), tx, &domain.Transaction{
		ID: "tx-1", Type: domain.TransactionTypeIncome, Amount: 1000,
		BalanceID: "bal", CurrencyID: "cur", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assertExpectations(t, pool)
}

func TestTransactionRepositoryGetByIDForUpdateMissing(t *testing.T) {
	pool := newMockPool(t)
	repo := NewTransactionRepository(pool)
	tx := beginTx(t, pool)

	pool.ExpectQuery("FOR UPDATE").WithArgs("nope").WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByIDForUpdate(context.Background(), tx, "nope")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestTransactionRepositoryDeleteByPair(t *testing.T) {
	pool := newMockPool(t)
	repo := NewTransactionRepository(pool)
	tx := beginTx(t, pool)

	pool.ExpectExec("DELETE FROM transactions WHERE balance_id = \\$1 AND currency_id = \\$2").
		WithArgs("bal", "cur").
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	n, err := repo.DeleteByPair(context.Background(), tx, domain.PairKey{BalanceID: "bal", CurrencyID: "cur"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestTransactionRepositoryStatistics(t *testing.T) {
	pool := newMockPool(t)
	repo := NewTransactionRepository(pool)

	pool.ExpectQuery("total_income").
		WithArgs("bal", "").
		WillReturnRows(pgxmock.NewRows([]string{"total_income", "total_expense", "total_transactions"}).
			AddRow(int64(1500), int64(400), int64(5)))

	stats, err := repo.Statistics(context.Background(), "bal", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1500), stats.TotalIncome)
	assert.Equal(t, int64(400), stats.TotalExpense)
	assert.Equal(t, int64(5), stats.TotalTransactions)
	assert.Equal(t, "bal", stats.BalanceID)
}

func TestTransactionRepositoryPairTotals(t *testing.T) {
	pool := newMockPool(t)
	repo := NewTransactionRepository(pool)

	pool.ExpectQuery("GROUP BY balance_id, currency_id").
		WithArgs("").
		WillReturnRows(pgxmock.NewRows([]string{"balance_id", "currency_id", "baseline", "credits", "debits"}).
			AddRow("a", "usd", int64(0), int64(300), int64(100)).
			AddRow("b", "eur", int64(1000), int64(0), int64(250)))

	totals, err := repo.PairTotals(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, int64(200), totals[0].Expected())
	assert.Equal(t, int64(750), totals[1].Expected())
	assert.Equal(t, domain.PairKey{BalanceID: "b", CurrencyID: "eur"}, totals[1].Key)
}

func TestTransactionRepositorySearchByDateRange(t *testing.T) {
	pool := newMockPool(t)
	repo := NewTransactionRepository(pool)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	pool.ExpectQuery(`COUNT\(\*\) FROM transactions WHERE type = \$1 AND created_at >= \$2 AND created_at <= \$3`).
		WithArgs("EXPENSE", from, to).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	pool.ExpectQuery(`ORDER BY created_at DESC, id DESC`).
		WithArgs("EXPENSE", from, to, 20, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "type", "amount", "balance_id", "currency_id", "created_at", "updated_at"}).
			AddRow("tx", "EXPENSE", int64(10), "bal", "cur", from, from))

	txs, total, err := repo.Search(context.Background(),
		domain.TransactionFilter{Type: domain.TransactionTypeExpense, DateFrom: &from, DateTo: &to, Limit: 20},
		domain.Sort{Field: domain.SortByCreatedAt, Order: domain.SortDesc})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TransactionTypeExpense, txs[0].Type)
}
