package usecase_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iho/cashledger/internal/adapter/repository/memory"
	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/usecase"
)

const (
	usd = "cur_usd"
	eur = "cur_eur"
)

type seqIDs struct{ n atomic.Int64 }

func (s *seqIDs) Generate() string {
	return fmt.Sprintf("id-%06d", s.n.Add(1))
}

// ledger wires every use case to one memory store.
type ledger struct {
	store      *memory.Store
	outbox     *memory.OutboxRepository
	balances   *usecase.BalanceUseCase
	currencies *usecase.CurrencyUseCase
	cbs        *usecase.CurrencyBalanceUseCase
	txs        *usecase.TransactionUseCase
	recon      *usecase.ReconciliationUseCase
}

func newLedger(t *testing.T) *ledger {
	t.Helper()

	store := memory.NewStore()
	txManager := memory.NewTxManager(store)
	balanceRepo := memory.NewBalanceRepository(store)
	currencyRepo := memory.NewCurrencyRepository(store)
	cbRepo := memory.NewCurrencyBalanceRepository(store)
	txRepo := memory.NewTransactionRepository(store)
	outboxRepo := memory.NewOutboxRepository(store)
	ids := &seqIDs{}

	l := &ledger{
		store:      store,
		outbox:     outboxRepo,
		balances:   usecase.NewBalanceUseCase(txManager, balanceRepo, currencyRepo, cbRepo, txRepo, outboxRepo, ids, nil, nil),
		currencies: usecase.NewCurrencyUseCase(currencyRepo, ids),
		cbs:        usecase.NewCurrencyBalanceUseCase(txManager, balanceRepo, currencyRepo, cbRepo, ids, nil, nil),
		txs:        usecase.NewTransactionUseCase(txManager, balanceRepo, currencyRepo, cbRepo, txRepo, outboxRepo, ids, nil, nil),
		recon:      usecase.NewReconciliationUseCase(balanceRepo, cbRepo, txRepo),
	}

	_, err := l.currencies.Seed(context.Background(), usecase.DefaultCurrencies)
	require.NoError(t, err)
	return l
}

func (l *ledger) balance(t *testing.T, name string) *domain.Balance {
	t.Helper()

	b, err := l.balances.Create(context.Background(), name)
	require.NoError(t, err)
	return b
}

func (l *ledger) income(t *testing.T, balanceID, currencyID string, amount int64) *domain.Transaction {
	t.Helper()

	tx, err := l.txs.CreateIncome(context.Background(), usecase.MovementInput{BalanceID: balanceID, CurrencyID: currencyID, Amount: amount})
	require.NoError(t, err)
	return tx
}

func (l *ledger) expense(t *testing.T, balanceID, currencyID string, amount int64) *domain.Transaction {
	t.Helper()

	tx, err := l.txs.CreateExpense(context.Background(), usecase.MovementInput{BalanceID: balanceID, CurrencyID: currencyID, Amount: amount})
	require.NoError(t, err)
	return tx
}

// amount reads the projection of a pair, zero when no row exists.
func (l *ledger) amount(t *testing.T, balanceID, currencyID string) int64 {
	t.Helper()

	cb, err := l.cbs.GetByBalanceAndCurrency(context.Background(), balanceID, currencyID)
	if err != nil {
		require.ErrorIs(t, err, domain.ErrCurrencyBalanceNotFound)
		return 0
	}
	return cb.Amount
}

// requireReconciled asserts the projection matches the history everywhere.
func (l *ledger) requireReconciled(t *testing.T) {
	t.Helper()

	report, err := l.recon.GenerateReport(context.Background())
	require.NoError(t, err)
	require.Empty(t, report.Discrepancies)
}

func ptr[T any](v T) *T { return &v }
