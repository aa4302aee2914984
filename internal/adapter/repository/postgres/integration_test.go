//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"

	"github.com/iho/cashledger/internal/adapter/repository/postgres"
	"github.com/iho/cashledger/internal/domain"
	pginfra "github.com/iho/cashledger/internal/infrastructure/postgres"
	"github.com/iho/cashledger/internal/usecase"
)

const (
	usd = "cur_usd"
	eur = "cur_eur"
)

// LedgerSuite runs the engine against a real database. DATABASE_URL must
// point at a disposable database.
type LedgerSuite struct {
	suite.Suite

	pool     *pgxpool.Pool
	outbox   *postgres.OutboxRepository
	balances *usecase.BalanceUseCase
	txs      *usecase.TransactionUseCase
	cbs      *usecase.CurrencyBalanceUseCase
	recon    *usecase.ReconciliationUseCase
}

func TestLedgerSuite(t *testing.T) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set")
	}
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupSuite() {
	ctx := context.Background()
	url := os.Getenv("DATABASE_URL")

	s.Require().NoError(pginfra.NewMigrator(url, "", zerolog.Nop()).Up())

	pool, err := pginfra.NewPool(ctx, url, 20, 2)
	s.Require().NoError(err)
	s.pool = pool

	isolation := os.Getenv("DATABASE_ISOLATION")
	if isolation == "" {
		isolation = "read committed"
	}
	txManager, err := postgres.NewTxManager(pool, isolation)
	s.Require().NoError(err)

	balanceRepo := postgres.NewBalanceRepository(pool)
	currencyRepo := postgres.NewCurrencyRepository(pool)
	cbRepo := postgres.NewCurrencyBalanceRepository(pool)
	txRepo := postgres.NewTransactionRepository(pool)
	s.outbox = postgres.NewOutboxRepository(pool)
	ids := postgres.NewULIDGenerator()
	retrier := postgres.NewRetrier(zerolog.Nop())

	s.balances = usecase.NewBalanceUseCase(txManager, balanceRepo, currencyRepo, cbRepo, txRepo, s.outbox, ids, retrier, nil)
	s.txs = usecase.NewTransactionUseCase(txManager, balanceRepo, currencyRepo, cbRepo, txRepo, s.outbox, ids, retrier, nil)
	s.cbs = usecase.NewCurrencyBalanceUseCase(txManager, balanceRepo, currencyRepo, cbRepo, ids, retrier, nil)
	s.recon = usecase.NewReconciliationUseCase(balanceRepo, cbRepo, txRepo)
}

func (s *LedgerSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// SetupTest empties everything but the seeded currencies.
func (s *LedgerSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(),
		`TRUNCATE outbox_events, transactions, currency_balances, balances CASCADE`)
	s.Require().NoError(err)
}

func (s *LedgerSuite) balance(name string) *domain.Balance {
	b, err := s.balances.Create(context.Background(), name)
	s.Require().NoError(err)
	return b
}

func (s *LedgerSuite) amount(balanceID, currencyID string) int64 {
	cb, err := s.cbs.GetByBalanceAndCurrency(context.Background(), balanceID, currencyID)
	if errors.Is(err, domain.ErrCurrencyBalanceNotFound) {
		return 0
	}
	s.Require().NoError(err)
	return cb.Amount
}

func (s *LedgerSuite) requireReconciled() {
	report, err := s.recon.GenerateReport(context.Background())
	s.Require().NoError(err)
	s.Require().Empty(report.Discrepancies)
}

func (s *LedgerSuite) TestCashboxScenario() {
	ctx := context.Background()
	b := s.balance("Cashbox")
	move := func(amount int64) usecase.MovementInput {
		return usecase.MovementInput{BalanceID: b.ID, CurrencyID: usd, Amount: amount}
	}

	_, err := s.txs.CreateIncome(ctx, move(10000))
	s.Require().NoError(err)
	exp, err := s.txs.CreateExpense(ctx, move(3000))
	s.Require().NoError(err)
	s.EqualValues(7000, s.amount(b.ID, usd))

	_, err = s.txs.CreateExpense(ctx, move(7001))
	s.ErrorIs(err, domain.ErrInsufficientFunds)
	s.EqualValues(7000, s.amount(b.ID, usd))

	_, err = s.txs.Update(ctx, exp.ID, usecase.UpdateTransactionInput{Amount: ptr[int64](5000)})
	s.Require().NoError(err)
	s.EqualValues(5000, s.amount(b.ID, usd))

	s.Require().NoError(s.txs.Delete(ctx, exp.ID))
	s.EqualValues(10000, s.amount(b.ID, usd))

	settled, err := s.txs.Create(ctx, usecase.CreateTransactionInput{
		Type: domain.TransactionTypeSettlement, Amount: 2500, BalanceID: b.ID, CurrencyID: usd,
	})
	s.Require().NoError(err)
	s.EqualValues(2500, s.amount(b.ID, usd))
	s.ErrorIs(s.txs.Delete(ctx, settled.ID), domain.ErrSettlementImmutable)

	s.requireReconciled()
}

func (s *LedgerSuite) TestConcurrentExpensesNeverOverdraw() {
	ctx := context.Background()
	b := s.balance("Cashbox")
	_, err := s.txs.CreateIncome(ctx, usecase.MovementInput{BalanceID: b.ID, CurrencyID: usd, Amount: 500})
	s.Require().NoError(err)

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failures  []error
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.txs.CreateExpense(ctx, usecase.MovementInput{BalanceID: b.ID, CurrencyID: usd, Amount: 100})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			succeeded++
		}()
	}
	wg.Wait()

	s.Equal(5, succeeded)
	for _, err := range failures {
		s.ErrorIs(err, domain.ErrInsufficientFunds)
	}
	s.Zero(s.amount(b.ID, usd))
	s.requireReconciled()
}

func (s *LedgerSuite) TestTransfer() {
	ctx := context.Background()
	from := s.balance("Safe")
	to := s.balance("Register")
	_, err := s.txs.CreateIncome(ctx, usecase.MovementInput{BalanceID: from.ID, CurrencyID: eur, Amount: 900})
	s.Require().NoError(err)

	res, err := s.txs.CreateTransfer(ctx, usecase.CreateTransferInput{
		FromBalanceID: from.ID, ToBalanceID: to.ID, CurrencyID: eur, Amount: 400,
	})
	s.Require().NoError(err)
	s.Equal(domain.TransactionTypeExpense, res.Expense.Type)
	s.Equal(domain.TransactionTypeIncome, res.Income.Type)
	s.EqualValues(500, s.amount(from.ID, eur))
	s.EqualValues(400, s.amount(to.ID, eur))

	_, err = s.txs.CreateTransfer(ctx, usecase.CreateTransferInput{
		FromBalanceID: to.ID, ToBalanceID: from.ID, CurrencyID: eur, Amount: 401,
	})
	s.ErrorIs(err, domain.ErrInsufficientFunds)
	s.EqualValues(400, s.amount(to.ID, eur))

	events, err := s.outbox.GetUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Len(events, 2)
	s.Equal(domain.EventTypeTransferCreated, events[1].EventType)

	s.requireReconciled()
}

func (s *LedgerSuite) TestResetClearsHistory() {
	ctx := context.Background()
	b := s.balance("Cashbox")
	_, err := s.txs.CreateIncome(ctx, usecase.MovementInput{BalanceID: b.ID, CurrencyID: usd, Amount: 300})
	s.Require().NoError(err)
	_, err = s.txs.CreateIncome(ctx, usecase.MovementInput{BalanceID: b.ID, CurrencyID: eur, Amount: 50})
	s.Require().NoError(err)

	_, err = s.balances.Reset(ctx, b.ID)
	s.Require().NoError(err)
	s.Zero(s.amount(b.ID, usd))
	s.Zero(s.amount(b.ID, eur))

	txs, total, err := s.txs.Search(ctx, domain.TransactionFilter{BalanceID: b.ID})
	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(txs)
}

func ptr[T any](v T) *T { return &v }
