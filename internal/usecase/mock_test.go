package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/usecase"
	"github.com/iho/cashledger/internal/usecase/mocks"
)

type engineMocks struct {
	txManager  *mocks.MockTransactionManager
	tx         *mocks.MockTransaction
	balances   *mocks.MockBalanceRepository
	currencies *mocks.MockCurrencyRepository
	cbs        *mocks.MockCurrencyBalanceRepository
	txs        *mocks.MockTransactionRepository
	outbox     *mocks.MockOutboxRepository
	ids        *mocks.MockIDGenerator
	retrier    *mocks.MockRetrier
	metrics    *mocks.MockLedgerMetrics
}

func newEngineMocks(t *testing.T) *engineMocks {
	ctrl := gomock.NewController(t)
	m := &engineMocks{
		txManager:  mocks.NewMockTransactionManager(ctrl),
		tx:         mocks.NewMockTransaction(ctrl),
		balances:   mocks.NewMockBalanceRepository(ctrl),
		currencies: mocks.NewMockCurrencyRepository(ctrl),
		cbs:        mocks.NewMockCurrencyBalanceRepository(ctrl),
		txs:        mocks.NewMockTransactionRepository(ctrl),
		outbox:     mocks.NewMockOutboxRepository(ctrl),
		ids:        mocks.NewMockIDGenerator(ctrl),
		retrier:    mocks.NewMockRetrier(ctrl),
		metrics:    mocks.NewMockLedgerMetrics(ctrl),
	}
	m.ids.EXPECT().Generate().Return("id-1").AnyTimes()
	return m
}

func (m *engineMocks) useCase(withRetrier bool) *usecase.TransactionUseCase {
	var retrier usecase.Retrier
	if withRetrier {
		retrier = m.retrier
	}
	return usecase.NewTransactionUseCase(m.txManager, m.balances, m.currencies, m.cbs, m.txs, m.outbox, m.ids, retrier, m.metrics)
}

// expectIncomeWrites sets up a successful income of amount on (b1, c1) up to
// the outbox write, which returns outboxErr.
func (m *engineMocks) expectIncomeWrites(amount int64, outboxErr error) {
	key := domain.PairKey{BalanceID: "b1", CurrencyID: "c1"}
	row := &domain.CurrencyBalance{ID: "cb1", BalanceID: "b1", CurrencyID: "c1"}

	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.balances.EXPECT().Lock(gomock.Any(), m.tx, []string{"b1"}, usecase.LockShared).Return([]*domain.Balance{{ID: "b1"}}, nil)
	m.currencies.EXPECT().GetByID(gomock.Any(), "c1").Return(&domain.Currency{ID: "c1"}, nil)
	m.txs.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.cbs.EXPECT().GetOrCreateForUpdate(gomock.Any(), m.tx, gomock.Any(), key, gomock.Any()).
		Return(&domain.GetOrCreateResult{CurrencyBalance: row, Created: true}, nil)
	m.cbs.EXPECT().Increment(gomock.Any(), m.tx, key, amount, gomock.Any()).
		Return(&domain.CurrencyBalance{ID: "cb1", BalanceID: "b1", CurrencyID: "c1", Amount: amount}, nil)
	m.outbox.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(outboxErr)
}

func incomeInput(amount int64) usecase.MovementInput {
	return usecase.MovementInput{BalanceID: "b1", CurrencyID: "c1", Amount: amount}
}

func TestCreateCommitFailure(t *testing.T) {
	m := newEngineMocks(t)
	m.expectIncomeWrites(100, nil)

	commitErr := errors.New("connection reset")
	gomock.InOrder(
		m.tx.EXPECT().Commit(gomock.Any()).Return(commitErr),
		m.tx.EXPECT().Rollback(gomock.Any()).Return(nil),
	)
	m.metrics.EXPECT().ObserveOperation(usecase.OperationCreate, gomock.Any())
	m.metrics.EXPECT().RecordRejection(usecase.RejectionInternal)

	_, err := m.useCase(false).CreateIncome(context.Background(), incomeInput(100))
	require.ErrorIs(t, err, commitErr)
	assert.Contains(t, err.Error(), "commit transaction")
}

func TestCreateOutboxFailureRollsBack(t *testing.T) {
	m := newEngineMocks(t)
	outboxErr := errors.New("outbox unavailable")
	m.expectIncomeWrites(100, outboxErr)

	m.tx.EXPECT().Commit(gomock.Any()).Times(0)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	m.metrics.EXPECT().ObserveOperation(usecase.OperationCreate, gomock.Any())
	m.metrics.EXPECT().RecordRejection(usecase.RejectionInternal)

	_, err := m.useCase(false).CreateIncome(context.Background(), incomeInput(100))
	require.ErrorIs(t, err, outboxErr)
}

func TestCreateBeginFailure(t *testing.T) {
	m := newEngineMocks(t)
	beginErr := errors.New("pool exhausted")

	m.txManager.EXPECT().Begin(gomock.Any()).Return(nil, beginErr)
	m.metrics.EXPECT().ObserveOperation(usecase.OperationCreate, gomock.Any())
	m.metrics.EXPECT().RecordRejection(usecase.RejectionInternal)

	_, err := m.useCase(false).CreateIncome(context.Background(), incomeInput(100))
	require.ErrorIs(t, err, beginErr)
}

func TestCreateRecordsMetricsOnSuccess(t *testing.T) {
	m := newEngineMocks(t)
	m.expectIncomeWrites(250, nil)

	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	m.metrics.EXPECT().ObserveOperation(usecase.OperationCreate, gomock.Any()).
		Do(func(_ string, d time.Duration) { assert.GreaterOrEqual(t, d, time.Duration(0)) })
	m.metrics.EXPECT().RecordTransaction(usecase.OperationCreate, domain.TransactionTypeIncome)

	got, err := m.useCase(false).CreateIncome(context.Background(), incomeInput(250))
	require.NoError(t, err)
	assert.EqualValues(t, 250, got.Amount)
}

func TestCreateRunsThroughRetrier(t *testing.T) {
	m := newEngineMocks(t)
	m.expectIncomeWrites(100, nil)

	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	m.retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, op func() error) error { return op() })
	m.metrics.EXPECT().ObserveOperation(gomock.Any(), gomock.Any())
	m.metrics.EXPECT().RecordTransaction(usecase.OperationCreate, domain.TransactionTypeIncome)

	_, err := m.useCase(true).CreateIncome(context.Background(), incomeInput(100))
	require.NoError(t, err)
}

func TestInsufficientFundsRejectionReason(t *testing.T) {
	m := newEngineMocks(t)
	key := domain.PairKey{BalanceID: "b1", CurrencyID: "c1"}

	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.balances.EXPECT().Lock(gomock.Any(), m.tx, []string{"b1"}, usecase.LockShared).Return([]*domain.Balance{{ID: "b1"}}, nil)
	m.currencies.EXPECT().GetByID(gomock.Any(), "c1").Return(&domain.Currency{ID: "c1"}, nil)
	m.txs.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.cbs.EXPECT().GetOrCreateForUpdate(gomock.Any(), m.tx, gomock.Any(), key, gomock.Any()).
		Return(&domain.GetOrCreateResult{CurrencyBalance: &domain.CurrencyBalance{ID: "cb1", BalanceID: "b1", CurrencyID: "c1"}}, nil)
	m.cbs.EXPECT().Decrement(gomock.Any(), m.tx, key, int64(5), gomock.Any()).Return(nil, domain.ErrInsufficientFunds)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	m.metrics.EXPECT().ObserveOperation(usecase.OperationCreate, gomock.Any())
	m.metrics.EXPECT().RecordRejection(usecase.RejectionInsufficientFunds)

	_, err := m.useCase(false).CreateExpense(context.Background(), incomeInput(5))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestResetLocksExclusively(t *testing.T) {
	m := newEngineMocks(t)

	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.balances.EXPECT().Lock(gomock.Any(), m.tx, []string{"b1"}, usecase.LockExclusive).Return(nil, domain.ErrBalanceNotFound)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	m.metrics.EXPECT().ObserveOperation(usecase.OperationReset, gomock.Any())
	m.metrics.EXPECT().RecordRejection(usecase.RejectionNotFound)

	uc := usecase.NewBalanceUseCase(m.txManager, m.balances, m.currencies, m.cbs, m.txs, m.outbox, m.ids, nil, m.metrics)
	_, err := uc.Reset(context.Background(), "b1")
	require.ErrorIs(t, err, domain.ErrBalanceNotFound)
}
