package usecase

import (
	"context"
	"time"

	"github.com/iho/cashledger/internal/domain"
)

// CurrencyBalanceUseCase exposes the projection primitives. Each call runs in
// its own store transaction.
type CurrencyBalanceUseCase struct {
	txManager TransactionManager
	cbRepo    CurrencyBalanceRepository
	projector *projector
	retrier   Retrier
	metrics   LedgerMetrics
}

// NewCurrencyBalanceUseCase creates a new CurrencyBalanceUseCase.
func NewCurrencyBalanceUseCase(
	txManager TransactionManager,
	balanceRepo BalanceRepository,
	currencyRepo CurrencyRepository,
	cbRepo CurrencyBalanceRepository,
	idGen IDGenerator,
	retrier Retrier,
	metrics LedgerMetrics,
) *CurrencyBalanceUseCase {
	return &CurrencyBalanceUseCase{
		txManager: txManager,
		cbRepo:    cbRepo,
		projector: &projector{
			balanceRepo:  balanceRepo,
			currencyRepo: currencyRepo,
			cbRepo:       cbRepo,
			idGen:        idGen,
		},
		retrier: retrier,
		metrics: metrics,
	}
}

// CurrencyBalanceInput identifies a projection row and carries an amount.
type CurrencyBalanceInput struct {
	BalanceID  string
	CurrencyID string
	Amount     int64
}

func (in CurrencyBalanceInput) key() domain.PairKey {
	return domain.PairKey{BalanceID: in.BalanceID, CurrencyID: in.CurrencyID}
}

// Create creates the row for a pair explicitly. It fails with
// domain.ErrCurrencyBalanceExists when the pair already has one.
func (uc *CurrencyBalanceUseCase) Create(ctx context.Context, input CurrencyBalanceInput) (*domain.CurrencyBalance, error) {
	if err := domain.ValidateNonNegativeAmount(input.Amount); err != nil {
		return nil, err
	}

	var cb *domain.CurrencyBalance
	err := inTransaction(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		if err := uc.projector.lockTargets(ctx, tx, []string{input.BalanceID}, []string{input.CurrencyID}); err != nil {
			return err
		}

		now := time.Now().UTC()
		cb = domain.NewCurrencyBalance(uc.projector.idGen.Generate(), input.key(), now)
		cb.Amount = input.Amount
		return uc.cbRepo.Create(ctx, tx, cb)
	})
	if err != nil {
		return nil, err
	}
	return cb, nil
}

// GetOrCreate returns the row for a pair, creating it at zero if absent.
func (uc *CurrencyBalanceUseCase) GetOrCreate(ctx context.Context, balanceID, currencyID string) (*domain.GetOrCreateResult, error) {
	var res *domain.GetOrCreateResult
	err := inTransaction(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		if err := uc.projector.lockTargets(ctx, tx, []string{balanceID}, []string{currencyID}); err != nil {
			return err
		}

		var err error
		res, err = uc.projector.getOrCreate(ctx, tx, domain.PairKey{BalanceID: balanceID, CurrencyID: currencyID}, time.Now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// SetAmount overwrites the amount of a pair. Zero is allowed.
func (uc *CurrencyBalanceUseCase) SetAmount(ctx context.Context, input CurrencyBalanceInput) (*domain.CurrencyBalance, error) {
	if err := domain.ValidateNonNegativeAmount(input.Amount); err != nil {
		return nil, err
	}
	return uc.adjust(ctx, OperationSet, input, domain.Set(input.Amount))
}

// IncrementAmount adds a positive amount to a pair.
func (uc *CurrencyBalanceUseCase) IncrementAmount(ctx context.Context, input CurrencyBalanceInput) (*domain.CurrencyBalance, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	return uc.adjust(ctx, OperationIncrement, input, domain.Credit(input.Amount))
}

// DecrementAmount subtracts a positive amount from a pair and fails with
// domain.ErrInsufficientFunds rather than going below zero.
func (uc *CurrencyBalanceUseCase) DecrementAmount(ctx context.Context, input CurrencyBalanceInput) (*domain.CurrencyBalance, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	return uc.adjust(ctx, OperationDecrement, input, domain.Debit(input.Amount))
}

func (uc *CurrencyBalanceUseCase) adjust(ctx context.Context, operation string, input CurrencyBalanceInput, delta domain.Delta) (*domain.CurrencyBalance, error) {
	start := time.Now()

	var cb *domain.CurrencyBalance
	err := inTransaction(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		if err := uc.projector.lockTargets(ctx, tx, []string{input.BalanceID}, []string{input.CurrencyID}); err != nil {
			return err
		}

		rows, err := uc.projector.apply(ctx, tx, []domain.Adjustment{{Key: input.key(), Delta: delta}}, time.Now().UTC())
		if err != nil {
			return err
		}
		cb = rows[0]
		return nil
	})

	observe(uc.metrics, operation, start, err)
	if err != nil {
		return nil, err
	}
	return cb, nil
}

// Delete removes a projection row.
func (uc *CurrencyBalanceUseCase) Delete(ctx context.Context, id string) error {
	return uc.cbRepo.Delete(ctx, id)
}

// GetByID returns a projection row.
func (uc *CurrencyBalanceUseCase) GetByID(ctx context.Context, id string) (*domain.CurrencyBalance, error) {
	return uc.cbRepo.GetByID(ctx, id)
}

// GetByBalanceAndCurrency returns the row of a pair without creating it.
func (uc *CurrencyBalanceUseCase) GetByBalanceAndCurrency(ctx context.Context, balanceID, currencyID string) (*domain.CurrencyBalance, error) {
	return uc.cbRepo.GetByKey(ctx, domain.PairKey{BalanceID: balanceID, CurrencyID: currencyID})
}

// Search lists projection rows matching filter.
func (uc *CurrencyBalanceUseCase) Search(ctx context.Context, filter domain.CurrencyBalanceFilter) ([]*domain.CurrencyBalance, int64, error) {
	sort, err := filter.Normalize()
	if err != nil {
		return nil, 0, err
	}
	return uc.cbRepo.Search(ctx, filter, sort)
}
