package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iho/cashledger/internal/domain"
)

// BalanceUseCase handles balance business logic.
type BalanceUseCase struct {
	txManager    TransactionManager
	balanceRepo  BalanceRepository
	currencyRepo CurrencyRepository
	cbRepo       CurrencyBalanceRepository
	txRepo       TransactionRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	retrier      Retrier
	metrics      LedgerMetrics
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(
	txManager TransactionManager,
	balanceRepo BalanceRepository,
	currencyRepo CurrencyRepository,
	cbRepo CurrencyBalanceRepository,
	txRepo TransactionRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	retrier Retrier,
	metrics LedgerMetrics,
) *BalanceUseCase {
	return &BalanceUseCase{
		txManager:    txManager,
		balanceRepo:  balanceRepo,
		currencyRepo: currencyRepo,
		cbRepo:       cbRepo,
		txRepo:       txRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		retrier:      retrier,
		metrics:      metrics,
	}
}

// Create creates an empty balance with a unique name.
func (uc *BalanceUseCase) Create(ctx context.Context, name string) (*domain.Balance, error) {
	balance, err := domain.NewBalance(uc.idGen.Generate(), name, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := uc.ensureNameFree(ctx, balance.Name, ""); err != nil {
		return nil, err
	}

	if err := uc.balanceRepo.Create(ctx, balance); err != nil {
		return nil, err
	}
	return balance, nil
}

// Update renames a balance. A nil name leaves it unchanged.
func (uc *BalanceUseCase) Update(ctx context.Context, id string, name *string) (*domain.Balance, error) {
	balance, err := uc.balanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name == nil {
		return balance, nil
	}

	if err := balance.Rename(*name, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := uc.ensureNameFree(ctx, balance.Name, balance.ID); err != nil {
		return nil, err
	}

	if err := uc.balanceRepo.Update(ctx, balance); err != nil {
		return nil, err
	}
	return balance, nil
}

func (uc *BalanceUseCase) ensureNameFree(ctx context.Context, name, ownerID string) error {
	existing, err := uc.balanceRepo.GetByName(ctx, name)
	switch {
	case errors.Is(err, domain.ErrBalanceNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != ownerID:
		return domain.ErrBalanceNameTaken
	default:
		return nil
	}
}

// Delete removes a balance together with its projection rows and history.
func (uc *BalanceUseCase) Delete(ctx context.Context, id string) error {
	return uc.balanceRepo.Delete(ctx, id)
}

// Reset deletes every transaction of a balance and zeroes all its projection
// rows as one unit, holding the balance exclusively while doing so.
func (uc *BalanceUseCase) Reset(ctx context.Context, id string) (*domain.Balance, error) {
	start := time.Now()

	err := inTransaction(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		locked, err := uc.balanceRepo.Lock(ctx, tx, []string{id}, LockExclusive)
		if err != nil {
			return err
		}
		if len(locked) != 1 {
			return domain.ErrBalanceNotFound
		}

		if _, err := uc.cbRepo.LockByBalance(ctx, tx, id); err != nil {
			return err
		}

		deleted, err := uc.txRepo.DeleteByBalance(ctx, tx, id)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if _, err := uc.cbRepo.ZeroByBalance(ctx, tx, id, now); err != nil {
			return err
		}

		return emitEvent(ctx, uc.outboxRepo, uc.idGen, tx,
			domain.AggregateTypeBalance, id, domain.EventTypeBalanceReset,
			domain.BalanceResetEvent{
				BalanceID:           id,
				DeletedTransactions: deleted,
				EventAt:             now.Format(time.RFC3339Nano),
			}, now)
	})

	observe(uc.metrics, OperationReset, start, err)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RecordReset()
	}
	return uc.GetByID(ctx, id)
}

// GetByID returns a balance with its projection rows, the latest
// transactions and the total transaction count.
func (uc *BalanceUseCase) GetByID(ctx context.Context, id string) (*domain.Balance, error) {
	balance, err := uc.balanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cbs, err := uc.cbRepo.ListByBalance(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list currency balances: %w", err)
	}
	for _, cb := range cbs {
		currency, err := uc.currencyRepo.GetByID(ctx, cb.CurrencyID)
		if err != nil {
			return nil, fmt.Errorf("load currency %s: %w", cb.CurrencyID, err)
		}
		cb.Currency = currency
	}

	filter := domain.TransactionFilter{BalanceID: id, Limit: domain.RecentTransactionsLimit}
	sort, err := filter.Normalize()
	if err != nil {
		return nil, err
	}
	recent, total, err := uc.txRepo.Search(ctx, filter, sort)
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}

	balance.CurrencyBalances = cbs
	balance.RecentTransactions = recent
	balance.TransactionCount = total
	return balance, nil
}

// Search lists balances matching filter.
func (uc *BalanceUseCase) Search(ctx context.Context, filter domain.BalanceFilter) ([]*domain.Balance, int64, error) {
	sort, err := filter.Normalize()
	if err != nil {
		return nil, 0, err
	}
	return uc.balanceRepo.Search(ctx, filter, sort)
}
