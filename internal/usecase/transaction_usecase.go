package usecase

import (
	"context"
	"time"

	"github.com/iho/cashledger/internal/domain"
)

// TransactionUseCase is the accounting engine. Every mutation persists the
// transaction rows and the matching projection change in one store
// transaction, so the projection never disagrees with the history.
type TransactionUseCase struct {
	txManager   TransactionManager
	txRepo      TransactionRepository
	balanceRepo BalanceRepository
	outboxRepo  OutboxRepository
	projector   *projector
	idGen       IDGenerator
	retrier     Retrier
	metrics     LedgerMetrics
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager TransactionManager,
	balanceRepo BalanceRepository,
	currencyRepo CurrencyRepository,
	cbRepo CurrencyBalanceRepository,
	txRepo TransactionRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	retrier Retrier,
	metrics LedgerMetrics,
) *TransactionUseCase {
	return &TransactionUseCase{
		txManager:   txManager,
		txRepo:      txRepo,
		balanceRepo: balanceRepo,
		outboxRepo:  outboxRepo,
		projector: &projector{
			balanceRepo:  balanceRepo,
			currencyRepo: currencyRepo,
			cbRepo:       cbRepo,
			idGen:        idGen,
		},
		idGen:   idGen,
		retrier: retrier,
		metrics: metrics,
	}
}

// CreateTransactionInput represents input for creating a transaction.
type CreateTransactionInput struct {
	Type       domain.TransactionType
	Amount     int64
	BalanceID  string
	CurrencyID string
}

// UpdateTransactionInput carries the fields to change; nil means unchanged.
type UpdateTransactionInput struct {
	Type       *domain.TransactionType
	Amount     *int64
	BalanceID  *string
	CurrencyID *string
}

// MovementInput represents input for the fixed-type helpers.
type MovementInput struct {
	BalanceID  string
	CurrencyID string
	Amount     int64
}

// CreateTransferInput represents input for creating a transfer.
type CreateTransferInput struct {
	FromBalanceID string
	ToBalanceID   string
	CurrencyID    string
	Amount        int64
}

// TransferResult holds both legs of a transfer.
type TransferResult struct {
	Expense *domain.Transaction
	Income  *domain.Transaction
}

// DateRangeInput selects transactions created within [From, To].
type DateRangeInput struct {
	BalanceID  string
	CurrencyID string
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

// Create validates a transaction, persists it and applies its effect.
// A SETTLEMENT first removes the pair's prior history and becomes its new
// baseline.
func (uc *TransactionUseCase) Create(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	if !input.Type.Valid() {
		return nil, domain.ErrInvalidTransactionType
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	start := time.Now()

	var created *domain.Transaction
	err := inTransaction(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		if err := uc.projector.lockTargets(ctx, tx, []string{input.BalanceID}, []string{input.CurrencyID}); err != nil {
			return err
		}

		now := time.Now().UTC()
		t, err := domain.NewTransaction(uc.idGen.Generate(), input.Type, input.Amount, input.BalanceID, input.CurrencyID, now)
		if err != nil {
			return err
		}

		if t.Type == domain.TransactionTypeSettlement {
			if _, err := uc.projector.getOrCreate(ctx, tx, t.Key(), now); err != nil {
				return err
			}
			if _, err := uc.txRepo.DeleteByPair(ctx, tx, t.Key()); err != nil {
				return err
			}
		}

		if err := uc.txRepo.Create(ctx, tx, t); err != nil {
			return err
		}

		effect, err := t.Effect()
		if err != nil {
			return err
		}
		if _, err := uc.projector.apply(ctx, tx, []domain.Adjustment{effect}, now); err != nil {
			return err
		}

		if err := emitEvent(ctx, uc.outboxRepo, uc.idGen, tx,
			domain.AggregateTypeTransaction, t.ID, domain.EventTypeTransactionCreated,
			domain.NewTransactionEvent(t, now), now); err != nil {
			return err
		}

		created = t
		return nil
	})

	observe(uc.metrics, OperationCreate, start, err)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RecordTransaction(OperationCreate, created.Type)
	}
	return created, nil
}

// CreateIncome creates an INCOME transaction.
func (uc *TransactionUseCase) CreateIncome(ctx context.Context, input MovementInput) (*domain.Transaction, error) {
	return uc.Create(ctx, CreateTransactionInput{
		Type:       domain.TransactionTypeIncome,
		Amount:     input.Amount,
		BalanceID:  input.BalanceID,
		CurrencyID: input.CurrencyID,
	})
}

// CreateExpense creates an EXPENSE transaction.
func (uc *TransactionUseCase) CreateExpense(ctx context.Context, input MovementInput) (*domain.Transaction, error) {
	return uc.Create(ctx, CreateTransactionInput{
		Type:       domain.TransactionTypeExpense,
		Amount:     input.Amount,
		BalanceID:  input.BalanceID,
		CurrencyID: input.CurrencyID,
	})
}

// Update reverts the old effect on the old pair, persists the new fields and
// applies the new effect on the new pair. When both pairs coincide the two
// deltas are netted first, so only the final amount has to be non-negative.
func (uc *TransactionUseCase) Update(ctx context.Context, id string, input UpdateTransactionInput) (*domain.Transaction, error) {
	if input.Amount != nil {
		if err := domain.ValidateAmount(*input.Amount); err != nil {
			return nil, err
		}
	}
	if input.Type != nil && !input.Type.Valid() {
		return nil, domain.ErrInvalidTransactionType
	}

	start := time.Now()

	var updated *domain.Transaction
	err := inTransaction(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		old, err := uc.lockTransaction(ctx, tx, id, input.BalanceID)
		if err != nil {
			return err
		}

		next := *old
		if input.Type != nil {
			next.Type = *input.Type
		}
		if input.Amount != nil {
			next.Amount = *input.Amount
		}
		if input.BalanceID != nil {
			next.BalanceID = *input.BalanceID
		}
		if input.CurrencyID != nil {
			next.CurrencyID = *input.CurrencyID
		}
		if next.Type == domain.TransactionTypeSettlement {
			return domain.ErrSettlementImmutable
		}

		if next.CurrencyID != old.CurrencyID {
			if err := uc.projector.lockTargets(ctx, tx, nil, []string{next.CurrencyID}); err != nil {
				return err
			}
		}

		inverse, err := old.Inverse()
		if err != nil {
			return err
		}
		effect, err := next.Effect()
		if err != nil {
			return err
		}
		adjs, err := domain.MergeAdjustments(inverse, effect)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		next.UpdatedAt = now
		if err := uc.txRepo.Update(ctx, tx, &next); err != nil {
			return err
		}
		if _, err := uc.projector.apply(ctx, tx, adjs, now); err != nil {
			return err
		}

		if err := emitEvent(ctx, uc.outboxRepo, uc.idGen, tx,
			domain.AggregateTypeTransaction, next.ID, domain.EventTypeTransactionUpdated,
			domain.NewTransactionEvent(&next, now), now); err != nil {
			return err
		}

		updated = &next
		return nil
	})

	observe(uc.metrics, OperationUpdate, start, err)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RecordTransaction(OperationUpdate, updated.Type)
	}
	return updated, nil
}

// Delete applies the inverse effect of a transaction and removes it.
func (uc *TransactionUseCase) Delete(ctx context.Context, id string) error {
	start := time.Now()

	var deleted *domain.Transaction
	err := inTransaction(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		old, err := uc.lockTransaction(ctx, tx, id, nil)
		if err != nil {
			return err
		}

		inverse, err := old.Inverse()
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if _, err := uc.projector.apply(ctx, tx, []domain.Adjustment{inverse}, now); err != nil {
			return err
		}
		if err := uc.txRepo.Delete(ctx, tx, old.ID); err != nil {
			return err
		}

		if err := emitEvent(ctx, uc.outboxRepo, uc.idGen, tx,
			domain.AggregateTypeTransaction, old.ID, domain.EventTypeTransactionDeleted,
			domain.NewTransactionEvent(old, now), now); err != nil {
			return err
		}

		deleted = old
		return nil
	})

	observe(uc.metrics, OperationDelete, start, err)
	if err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.RecordTransaction(OperationDelete, deleted.Type)
	}
	return nil
}

// lockTransaction locks the balances a change touches, then the transaction
// row itself. Balances come first so the engine and Reset agree on lock order.
func (uc *TransactionUseCase) lockTransaction(ctx context.Context, tx Transaction, id string, newBalanceID *string) (*domain.Transaction, error) {
	peek, err := uc.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if peek.Type == domain.TransactionTypeSettlement {
		return nil, domain.ErrSettlementImmutable
	}

	balanceIDs := []string{peek.BalanceID}
	if newBalanceID != nil {
		balanceIDs = append(balanceIDs, *newBalanceID)
	}
	if err := uc.projector.lockTargets(ctx, tx, balanceIDs, nil); err != nil {
		return nil, err
	}

	t, err := uc.txRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if t.BalanceID != peek.BalanceID {
		// Moved by a concurrent update between the peek and the lock.
		if err := uc.projector.lockTargets(ctx, tx, []string{t.BalanceID}, nil); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// CreateTransfer moves amount from one balance to another as an EXPENSE leg
// and an INCOME leg committed together.
func (uc *TransactionUseCase) CreateTransfer(ctx context.Context, input CreateTransferInput) (*TransferResult, error) {
	if input.FromBalanceID == input.ToBalanceID {
		return nil, domain.ErrSameBalance
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	start := time.Now()

	var result *TransferResult
	err := inTransaction(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		if err := uc.projector.lockTargets(ctx, tx,
			[]string{input.FromBalanceID, input.ToBalanceID},
			[]string{input.CurrencyID}); err != nil {
			return err
		}

		now := time.Now().UTC()
		expense, err := domain.NewTransaction(uc.idGen.Generate(), domain.TransactionTypeExpense, input.Amount, input.FromBalanceID, input.CurrencyID, now)
		if err != nil {
			return err
		}
		income, err := domain.NewTransaction(uc.idGen.Generate(), domain.TransactionTypeIncome, input.Amount, input.ToBalanceID, input.CurrencyID, now)
		if err != nil {
			return err
		}

		for _, leg := range []*domain.Transaction{expense, income} {
			if err := uc.txRepo.Create(ctx, tx, leg); err != nil {
				return err
			}
		}

		debit, _ := expense.Effect()
		credit, _ := income.Effect()
		adjs, err := domain.MergeAdjustments(debit, credit)
		if err != nil {
			return err
		}
		if _, err := uc.projector.apply(ctx, tx, adjs, now); err != nil {
			return err
		}

		if err := emitEvent(ctx, uc.outboxRepo, uc.idGen, tx,
			domain.AggregateTypeTransaction, expense.ID, domain.EventTypeTransferCreated,
			domain.TransferCreatedEvent{
				ExpenseTransactionID: expense.ID,
				IncomeTransactionID:  income.ID,
				FromBalanceID:        input.FromBalanceID,
				ToBalanceID:          input.ToBalanceID,
				CurrencyID:           input.CurrencyID,
				Amount:               input.Amount,
				EventAt:              now.Format(time.RFC3339Nano),
			}, now); err != nil {
			return err
		}

		result = &TransferResult{Expense: expense, Income: income}
		return nil
	})

	observe(uc.metrics, OperationTransfer, start, err)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RecordTransfer()
	}
	return result, nil
}

// GetByID returns a transaction.
func (uc *TransactionUseCase) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.txRepo.GetByID(ctx, id)
}

// Search lists transactions matching filter.
func (uc *TransactionUseCase) Search(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error) {
	sort, err := filter.Normalize()
	if err != nil {
		return nil, 0, err
	}
	return uc.txRepo.Search(ctx, filter, sort)
}

// GetByDateRange lists the transactions of a balance created within a range.
func (uc *TransactionUseCase) GetByDateRange(ctx context.Context, input DateRangeInput) ([]*domain.Transaction, int64, error) {
	if input.From.After(input.To) {
		return nil, 0, domain.ErrInvalidDateRange
	}

	from, to := input.From, input.To
	return uc.Search(ctx, domain.TransactionFilter{
		BalanceID:  input.BalanceID,
		CurrencyID: input.CurrencyID,
		DateFrom:   &from,
		DateTo:     &to,
		Limit:      input.Limit,
		Offset:     input.Offset,
	})
}

// GetBalanceStatistics sums the history of a balance. It never reads the
// projection, so after a settlement the two can legitimately differ.
func (uc *TransactionUseCase) GetBalanceStatistics(ctx context.Context, balanceID, currencyID string) (*domain.BalanceStatistics, error) {
	if _, err := uc.balanceRepo.GetByID(ctx, balanceID); err != nil {
		return nil, err
	}
	if currencyID != "" {
		if _, err := uc.projector.currencyRepo.GetByID(ctx, currencyID); err != nil {
			return nil, err
		}
	}

	stats, err := uc.txRepo.Statistics(ctx, balanceID, currencyID)
	if err != nil {
		return nil, err
	}
	stats.BalanceID = balanceID
	stats.CurrencyID = currencyID
	stats.NetAmount = stats.TotalIncome - stats.TotalExpense
	return stats, nil
}
