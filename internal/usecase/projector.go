package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iho/cashledger/internal/domain"
)

// projector applies adjustments to the CurrencyBalance projection inside an
// open store transaction. It is shared by the engine and the standalone
// currency balance operations so both follow the same lock order.
type projector struct {
	balanceRepo  BalanceRepository
	currencyRepo CurrencyRepository
	cbRepo       CurrencyBalanceRepository
	idGen        IDGenerator
}

// lockTargets takes shared locks on the balances and checks the currencies
// exist. Balances are locked in ascending id order.
func (p *projector) lockTargets(ctx context.Context, tx Transaction, balanceIDs, currencyIDs []string) error {
	ids := domain.SortedIDs(balanceIDs...)
	locked, err := p.balanceRepo.Lock(ctx, tx, ids, LockShared)
	if err != nil {
		return err
	}
	if len(locked) != len(ids) {
		return domain.ErrBalanceNotFound
	}

	for _, id := range domain.SortedIDs(currencyIDs...) {
		if _, err := p.currencyRepo.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// getOrCreate locks the projection row of key, creating it at zero if absent.
func (p *projector) getOrCreate(ctx context.Context, tx Transaction, key domain.PairKey, now time.Time) (*domain.GetOrCreateResult, error) {
	res, err := p.cbRepo.GetOrCreateForUpdate(ctx, tx, p.idGen.Generate(), key, now)
	if err != nil {
		return nil, fmt.Errorf("get or create currency balance %s: %w", key, err)
	}
	return res, nil
}

// apply locks every target row in the order given, then writes each delta.
// Callers pass adjustments produced by domain.MergeAdjustments, which are
// already in lock order.
func (p *projector) apply(ctx context.Context, tx Transaction, adjs []domain.Adjustment, now time.Time) ([]*domain.CurrencyBalance, error) {
	rows := make([]*domain.CurrencyBalance, 0, len(adjs))
	for _, adj := range adjs {
		res, err := p.getOrCreate(ctx, tx, adj.Key, now)
		if err != nil {
			return nil, err
		}
		rows = append(rows, res.CurrencyBalance)
	}

	for i, adj := range adjs {
		cb, err := p.write(ctx, tx, adj, now)
		if err != nil {
			return nil, err
		}
		if cb != nil {
			rows[i] = cb
		}
	}
	return rows, nil
}

func (p *projector) write(ctx context.Context, tx Transaction, adj domain.Adjustment, now time.Time) (*domain.CurrencyBalance, error) {
	switch adj.Delta.Kind {
	case domain.DeltaNone:
		return nil, nil
	case domain.DeltaCredit:
		return p.cbRepo.Increment(ctx, tx, adj.Key, adj.Delta.Amount, now)
	case domain.DeltaDebit:
		cb, err := p.cbRepo.Decrement(ctx, tx, adj.Key, adj.Delta.Amount, now)
		if errors.Is(err, domain.ErrInsufficientFunds) {
			return nil, fmt.Errorf("%w: cannot debit %d from %s", domain.ErrInsufficientFunds, adj.Delta.Amount, adj.Key)
		}
		return cb, err
	case domain.DeltaSet:
		return p.cbRepo.SetAmount(ctx, tx, adj.Key, adj.Delta.Amount, now)
	default:
		return nil, fmt.Errorf("%w: unknown delta kind %d", domain.ErrInvalidArgument, adj.Delta.Kind)
	}
}
