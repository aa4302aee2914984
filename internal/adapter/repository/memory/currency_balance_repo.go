package memory

import (
	"cmp"
	"context"
	"time"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/usecase"
)

// CurrencyBalanceRepository implements usecase.CurrencyBalanceRepository.
type CurrencyBalanceRepository struct {
	store *Store
}

// NewCurrencyBalanceRepository creates a new CurrencyBalanceRepository.
func NewCurrencyBalanceRepository(store *Store) *CurrencyBalanceRepository {
	return &CurrencyBalanceRepository{store: store}
}

// Create inserts a projection row; the pair must not have one yet.
func (r *CurrencyBalanceRepository) Create(_ context.Context, tx usecase.Transaction, cb *domain.CurrencyBalance) error {
	return r.store.writeTx(tx, func(d *state) error {
		if err := checkPairRefs(d, cb.Key()); err != nil {
			return err
		}
		if _, ok := findByKey(d, cb.Key()); ok {
			return domain.ErrCurrencyBalanceExists
		}
		d.cbs[cb.ID] = stripCurrencyBalance(cb)
		return nil
	})
}

// GetOrCreateForUpdate returns the row of key, inserting it at zero when absent.
func (r *CurrencyBalanceRepository) GetOrCreateForUpdate(_ context.Context, tx usecase.Transaction, id string, key domain.PairKey, now time.Time) (*domain.GetOrCreateResult, error) {
	var res *domain.GetOrCreateResult
	err := r.store.writeTx(tx, func(d *state) error {
		if cb, ok := findByKey(d, key); ok {
			res = &domain.GetOrCreateResult{CurrencyBalance: &cb}
			return nil
		}
		if err := checkPairRefs(d, key); err != nil {
			return err
		}

		cb := domain.NewCurrencyBalance(id, key, now)
		d.cbs[cb.ID] = *cb
		res = &domain.GetOrCreateResult{CurrencyBalance: cb, Created: true}
		return nil
	})
	return res, err
}

// SetAmount overwrites the amount of key.
func (r *CurrencyBalanceRepository) SetAmount(_ context.Context, tx usecase.Transaction, key domain.PairKey, amount int64, now time.Time) (*domain.CurrencyBalance, error) {
	return r.apply(tx, key, domain.Set(amount), now)
}

// Increment adds amount to key.
func (r *CurrencyBalanceRepository) Increment(_ context.Context, tx usecase.Transaction, key domain.PairKey, amount int64, now time.Time) (*domain.CurrencyBalance, error) {
	return r.apply(tx, key, domain.Credit(amount), now)
}

// Decrement subtracts amount from key unless that would go below zero.
func (r *CurrencyBalanceRepository) Decrement(_ context.Context, tx usecase.Transaction, key domain.PairKey, amount int64, now time.Time) (*domain.CurrencyBalance, error) {
	return r.apply(tx, key, domain.Debit(amount), now)
}

func (r *CurrencyBalanceRepository) apply(tx usecase.Transaction, key domain.PairKey, delta domain.Delta, now time.Time) (*domain.CurrencyBalance, error) {
	var out *domain.CurrencyBalance
	err := r.store.writeTx(tx, func(d *state) error {
		cb, ok := findByKey(d, key)
		if !ok {
			return domain.ErrCurrencyBalanceNotFound
		}
		if err := cb.Apply(delta, now); err != nil {
			return err
		}
		d.cbs[cb.ID] = cb
		out = &cb
		return nil
	})
	return out, err
}

// LockByBalance returns the rows of a balance ordered by currency.
func (r *CurrencyBalanceRepository) LockByBalance(_ context.Context, tx usecase.Transaction, balanceID string) ([]*domain.CurrencyBalance, error) {
	var out []*domain.CurrencyBalance
	err := r.store.readTx(tx, func(d *state) error {
		out = listByBalance(d, balanceID)
		return nil
	})
	return out, err
}

// ZeroByBalance sets every row of a balance to zero.
func (r *CurrencyBalanceRepository) ZeroByBalance(_ context.Context, tx usecase.Transaction, balanceID string, now time.Time) (int64, error) {
	var n int64
	err := r.store.writeTx(tx, func(d *state) error {
		for id, cb := range d.cbs {
			if cb.BalanceID != balanceID {
				continue
			}
			cb.Amount = 0
			cb.UpdatedAt = now
			d.cbs[id] = cb
			n++
		}
		return nil
	})
	return n, err
}

// Delete removes a projection row.
func (r *CurrencyBalanceRepository) Delete(ctx context.Context, id string) error {
	return r.store.write(ctx, func(d *state) error {
		if _, ok := d.cbs[id]; !ok {
			return domain.ErrCurrencyBalanceNotFound
		}
		delete(d.cbs, id)
		return nil
	})
}

// GetByID retrieves a projection row by ID.
func (r *CurrencyBalanceRepository) GetByID(_ context.Context, id string) (*domain.CurrencyBalance, error) {
	var out *domain.CurrencyBalance
	err := r.store.read(func(d *state) error {
		cb, ok := d.cbs[id]
		if !ok {
			return domain.ErrCurrencyBalanceNotFound
		}
		out = &cb
		return nil
	})
	return out, err
}

// GetByKey retrieves the row of a pair.
func (r *CurrencyBalanceRepository) GetByKey(_ context.Context, key domain.PairKey) (*domain.CurrencyBalance, error) {
	var out *domain.CurrencyBalance
	err := r.store.read(func(d *state) error {
		cb, ok := findByKey(d, key)
		if !ok {
			return domain.ErrCurrencyBalanceNotFound
		}
		out = &cb
		return nil
	})
	return out, err
}

// ListByBalance returns the rows of a balance ordered by currency.
func (r *CurrencyBalanceRepository) ListByBalance(_ context.Context, balanceID string) ([]*domain.CurrencyBalance, error) {
	var out []*domain.CurrencyBalance
	_ = r.store.read(func(d *state) error {
		out = listByBalance(d, balanceID)
		return nil
	})
	return out, nil
}

func listByBalance(d *state, balanceID string) []*domain.CurrencyBalance {
	out := make([]*domain.CurrencyBalance, 0)
	for _, cb := range d.cbs {
		if cb.BalanceID == balanceID {
			cb := cb
			out = append(out, &cb)
		}
	}
	sortBy(out, false, func(a, b *domain.CurrencyBalance) int {
		return cmp.Compare(a.CurrencyID, b.CurrencyID)
	}, func(cb *domain.CurrencyBalance) string { return cb.ID })
	return out
}

// Search lists projection rows matching filter.
func (r *CurrencyBalanceRepository) Search(_ context.Context, filter domain.CurrencyBalanceFilter, sort domain.Sort) ([]*domain.CurrencyBalance, int64, error) {
	var matched []*domain.CurrencyBalance
	_ = r.store.read(func(d *state) error {
		for _, cb := range d.cbs {
			if filter.BalanceID != "" && cb.BalanceID != filter.BalanceID {
				continue
			}
			if filter.CurrencyID != "" && cb.CurrencyID != filter.CurrencyID {
				continue
			}
			if filter.MinAmount != nil && cb.Amount < *filter.MinAmount {
				continue
			}
			if filter.MaxAmount != nil && cb.Amount > *filter.MaxAmount {
				continue
			}
			cb := cb
			matched = append(matched, &cb)
		}
		return nil
	})

	sortBy(matched, sort.Desc(), func(a, b *domain.CurrencyBalance) int {
		if sort.Field == domain.SortByAmount {
			return cmp.Compare(a.Amount, b.Amount)
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	}, func(cb *domain.CurrencyBalance) string { return cb.ID })

	return paginate(matched, filter.Limit, filter.Offset), int64(len(matched)), nil
}

func findByKey(d *state, key domain.PairKey) (domain.CurrencyBalance, bool) {
	for _, cb := range d.cbs {
		if cb.BalanceID == key.BalanceID && cb.CurrencyID == key.CurrencyID {
			return cb, true
		}
	}
	return domain.CurrencyBalance{}, false
}

// checkPairRefs mirrors the foreign keys of the postgres schema.
func checkPairRefs(d *state, key domain.PairKey) error {
	if _, ok := d.balances[key.BalanceID]; !ok {
		return domain.ErrBalanceNotFound
	}
	if _, ok := d.currencies[key.CurrencyID]; !ok {
		return domain.ErrCurrencyNotFound
	}
	return nil
}

func stripCurrencyBalance(cb *domain.CurrencyBalance) domain.CurrencyBalance {
	out := *cb
	out.Currency = nil
	return out
}
