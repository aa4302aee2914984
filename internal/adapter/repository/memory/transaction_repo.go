package memory

import (
	"cmp"
	"context"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	store *Store
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

// Create inserts a transaction.
func (r *TransactionRepository) Create(_ context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	return r.store.writeTx(tx, func(d *state) error {
		if err := checkPairRefs(d, t.Key()); err != nil {
			return err
		}
		d.txs[t.ID] = *t
		return nil
	})
}

// Update overwrites a transaction.
func (r *TransactionRepository) Update(_ context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	return r.store.writeTx(tx, func(d *state) error {
		if _, ok := d.txs[t.ID]; !ok {
			return domain.ErrTransactionNotFound
		}
		if err := checkPairRefs(d, t.Key()); err != nil {
			return err
		}
		d.txs[t.ID] = *t
		return nil
	})
}

// Delete removes a transaction.
func (r *TransactionRepository) Delete(_ context.Context, tx usecase.Transaction, id string) error {
	return r.store.writeTx(tx, func(d *state) error {
		if _, ok := d.txs[id]; !ok {
			return domain.ErrTransactionNotFound
		}
		delete(d.txs, id)
		return nil
	})
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(_ context.Context, id string) (*domain.Transaction, error) {
	var out *domain.Transaction
	err := r.store.read(func(d *state) error {
		t, ok := d.txs[id]
		if !ok {
			return domain.ErrTransactionNotFound
		}
		out = &t
		return nil
	})
	return out, err
}

// GetByIDForUpdate retrieves a transaction inside tx.
func (r *TransactionRepository) GetByIDForUpdate(_ context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	var out *domain.Transaction
	err := r.store.readTx(tx, func(d *state) error {
		t, ok := d.txs[id]
		if !ok {
			return domain.ErrTransactionNotFound
		}
		out = &t
		return nil
	})
	return out, err
}

// DeleteByBalance removes every transaction of a balance.
func (r *TransactionRepository) DeleteByBalance(_ context.Context, tx usecase.Transaction, balanceID string) (int64, error) {
	return r.deleteWhere(tx, func(t domain.Transaction) bool { return t.BalanceID == balanceID })
}

// DeleteByPair removes every transaction of a (balance, currency) pair.
func (r *TransactionRepository) DeleteByPair(_ context.Context, tx usecase.Transaction, key domain.PairKey) (int64, error) {
	return r.deleteWhere(tx, func(t domain.Transaction) bool { return t.Key() == key })
}

func (r *TransactionRepository) deleteWhere(tx usecase.Transaction, match func(domain.Transaction) bool) (int64, error) {
	var n int64
	err := r.store.writeTx(tx, func(d *state) error {
		for id, t := range d.txs {
			if match(t) {
				delete(d.txs, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

// Search lists transactions matching filter.
func (r *TransactionRepository) Search(_ context.Context, filter domain.TransactionFilter, sort domain.Sort) ([]*domain.Transaction, int64, error) {
	var matched []*domain.Transaction
	_ = r.store.read(func(d *state) error {
		for _, t := range d.txs {
			if matchesTransaction(t, filter) {
				t := t
				matched = append(matched, &t)
			}
		}
		return nil
	})

	sortBy(matched, sort.Desc(), func(a, b *domain.Transaction) int {
		switch sort.Field {
		case domain.SortByAmount:
			return cmp.Compare(a.Amount, b.Amount)
		case domain.SortByType:
			return cmp.Compare(a.Type, b.Type)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}, func(t *domain.Transaction) string { return t.ID })

	return paginate(matched, filter.Limit, filter.Offset), int64(len(matched)), nil
}

func matchesTransaction(t domain.Transaction, f domain.TransactionFilter) bool {
	switch {
	case f.Type != "" && t.Type != f.Type:
		return false
	case f.BalanceID != "" && t.BalanceID != f.BalanceID:
		return false
	case f.CurrencyID != "" && t.CurrencyID != f.CurrencyID:
		return false
	case f.MinAmount != nil && t.Amount < *f.MinAmount:
		return false
	case f.MaxAmount != nil && t.Amount > *f.MaxAmount:
		return false
	case f.DateFrom != nil && t.CreatedAt.Before(*f.DateFrom):
		return false
	case f.DateTo != nil && t.CreatedAt.After(*f.DateTo):
		return false
	}
	return true
}

// Statistics sums INCOME and EXPENSE amounts and counts every row.
func (r *TransactionRepository) Statistics(_ context.Context, balanceID, currencyID string) (*domain.BalanceStatistics, error) {
	stats := &domain.BalanceStatistics{BalanceID: balanceID, CurrencyID: currencyID}
	err := r.store.read(func(d *state) error {
		for _, t := range d.txs {
			if t.BalanceID != balanceID || (currencyID != "" && t.CurrencyID != currencyID) {
				continue
			}
			stats.TotalTransactions++
			switch t.Type {
			case domain.TransactionTypeIncome:
				stats.TotalIncome += t.Amount
			case domain.TransactionTypeExpense:
				stats.TotalExpense += t.Amount
			}
		}
		return nil
	})
	return stats, err
}

// PairTotals aggregates history per pair in lock order.
func (r *TransactionRepository) PairTotals(_ context.Context, balanceID string) ([]*domain.PairTotals, error) {
	byKey := make(map[domain.PairKey]*domain.PairTotals)
	err := r.store.read(func(d *state) error {
		for _, t := range d.txs {
			if balanceID != "" && t.BalanceID != balanceID {
				continue
			}
			p, ok := byKey[t.Key()]
			if !ok {
				p = &domain.PairTotals{Key: t.Key()}
				byKey[t.Key()] = p
			}
			switch t.Type {
			case domain.TransactionTypeIncome:
				p.Credits += t.Amount
			case domain.TransactionTypeExpense, domain.TransactionTypeTransfer:
				p.Debits += t.Amount
			case domain.TransactionTypeSettlement:
				p.Baseline = t.Amount
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	keys := make([]domain.PairKey, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	out := make([]*domain.PairTotals, 0, len(keys))
	for _, k := range domain.SortedPairKeys(keys...) {
		out = append(out, byKey[k])
	}
	return out, nil
}
