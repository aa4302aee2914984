package memory

import (
	"cmp"
	"context"
	"strings"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/usecase"
)

// BalanceRepository implements usecase.BalanceRepository.
type BalanceRepository struct {
	store *Store
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(store *Store) *BalanceRepository {
	return &BalanceRepository{store: store}
}

// Create inserts a balance.
func (r *BalanceRepository) Create(ctx context.Context, balance *domain.Balance) error {
	return r.store.write(ctx, func(d *state) error {
		if nameTaken(d, balance.Name, balance.ID) {
			return domain.ErrBalanceNameTaken
		}
		d.balances[balance.ID] = stripBalance(balance)
		return nil
	})
}

// Update saves the name of a balance.
func (r *BalanceRepository) Update(ctx context.Context, balance *domain.Balance) error {
	return r.store.write(ctx, func(d *state) error {
		if _, ok := d.balances[balance.ID]; !ok {
			return domain.ErrBalanceNotFound
		}
		if nameTaken(d, balance.Name, balance.ID) {
			return domain.ErrBalanceNameTaken
		}
		d.balances[balance.ID] = stripBalance(balance)
		return nil
	})
}

// Delete removes a balance and cascades to its projection rows and history.
func (r *BalanceRepository) Delete(ctx context.Context, id string) error {
	return r.store.write(ctx, func(d *state) error {
		if _, ok := d.balances[id]; !ok {
			return domain.ErrBalanceNotFound
		}
		delete(d.balances, id)
		for k, cb := range d.cbs {
			if cb.BalanceID == id {
				delete(d.cbs, k)
			}
		}
		for k, t := range d.txs {
			if t.BalanceID == id {
				delete(d.txs, k)
			}
		}
		return nil
	})
}

// GetByID retrieves a balance by ID.
func (r *BalanceRepository) GetByID(_ context.Context, id string) (*domain.Balance, error) {
	var out *domain.Balance
	err := r.store.read(func(d *state) error {
		b, ok := d.balances[id]
		if !ok {
			return domain.ErrBalanceNotFound
		}
		out = &b
		return nil
	})
	return out, err
}

// GetByName retrieves a balance by its exact name.
func (r *BalanceRepository) GetByName(_ context.Context, name string) (*domain.Balance, error) {
	var out *domain.Balance
	err := r.store.read(func(d *state) error {
		for _, b := range d.balances {
			if b.Name == name {
				b := b
				out = &b
				return nil
			}
		}
		return domain.ErrBalanceNotFound
	})
	return out, err
}

// Lock returns the existing balances among ids. Writers are already
// serialized by the transaction, so no further locking is needed.
func (r *BalanceRepository) Lock(_ context.Context, tx usecase.Transaction, ids []string, _ usecase.LockMode) ([]*domain.Balance, error) {
	out := make([]*domain.Balance, 0, len(ids))
	err := r.store.readTx(tx, func(d *state) error {
		for _, id := range domain.SortedIDs(ids...) {
			if b, ok := d.balances[id]; ok {
				out = append(out, &b)
			}
		}
		return nil
	})
	return out, err
}

// Search lists balances matching filter.
func (r *BalanceRepository) Search(_ context.Context, filter domain.BalanceFilter, sort domain.Sort) ([]*domain.Balance, int64, error) {
	var matched []*domain.Balance
	err := r.store.read(func(d *state) error {
		needle := strings.ToLower(filter.Name)
		for _, b := range d.balances {
			if needle != "" && !strings.Contains(strings.ToLower(b.Name), needle) {
				continue
			}
			b := b
			matched = append(matched, &b)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sortBy(matched, sort.Desc(), func(a, b *domain.Balance) int {
		if sort.Field == domain.SortByName {
			return cmp.Compare(a.Name, b.Name)
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	}, func(b *domain.Balance) string { return b.ID })

	return paginate(matched, filter.Limit, filter.Offset), int64(len(matched)), nil
}

func nameTaken(d *state, name, ownerID string) bool {
	for _, b := range d.balances {
		if b.Name == name && b.ID != ownerID {
			return true
		}
	}
	return false
}

// stripBalance drops read-model fields before storing.
func stripBalance(b *domain.Balance) domain.Balance {
	return domain.Balance{
		ID:        b.ID,
		Name:      b.Name,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}
