package memory

import (
	"cmp"
	"context"
	"strings"

	"github.com/iho/cashledger/internal/domain"
)

// CurrencyRepository implements usecase.CurrencyRepository.
type CurrencyRepository struct {
	store *Store
}

// NewCurrencyRepository creates a new CurrencyRepository.
func NewCurrencyRepository(store *Store) *CurrencyRepository {
	return &CurrencyRepository{store: store}
}

// Create inserts a currency.
func (r *CurrencyRepository) Create(ctx context.Context, currency *domain.Currency) error {
	return r.store.write(ctx, func(d *state) error {
		if codeTaken(d, currency.Code, currency.ID) {
			return domain.ErrCurrencyCodeTaken
		}
		d.currencies[currency.ID] = *currency
		return nil
	})
}

// Update saves a currency.
func (r *CurrencyRepository) Update(ctx context.Context, currency *domain.Currency) error {
	return r.store.write(ctx, func(d *state) error {
		if _, ok := d.currencies[currency.ID]; !ok {
			return domain.ErrCurrencyNotFound
		}
		if codeTaken(d, currency.Code, currency.ID) {
			return domain.ErrCurrencyCodeTaken
		}
		d.currencies[currency.ID] = *currency
		return nil
	})
}

// Delete removes a currency nothing references.
func (r *CurrencyRepository) Delete(ctx context.Context, id string) error {
	return r.store.write(ctx, func(d *state) error {
		if _, ok := d.currencies[id]; !ok {
			return domain.ErrCurrencyNotFound
		}
		for _, cb := range d.cbs {
			if cb.CurrencyID == id {
				return domain.ErrCurrencyInUse
			}
		}
		for _, t := range d.txs {
			if t.CurrencyID == id {
				return domain.ErrCurrencyInUse
			}
		}
		delete(d.currencies, id)
		return nil
	})
}

// GetByID retrieves a currency by ID.
func (r *CurrencyRepository) GetByID(_ context.Context, id string) (*domain.Currency, error) {
	var out *domain.Currency
	err := r.store.read(func(d *state) error {
		c, ok := d.currencies[id]
		if !ok {
			return domain.ErrCurrencyNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

// GetByCode retrieves a currency by code.
func (r *CurrencyRepository) GetByCode(_ context.Context, code string) (*domain.Currency, error) {
	var out *domain.Currency
	err := r.store.read(func(d *state) error {
		for _, c := range d.currencies {
			if c.Code == code {
				c := c
				out = &c
				return nil
			}
		}
		return domain.ErrCurrencyNotFound
	})
	return out, err
}

// Search lists currencies matching filter.
func (r *CurrencyRepository) Search(_ context.Context, filter domain.CurrencyFilter, sort domain.Sort) ([]*domain.Currency, int64, error) {
	var matched []*domain.Currency
	_ = r.store.read(func(d *state) error {
		name := strings.ToLower(filter.Name)
		for _, c := range d.currencies {
			if filter.Code != "" && c.Code != filter.Code {
				continue
			}
			if name != "" && !strings.Contains(strings.ToLower(c.Name), name) {
				continue
			}
			c := c
			matched = append(matched, &c)
		}
		return nil
	})

	sortBy(matched, sort.Desc(), func(a, b *domain.Currency) int {
		switch sort.Field {
		case domain.SortByCode:
			return cmp.Compare(a.Code, b.Code)
		case domain.SortByName:
			return cmp.Compare(a.Name, b.Name)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}, func(c *domain.Currency) string { return c.ID })

	return paginate(matched, filter.Limit, filter.Offset), int64(len(matched)), nil
}

func codeTaken(d *state, code, ownerID string) bool {
	for _, c := range d.currencies {
		if c.Code == code && c.ID != ownerID {
			return true
		}
	}
	return false
}
