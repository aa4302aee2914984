package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/infrastructure/postgres/generated"
)

// CurrencyRepository implements usecase.CurrencyRepository.
type CurrencyRepository struct {
	db      generated.DBTX
	queries *generated.Queries
}

// NewCurrencyRepository creates a new CurrencyRepository.
func NewCurrencyRepository(db generated.DBTX) *CurrencyRepository {
	return &CurrencyRepository{
		db:      db,
		queries: generated.New(db),
	}
}

// Create creates a new currency.
func (r *CurrencyRepository) Create(ctx context.Context, c *domain.Currency) error {
	return mapError(r.queries.CreateCurrency(ctx, generated.CreateCurrencyParams{
		ID:        c.ID,
		Code:      c.Code,
		Name:      c.Name,
		Symbol:    c.Symbol,
		Exponent:  c.Exponent,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}))
}

// Update overwrites a currency.
func (r *CurrencyRepository) Update(ctx context.Context, c *domain.Currency) error {
	n, err := r.queries.UpdateCurrency(ctx, generated.UpdateCurrencyParams{
		ID:        c.ID,
		Code:      c.Code,
		Name:      c.Name,
		Symbol:    c.Symbol,
		Exponent:  c.Exponent,
		UpdatedAt: c.UpdatedAt,
	})
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return domain.ErrCurrencyNotFound
	}
	return nil
}

// Delete removes a currency that nothing references.
func (r *CurrencyRepository) Delete(ctx context.Context, id string) error {
	n, err := r.queries.DeleteCurrency(ctx, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCurrencyInUse
		}
		return mapError(err)
	}
	if n == 0 {
		return domain.ErrCurrencyNotFound
	}
	return nil
}

// GetByID retrieves a currency by ID.
func (r *CurrencyRepository) GetByID(ctx context.Context, id string) (*domain.Currency, error) {
	row, err := r.queries.GetCurrencyByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrCurrencyNotFound)
	}
	return rowToCurrency(row), nil
}

// GetByCode retrieves a currency by code.
func (r *CurrencyRepository) GetByCode(ctx context.Context, code string) (*domain.Currency, error) {
	row, err := r.queries.GetCurrencyByCode(ctx, code)
	if err != nil {
		return nil, notFound(err, domain.ErrCurrencyNotFound)
	}
	return rowToCurrency(row), nil
}

// Search lists currencies matching filter.
func (r *CurrencyRepository) Search(ctx context.Context, filter domain.CurrencyFilter, sort domain.Sort) ([]*domain.Currency, int64, error) {
	var q searchQuery
	if filter.Code != "" {
		q.where("code = ?", filter.Code)
	}
	if filter.Name != "" {
		q.where("name ILIKE ?", likePattern(filter.Name))
	}

	total, err := q.count(ctx, r.db, "currencies")
	if err != nil {
		return nil, 0, err
	}

	sql := "SELECT id, code, name, symbol, exponent, created_at, updated_at FROM currencies" + q.clause() +
		q.page(sortColumn(sort.Field), sort, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, sql, q.args...)
	if err != nil {
		return nil, 0, err
	}

	currencies, err := collect(rows, func(rows pgx.Rows) (*domain.Currency, error) {
		var c domain.Currency
		err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Symbol, &c.Exponent, &c.CreatedAt, &c.UpdatedAt)
		return &c, err
	})
	if err != nil {
		return nil, 0, err
	}

	return currencies, total, nil
}

func rowToCurrency(row generated.Currency) *domain.Currency {
	return &domain.Currency{
		ID:        row.ID,
		Code:      row.Code,
		Name:      row.Name,
		Symbol:    row.Symbol,
		Exponent:  row.Exponent,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
