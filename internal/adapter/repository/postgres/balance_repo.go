package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/infrastructure/postgres/generated"
	"github.com/iho/cashledger/internal/usecase"
)

// BalanceRepository implements usecase.BalanceRepository.
type BalanceRepository struct {
	db      generated.DBTX
	queries *generated.Queries
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(db generated.DBTX) *BalanceRepository {
	return &BalanceRepository{
		db:      db,
		queries: generated.New(db),
	}
}

// Create creates a new balance.
func (r *BalanceRepository) Create(ctx context.Context, balance *domain.Balance) error {
	return mapError(r.queries.CreateBalance(ctx, generated.CreateBalanceParams{
		ID:        balance.ID,
		Name:      balance.Name,
		CreatedAt: balance.CreatedAt,
		UpdatedAt: balance.UpdatedAt,
	}))
}

// Update renames a balance.
func (r *BalanceRepository) Update(ctx context.Context, balance *domain.Balance) error {
	n, err := r.queries.UpdateBalance(ctx, generated.UpdateBalanceParams{
		ID:        balance.ID,
		Name:      balance.Name,
		UpdatedAt: balance.UpdatedAt,
	})
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return domain.ErrBalanceNotFound
	}
	return nil
}

// Delete removes a balance; its projection rows and transactions cascade.
func (r *BalanceRepository) Delete(ctx context.Context, id string) error {
	n, err := r.queries.DeleteBalance(ctx, id)
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return domain.ErrBalanceNotFound
	}
	return nil
}

// GetByID retrieves a balance by ID.
func (r *BalanceRepository) GetByID(ctx context.Context, id string) (*domain.Balance, error) {
	row, err := r.queries.GetBalanceByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrBalanceNotFound)
	}
	return rowToBalance(row), nil
}

// GetByName retrieves a balance by its exact name.
func (r *BalanceRepository) GetByName(ctx context.Context, name string) (*domain.Balance, error) {
	row, err := r.queries.GetBalanceByName(ctx, name)
	if err != nil {
		return nil, notFound(err, domain.ErrBalanceNotFound)
	}
	return rowToBalance(row), nil
}

// Lock takes row locks on the balances in ascending id order.
func (r *BalanceRepository) Lock(ctx context.Context, tx usecase.Transaction, ids []string, mode usecase.LockMode) ([]*domain.Balance, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	ids = domain.SortedIDs(ids...)

	var (
		rows []generated.Balance
		err  error
	)
	if mode == usecase.LockExclusive {
		rows, err = queries.LockBalancesExclusive(ctx, ids)
	} else {
		rows, err = queries.LockBalancesShared(ctx, ids)
	}
	if err != nil {
		return nil, mapError(err)
	}
	if len(rows) != len(ids) {
		return nil, domain.ErrBalanceNotFound
	}

	balances := make([]*domain.Balance, 0, len(rows))
	for _, row := range rows {
		balances = append(balances, rowToBalance(row))
	}
	return balances, nil
}

// Search lists balances whose name contains filter.Name.
func (r *BalanceRepository) Search(ctx context.Context, filter domain.BalanceFilter, sort domain.Sort) ([]*domain.Balance, int64, error) {
	var q searchQuery
	if filter.Name != "" {
		q.where("name ILIKE ?", likePattern(filter.Name))
	}

	total, err := q.count(ctx, r.db, "balances")
	if err != nil {
		return nil, 0, err
	}

	sql := "SELECT id, name, created_at, updated_at FROM balances" + q.clause() +
		q.page(sortColumn(sort.Field), sort, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, sql, q.args...)
	if err != nil {
		return nil, 0, err
	}

	balances, err := collect(rows, func(rows pgx.Rows) (*domain.Balance, error) {
		var b domain.Balance
		err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt)
		return &b, err
	})
	if err != nil {
		return nil, 0, err
	}

	return balances, total, nil
}

func rowToBalance(row generated.Balance) *domain.Balance {
	return &domain.Balance{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
