package domain

import "time"

// RecentTransactionsLimit is how many transactions a balance view carries.
const RecentTransactionsLimit = 10

// Balance is a named account grouping per-currency balances and their history.
type Balance struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Read model, filled in by lookups that need it.
	CurrencyBalances   []*CurrencyBalance
	RecentTransactions []*Transaction
	TransactionCount   int64
}

// NewBalance builds a validated Balance.
func NewBalance(id, name string, now time.Time) (*Balance, error) {
	name, err := ValidateBalanceName(name)
	if err != nil {
		return nil, err
	}

	return &Balance{
		ID:        id,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Rename changes the balance name after validating it.
func (b *Balance) Rename(name string, now time.Time) error {
	name, err := ValidateBalanceName(name)
	if err != nil {
		return err
	}

	b.Name = name
	b.UpdatedAt = now
	return nil
}
