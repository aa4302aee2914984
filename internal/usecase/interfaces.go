package usecase

import (
	"context"
	"time"

	"github.com/iho/cashledger/internal/domain"
)

// LockMode selects how balance rows are locked inside a transaction.
type LockMode int

const (
	// LockShared lets concurrent ledger mutations proceed side by side.
	LockShared LockMode = iota
	// LockExclusive excludes every other mutation of the balance.
	LockExclusive
)

// BalanceRepository defines data access for balances.
type BalanceRepository interface {
	Create(ctx context.Context, balance *domain.Balance) error
	Update(ctx context.Context, balance *domain.Balance) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Balance, error)
	GetByName(ctx context.Context, name string) (*domain.Balance, error)
	// Lock locks the given balances in ascending id order and fails with
	// domain.ErrBalanceNotFound when any of them is missing.
	Lock(ctx context.Context, tx Transaction, ids []string, mode LockMode) ([]*domain.Balance, error)
	Search(ctx context.Context, filter domain.BalanceFilter, sort domain.Sort) ([]*domain.Balance, int64, error)
}

// CurrencyRepository defines data access for currencies.
type CurrencyRepository interface {
	Create(ctx context.Context, currency *domain.Currency) error
	Update(ctx context.Context, currency *domain.Currency) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Currency, error)
	GetByCode(ctx context.Context, code string) (*domain.Currency, error)
	Search(ctx context.Context, filter domain.CurrencyFilter, sort domain.Sort) ([]*domain.Currency, int64, error)
}

// CurrencyBalanceRepository defines data access for the ledger projection.
// Mutating methods assume the row is already locked through GetOrCreateForUpdate.
type CurrencyBalanceRepository interface {
	Create(ctx context.Context, tx Transaction, cb *domain.CurrencyBalance) error
	GetOrCreateForUpdate(ctx context.Context, tx Transaction, id string, key domain.PairKey, now time.Time) (*domain.GetOrCreateResult, error)
	SetAmount(ctx context.Context, tx Transaction, key domain.PairKey, amount int64, now time.Time) (*domain.CurrencyBalance, error)
	Increment(ctx context.Context, tx Transaction, key domain.PairKey, amount int64, now time.Time) (*domain.CurrencyBalance, error)
	// Decrement fails with domain.ErrInsufficientFunds instead of going below zero.
	Decrement(ctx context.Context, tx Transaction, key domain.PairKey, amount int64, now time.Time) (*domain.CurrencyBalance, error)
	LockByBalance(ctx context.Context, tx Transaction, balanceID string) ([]*domain.CurrencyBalance, error)
	ZeroByBalance(ctx context.Context, tx Transaction, balanceID string, now time.Time) (int64, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.CurrencyBalance, error)
	GetByKey(ctx context.Context, key domain.PairKey) (*domain.CurrencyBalance, error)
	ListByBalance(ctx context.Context, balanceID string) ([]*domain.CurrencyBalance, error)
	Search(ctx context.Context, filter domain.CurrencyBalanceFilter, sort domain.Sort) ([]*domain.CurrencyBalance, int64, error)
}

// TransactionRepository defines data access for ledger transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, t *domain.Transaction) error
	Update(ctx context.Context, tx Transaction, t *domain.Transaction) error
	Delete(ctx context.Context, tx Transaction, id string) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Transaction, error)
	DeleteByBalance(ctx context.Context, tx Transaction, balanceID string) (int64, error)
	DeleteByPair(ctx context.Context, tx Transaction, key domain.PairKey) (int64, error)
	Search(ctx context.Context, filter domain.TransactionFilter, sort domain.Sort) ([]*domain.Transaction, int64, error)
	Statistics(ctx context.Context, balanceID, currencyID string) (*domain.BalanceStatistics, error)
	// PairTotals aggregates history per pair; an empty balanceID covers all balances.
	PairTotals(ctx context.Context, balanceID string) ([]*domain.PairTotals, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) (int64, error)
}

// Transaction represents a store transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient store errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request can be retried.
	Release(ctx context.Context, key string) error
}

// LedgerMetrics records engine outcomes. A nil value disables recording.
type LedgerMetrics interface {
	RecordTransaction(operation string, typ domain.TransactionType)
	RecordTransfer()
	RecordReset()
	RecordRejection(reason string)
	ObserveOperation(operation string, d time.Duration)
}
