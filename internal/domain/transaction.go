package domain

import (
	"fmt"
	"strings"
	"time"
)

// TransactionType is the kind of monetary movement a transaction records.
type TransactionType string

const (
	TransactionTypeIncome     TransactionType = "INCOME"
	TransactionTypeExpense    TransactionType = "EXPENSE"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
	TransactionTypeSettlement TransactionType = "SETTLEMENT"
)

// TransactionTypes lists every known type.
var TransactionTypes = []TransactionType{
	TransactionTypeIncome,
	TransactionTypeExpense,
	TransactionTypeTransfer,
	TransactionTypeSettlement,
}

// ParseTransactionType parses a type name case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTransactionType, s)
	}
	return t, nil
}

// Valid reports whether t is a known type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer, TransactionTypeSettlement:
		return true
	}
	return false
}

// Transaction records one movement against one (balance, currency) pair.
// Its effect on the projection must be compensated before the row changes.
type Transaction struct {
	ID         string
	Type       TransactionType
	Amount     int64
	BalanceID  string
	CurrencyID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewTransaction builds a validated Transaction.
func NewTransaction(id string, typ TransactionType, amount int64, balanceID, currencyID string, now time.Time) (*Transaction, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTransactionType, typ)
	}
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	return &Transaction{
		ID:         id,
		Type:       typ,
		Amount:     amount,
		BalanceID:  balanceID,
		CurrencyID: currencyID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Key returns the projection row the transaction targets.
func (t *Transaction) Key() PairKey {
	return PairKey{BalanceID: t.BalanceID, CurrencyID: t.CurrencyID}
}

// Effect is the forward adjustment of the transaction.
func (t *Transaction) Effect() (Adjustment, error) {
	d, err := EffectOf(t.Type, t.Amount)
	if err != nil {
		return Adjustment{}, err
	}
	return Adjustment{Key: t.Key(), Delta: d}, nil
}

// Inverse is the compensating adjustment of the transaction.
func (t *Transaction) Inverse() (Adjustment, error) {
	d, err := InverseOf(t.Type, t.Amount)
	if err != nil {
		return Adjustment{}, err
	}
	return Adjustment{Key: t.Key(), Delta: d}, nil
}

// EffectOf maps a transaction type and amount to its delta on the projection.
func EffectOf(typ TransactionType, amount int64) (Delta, error) {
	if err := ValidateAmount(amount); err != nil {
		return Delta{}, err
	}

	switch typ {
	case TransactionTypeIncome:
		return Credit(amount), nil
	case TransactionTypeExpense, TransactionTypeTransfer:
		return Debit(amount), nil
	case TransactionTypeSettlement:
		return Set(amount), nil
	default:
		return Delta{}, fmt.Errorf("%w: %q", ErrInvalidTransactionType, typ)
	}
}

// InverseOf is the dual of EffectOf. A settlement overwrites the prior amount,
// so it has no inverse.
func InverseOf(typ TransactionType, amount int64) (Delta, error) {
	if err := ValidateAmount(amount); err != nil {
		return Delta{}, err
	}

	switch typ {
	case TransactionTypeIncome:
		return Debit(amount), nil
	case TransactionTypeExpense, TransactionTypeTransfer:
		return Credit(amount), nil
	case TransactionTypeSettlement:
		return Delta{}, ErrSettlementImmutable
	default:
		return Delta{}, fmt.Errorf("%w: %q", ErrInvalidTransactionType, typ)
	}
}

// BalanceStatistics summarizes the transaction history of a balance.
type BalanceStatistics struct {
	BalanceID         string
	CurrencyID        string
	TotalIncome       int64
	TotalExpense      int64
	TotalTransactions int64
	NetAmount         int64
}

// PairTotals aggregates the history of one (balance, currency) pair.
// Baseline is the amount of the pair's settlement row, zero when none exists.
type PairTotals struct {
	Key      PairKey
	Baseline int64
	Credits  int64
	Debits   int64
}

// Expected is the projection amount implied by the history.
func (p PairTotals) Expected() int64 {
	return p.Baseline + p.Credits - p.Debits
}
