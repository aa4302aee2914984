package domain

import "errors"

// Error categories. Every domain error below unwraps to exactly one of them,
// so callers can branch with errors.Is on the category alone.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

var (
	// Not found errors
	ErrBalanceNotFound         = newError(ErrNotFound, "balance not found")
	ErrCurrencyNotFound        = newError(ErrNotFound, "currency not found")
	ErrCurrencyBalanceNotFound = newError(ErrNotFound, "currency balance not found")
	ErrTransactionNotFound     = newError(ErrNotFound, "transaction not found")

	// Conflict errors
	ErrBalanceNameTaken      = newError(ErrConflict, "balance name already exists")
	ErrCurrencyCodeTaken     = newError(ErrConflict, "currency code already exists")
	ErrCurrencyBalanceExists = newError(ErrConflict, "currency balance already exists for this balance and currency")
	ErrCurrencyInUse         = newError(ErrConflict, "currency is referenced by balances or transactions")
	ErrSettlementImmutable   = newError(ErrConflict, "settlement transactions cannot be changed or removed")

	// Invalid argument errors
	ErrInvalidAmount          = newError(ErrInvalidArgument, "amount must be positive")
	ErrNegativeAmount         = newError(ErrInvalidArgument, "amount must not be negative")
	ErrAmountTooLarge         = newError(ErrInvalidArgument, "amount exceeds maximum allowed")
	ErrInvalidTransactionType = newError(ErrInvalidArgument, "invalid transaction type")
	ErrSameBalance            = newError(ErrInvalidArgument, "cannot transfer to the same balance")
	ErrInvalidBalanceName     = newError(ErrInvalidArgument, "invalid balance name")
	ErrInvalidCurrencyCode    = newError(ErrInvalidArgument, "invalid currency code")
	ErrInvalidCurrencyName    = newError(ErrInvalidArgument, "invalid currency name")
	ErrInvalidCurrencySymbol  = newError(ErrInvalidArgument, "invalid currency symbol")
	ErrInvalidExponent        = newError(ErrInvalidArgument, "invalid currency exponent")
	ErrInvalidDateRange       = newError(ErrInvalidArgument, "date from must not be after date to")
	ErrInvalidAmountRange     = newError(ErrInvalidArgument, "min amount must not exceed max amount")
	ErrInvalidPagination      = newError(ErrInvalidArgument, "invalid pagination")
	ErrInvalidSort            = newError(ErrInvalidArgument, "invalid sort field")
	ErrEmptyUpdate            = newError(ErrInvalidArgument, "nothing to update")
)

type categorizedError struct {
	msg      string
	category error
}

func newError(category error, msg string) error {
	return &categorizedError{msg: msg, category: category}
}

func (e *categorizedError) Error() string { return e.msg }

func (e *categorizedError) Unwrap() error { return e.category }
