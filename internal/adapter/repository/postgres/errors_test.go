package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/iho/cashledger/internal/domain"
)

func TestMapError(t *testing.T) {
	other := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"plain", other, other},
		{"balance name", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "balances_name_key"}, domain.ErrBalanceNameTaken},
		{"currency code", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "currencies_code_key"}, domain.ErrCurrencyCodeTaken},
		{"pair", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "currency_balances_pair_key"}, domain.ErrCurrencyBalanceExists},
		{"balance fk", &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "transactions_balance_id_fkey"}, domain.ErrBalanceNotFound},
		{"currency fk", &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "currency_balances_currency_id_fkey"}, domain.ErrCurrencyNotFound},
		{"non negative", &pgconn.PgError{Code: pgCheckViolation, ConstraintName: "currency_balances_amount_check"}, domain.ErrInsufficientFunds},
		{"overflow", &pgconn.PgError{Code: pgNumericOutOfRange}, domain.ErrAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestMapErrorKeepsUnknownConstraint(t *testing.T) {
	err := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "something_else"}
	assert.Same(t, error(err), mapError(err))
}

func TestNotFound(t *testing.T) {
	assert.ErrorIs(t, notFound(pgx.ErrNoRows, domain.ErrBalanceNotFound), domain.ErrBalanceNotFound)
	assert.ErrorIs(t, notFound(&pgconn.PgError{Code: pgNumericOutOfRange}, domain.ErrBalanceNotFound), domain.ErrAmountTooLarge)
}
