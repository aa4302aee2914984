package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/cashledger/internal/domain"
)

// PostgreSQL error codes mapped onto domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNumericOutOfRange   = "22003"
)

// Constraint names from the init schema migration.
const (
	constraintBalanceName     = "balances_name_key"
	constraintCurrencyCode    = "currencies_code_key"
	constraintPair            = "currency_balances_pair_key"
	constraintNonNegative     = "currency_balances_amount_check"
	constraintBalanceFKSuffix = "_balance_id_fkey"
	constraintCurrencyFKSufix = "_currency_id_fkey"
)

// mapError translates constraint violations into domain errors and
// passes everything else through unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		switch pgErr.ConstraintName {
		case constraintBalanceName:
			return domain.ErrBalanceNameTaken
		case constraintCurrencyCode:
			return domain.ErrCurrencyCodeTaken
		case constraintPair:
			return domain.ErrCurrencyBalanceExists
		}
	case pgForeignKeyViolation:
		switch {
		case strings.HasSuffix(pgErr.ConstraintName, constraintBalanceFKSuffix):
			return domain.ErrBalanceNotFound
		case strings.HasSuffix(pgErr.ConstraintName, constraintCurrencyFKSufix):
			return domain.ErrCurrencyNotFound
		}
	case pgCheckViolation:
		if pgErr.ConstraintName == constraintNonNegative {
			return domain.ErrInsufficientFunds
		}
	case pgNumericOutOfRange:
		return domain.ErrAmountTooLarge
	}

	return err
}

// notFound maps pgx.ErrNoRows to target.
func notFound(err, target error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return target
	}
	return mapError(err)
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
