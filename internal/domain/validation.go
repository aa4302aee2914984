package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation constants
const (
	MinBalanceNameLength    = 1
	MaxBalanceNameLength    = 100
	MaxCurrencyNameLength   = 100
	MaxCurrencySymbolLength = 5
	MaxCurrencyExponent     = 8
	DefaultCurrencyExponent = 2

	// MaxAmount bounds a single mutation in minor units. Keeping it far below
	// math.MaxInt64 lets the engine add two amounts without overflow checks.
	MaxAmount int64 = 1_000_000_000_000_000

	DefaultPageSize = 20
	MaxPageSize     = 100
)

var currencyCodeRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidateBalanceName validates a balance name and returns it trimmed.
func ValidateBalanceName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)

	if n < MinBalanceNameLength {
		return "", fmt.Errorf("%w: name cannot be empty", ErrInvalidBalanceName)
	}

	if n > MaxBalanceNameLength {
		return "", fmt.Errorf("%w: name exceeds %d characters", ErrInvalidBalanceName, MaxBalanceNameLength)
	}

	return name, nil
}

// ValidateCurrencyCode normalizes to upper case and checks the three-letter form.
func ValidateCurrencyCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	if !currencyCodeRegex.MatchString(code) {
		return "", fmt.Errorf("%w: %q must be three letters", ErrInvalidCurrencyCode, code)
	}

	return code, nil
}

// ValidateCurrencyName validates a currency display name.
func ValidateCurrencyName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)

	if n == 0 || n > MaxCurrencyNameLength {
		return "", fmt.Errorf("%w: must be 1 to %d characters", ErrInvalidCurrencyName, MaxCurrencyNameLength)
	}

	return name, nil
}

// ValidateCurrencySymbol validates a currency symbol.
func ValidateCurrencySymbol(symbol string) (string, error) {
	symbol = strings.TrimSpace(symbol)
	n := utf8.RuneCountInString(symbol)

	if n == 0 || n > MaxCurrencySymbolLength {
		return "", fmt.Errorf("%w: must be 1 to %d characters", ErrInvalidCurrencySymbol, MaxCurrencySymbolLength)
	}

	return symbol, nil
}

// ValidateExponent validates the number of minor-unit digits of a currency.
func ValidateExponent(exponent int32) error {
	if exponent < 0 || exponent > MaxCurrencyExponent {
		return fmt.Errorf("%w: must be between 0 and %d", ErrInvalidExponent, MaxCurrencyExponent)
	}
	return nil
}

// ValidateAmount validates a mutation amount: strictly positive and bounded.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	if amount > MaxAmount {
		return fmt.Errorf("%w: maximum amount is %d", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidateNonNegativeAmount validates an absolute amount, zero allowed.
func ValidateNonNegativeAmount(amount int64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}

	if amount > MaxAmount {
		return fmt.Errorf("%w: maximum amount is %d", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidatePagination applies the default page size, caps the limit and
// rejects negative offsets.
func ValidatePagination(limit, offset int) (int, int, error) {
	if offset < 0 {
		return 0, 0, fmt.Errorf("%w: offset must not be negative", ErrInvalidPagination)
	}

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	return limit, offset, nil
}
