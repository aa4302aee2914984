package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is a unit of account. The ledger only references it by ID.
type Currency struct {
	ID     string
	Code   string
	Name   string
	Symbol string
	// Exponent is the number of minor-unit digits (2 for cents).
	Exponent  int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCurrency builds a validated Currency.
func NewCurrency(id, code, name, symbol string, exponent int32, now time.Time) (*Currency, error) {
	c := &Currency{ID: id, CreatedAt: now, UpdatedAt: now}
	if err := c.apply(code, name, symbol, exponent); err != nil {
		return nil, err
	}
	return c, nil
}

// Change replaces the mutable attributes of the currency.
func (c *Currency) Change(code, name, symbol string, exponent int32, now time.Time) error {
	if err := c.apply(code, name, symbol, exponent); err != nil {
		return err
	}
	c.UpdatedAt = now
	return nil
}

func (c *Currency) apply(code, name, symbol string, exponent int32) error {
	code, err := ValidateCurrencyCode(code)
	if err != nil {
		return err
	}
	name, err = ValidateCurrencyName(name)
	if err != nil {
		return err
	}
	symbol, err = ValidateCurrencySymbol(symbol)
	if err != nil {
		return err
	}
	if err := ValidateExponent(exponent); err != nil {
		return err
	}

	c.Code = code
	c.Name = name
	c.Symbol = symbol
	c.Exponent = exponent
	return nil
}

// Format renders a minor-unit amount in major units, e.g. 12345 -> "123.45".
func (c *Currency) Format(amount int64) string {
	return FormatMinorUnits(amount, c.Exponent)
}

// FormatMinorUnits renders amount with exponent decimal places.
func FormatMinorUnits(amount int64, exponent int32) string {
	return decimal.New(amount, -exponent).StringFixed(exponent)
}
