package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewCurrency(t *testing.T) {
	t.Parallel()

	c, err := NewCurrency("c1", "usd", " US Dollar ", "$", 2, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Code != "USD" || c.Name != "US Dollar" {
		t.Fatalf("expected normalized fields, got %+v", c)
	}

	if _, err := NewCurrency("c2", "dollars", "Dollar", "$", 2, time.Now()); !errors.Is(err, ErrInvalidCurrencyCode) {
		t.Fatalf("expected ErrInvalidCurrencyCode, got %v", err)
	}
}

func TestCurrencyFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		amount   int64
		exponent int32
		want     string
	}{
		{12345, 2, "123.45"},
		{5, 2, "0.05"},
		{0, 2, "0.00"},
		{1000, 0, "1000"},
		{1, 3, "0.001"},
	}

	for _, tt := range tests {
		if got := FormatMinorUnits(tt.amount, tt.exponent); got != tt.want {
			t.Fatalf("FormatMinorUnits(%d, %d) = %q, want %q", tt.amount, tt.exponent, got, tt.want)
		}
	}
}
