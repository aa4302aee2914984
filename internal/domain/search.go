package domain

import (
	"fmt"
	"strings"
	"time"
)

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Sortable fields.
const (
	SortByName      = "name"
	SortByCode      = "code"
	SortByCreatedAt = "created_at"
	SortByAmount    = "amount"
	SortByType      = "type"
)

// Sort is a validated sort specification.
type Sort struct {
	Field string
	Order SortOrder
}

// Desc reports whether the sort is descending.
func (s Sort) Desc() bool { return s.Order == SortDesc }

func normalizeSort(field string, order SortOrder, allowed ...string) (Sort, error) {
	if field == "" {
		field = SortByCreatedAt
	}
	if order == "" {
		order = SortDesc
	}
	order = SortOrder(strings.ToLower(string(order)))
	if order != SortAsc && order != SortDesc {
		return Sort{}, fmt.Errorf("%w: order must be asc or desc", ErrInvalidSort)
	}
	for _, a := range allowed {
		if a == field {
			return Sort{Field: field, Order: order}, nil
		}
	}
	return Sort{}, fmt.Errorf("%w: %q", ErrInvalidSort, field)
}

// BalanceFilter selects balances.
type BalanceFilter struct {
	Name   string
	SortBy string
	Order  SortOrder
	Limit  int
	Offset int
}

// Normalize validates the filter and resolves defaults.
func (f *BalanceFilter) Normalize() (Sort, error) {
	var err error
	if f.Limit, f.Offset, err = ValidatePagination(f.Limit, f.Offset); err != nil {
		return Sort{}, err
	}
	f.Name = strings.TrimSpace(f.Name)
	return normalizeSort(f.SortBy, f.Order, SortByName, SortByCreatedAt)
}

// CurrencyFilter selects currencies.
type CurrencyFilter struct {
	Code   string
	Name   string
	SortBy string
	Order  SortOrder
	Limit  int
	Offset int
}

// Normalize validates the filter and resolves defaults.
func (f *CurrencyFilter) Normalize() (Sort, error) {
	var err error
	if f.Limit, f.Offset, err = ValidatePagination(f.Limit, f.Offset); err != nil {
		return Sort{}, err
	}
	f.Code = strings.ToUpper(strings.TrimSpace(f.Code))
	f.Name = strings.TrimSpace(f.Name)
	return normalizeSort(f.SortBy, f.Order, SortByCode, SortByName, SortByCreatedAt)
}

// CurrencyBalanceFilter selects projection rows.
type CurrencyBalanceFilter struct {
	BalanceID  string
	CurrencyID string
	MinAmount  *int64
	MaxAmount  *int64
	SortBy     string
	Order      SortOrder
	Limit      int
	Offset     int
}

// Normalize validates the filter and resolves defaults.
func (f *CurrencyBalanceFilter) Normalize() (Sort, error) {
	var err error
	if f.Limit, f.Offset, err = ValidatePagination(f.Limit, f.Offset); err != nil {
		return Sort{}, err
	}
	if f.MinAmount != nil && f.MaxAmount != nil && *f.MinAmount > *f.MaxAmount {
		return Sort{}, ErrInvalidAmountRange
	}
	return normalizeSort(f.SortBy, f.Order, SortByAmount, SortByCreatedAt)
}

// TransactionFilter selects transactions.
type TransactionFilter struct {
	Type       TransactionType
	BalanceID  string
	CurrencyID string
	MinAmount  *int64
	MaxAmount  *int64
	DateFrom   *time.Time
	DateTo     *time.Time
	SortBy     string
	Order      SortOrder
	Limit      int
	Offset     int
}

// Normalize validates the filter and resolves defaults.
func (f *TransactionFilter) Normalize() (Sort, error) {
	var err error
	if f.Limit, f.Offset, err = ValidatePagination(f.Limit, f.Offset); err != nil {
		return Sort{}, err
	}
	if f.Type != "" && !f.Type.Valid() {
		return Sort{}, fmt.Errorf("%w: %q", ErrInvalidTransactionType, f.Type)
	}
	if f.MinAmount != nil && f.MaxAmount != nil && *f.MinAmount > *f.MaxAmount {
		return Sort{}, ErrInvalidAmountRange
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateFrom.After(*f.DateTo) {
		return Sort{}, ErrInvalidDateRange
	}
	return normalizeSort(f.SortBy, f.Order, SortByAmount, SortByCreatedAt, SortByType)
}
