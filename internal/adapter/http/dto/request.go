package dto

import (
	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/usecase"
)

// CreateBalanceRequest represents a request to create a balance.
type CreateBalanceRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// UpdateBalanceRequest represents a request to rename a balance.
type UpdateBalanceRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,max=100"`
}

// CurrencyRequest represents a request to create or change a currency.
type CurrencyRequest struct {
	Code     string `json:"code"               validate:"required,len=3,alpha"`
	Name     string `json:"name"               validate:"required,max=100"`
	Symbol   string `json:"symbol"             validate:"required,max=5"`
	Exponent *int32 `json:"exponent,omitempty" validate:"omitempty,gte=0,lte=8"`
}

// ToUseCaseInput converts to use case input.
func (r *CurrencyRequest) ToUseCaseInput() usecase.CurrencyInput {
	return usecase.CurrencyInput{
		Code:     r.Code,
		Name:     r.Name,
		Symbol:   r.Symbol,
		Exponent: r.Exponent,
	}
}

// CurrencyBalanceRequest addresses a projection row and carries an amount in
// minor units.
type CurrencyBalanceRequest struct {
	BalanceID  string `json:"balance_id"  validate:"required"`
	CurrencyID string `json:"currency_id" validate:"required"`
	Amount     int64  `json:"amount"      validate:"gte=0"`
}

// ToUseCaseInput converts to use case input.
func (r *CurrencyBalanceRequest) ToUseCaseInput() usecase.CurrencyBalanceInput {
	return usecase.CurrencyBalanceInput{
		BalanceID:  r.BalanceID,
		CurrencyID: r.CurrencyID,
		Amount:     r.Amount,
	}
}

// PairRequest addresses a projection row without an amount.
type PairRequest struct {
	BalanceID  string `json:"balance_id"  validate:"required"`
	CurrencyID string `json:"currency_id" validate:"required"`
}

// CreateTransactionRequest represents a request to record a transaction.
type CreateTransactionRequest struct {
	Type       string `json:"type"        validate:"required"`
	Amount     int64  `json:"amount"      validate:"gt=0"`
	BalanceID  string `json:"balance_id"  validate:"required"`
	CurrencyID string `json:"currency_id" validate:"required"`
}

// ToUseCaseInput converts to use case input. The type is matched
// case-insensitively.
func (r *CreateTransactionRequest) ToUseCaseInput() (usecase.CreateTransactionInput, error) {
	typ, err := domain.ParseTransactionType(r.Type)
	if err != nil {
		return usecase.CreateTransactionInput{}, err
	}

	return usecase.CreateTransactionInput{
		Type:       typ,
		Amount:     r.Amount,
		BalanceID:  r.BalanceID,
		CurrencyID: r.CurrencyID,
	}, nil
}

// UpdateTransactionRequest carries the fields to change; omitted fields keep
// their value.
type UpdateTransactionRequest struct {
	Type       *string `json:"type,omitempty"`
	Amount     *int64  `json:"amount,omitempty"      validate:"omitempty,gt=0"`
	BalanceID  *string `json:"balance_id,omitempty"  validate:"omitempty,min=1"`
	CurrencyID *string `json:"currency_id,omitempty" validate:"omitempty,min=1"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateTransactionRequest) ToUseCaseInput() (usecase.UpdateTransactionInput, error) {
	input := usecase.UpdateTransactionInput{
		Amount:     r.Amount,
		BalanceID:  r.BalanceID,
		CurrencyID: r.CurrencyID,
	}

	if r.Type != nil {
		typ, err := domain.ParseTransactionType(*r.Type)
		if err != nil {
			return usecase.UpdateTransactionInput{}, err
		}
		input.Type = &typ
	}

	if r.Type == nil && r.Amount == nil && r.BalanceID == nil && r.CurrencyID == nil {
		return usecase.UpdateTransactionInput{}, domain.ErrEmptyUpdate
	}

	return input, nil
}

// MovementRequest represents a request for an income or expense.
type MovementRequest struct {
	BalanceID  string `json:"balance_id"  validate:"required"`
	CurrencyID string `json:"currency_id" validate:"required"`
	Amount     int64  `json:"amount"      validate:"gt=0"`
}

// ToUseCaseInput converts to use case input.
func (r *MovementRequest) ToUseCaseInput() usecase.MovementInput {
	return usecase.MovementInput{
		BalanceID:  r.BalanceID,
		CurrencyID: r.CurrencyID,
		Amount:     r.Amount,
	}
}

// TransferRequest represents a request to move an amount between balances.
type TransferRequest struct {
	FromBalanceID string `json:"from_balance_id" validate:"required"`
	ToBalanceID   string `json:"to_balance_id"   validate:"required"`
	CurrencyID    string `json:"currency_id"     validate:"required"`
	Amount        int64  `json:"amount"          validate:"gt=0"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput() usecase.CreateTransferInput {
	return usecase.CreateTransferInput{
		FromBalanceID: r.FromBalanceID,
		ToBalanceID:   r.ToBalanceID,
		CurrencyID:    r.CurrencyID,
		Amount:        r.Amount,
	}
}
