package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iho/cashledger/internal/domain"
)

// CurrencyUseCase handles currency reference data.
type CurrencyUseCase struct {
	currencyRepo CurrencyRepository
	idGen        IDGenerator
}

// NewCurrencyUseCase creates a new CurrencyUseCase.
func NewCurrencyUseCase(currencyRepo CurrencyRepository, idGen IDGenerator) *CurrencyUseCase {
	return &CurrencyUseCase{
		currencyRepo: currencyRepo,
		idGen:        idGen,
	}
}

// CurrencyInput represents input for creating or changing a currency.
type CurrencyInput struct {
	Code     string
	Name     string
	Symbol   string
	Exponent *int32
}

func (in CurrencyInput) exponent() int32 {
	if in.Exponent == nil {
		return domain.DefaultCurrencyExponent
	}
	return *in.Exponent
}

// Create creates a currency with a unique code.
func (uc *CurrencyUseCase) Create(ctx context.Context, input CurrencyInput) (*domain.Currency, error) {
	currency, err := domain.NewCurrency(uc.idGen.Generate(), input.Code, input.Name, input.Symbol, input.exponent(), time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := uc.ensureCodeFree(ctx, currency.Code, ""); err != nil {
		return nil, err
	}

	if err := uc.currencyRepo.Create(ctx, currency); err != nil {
		return nil, err
	}
	return currency, nil
}

// Update replaces the attributes of a currency.
func (uc *CurrencyUseCase) Update(ctx context.Context, id string, input CurrencyInput) (*domain.Currency, error) {
	currency, err := uc.currencyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	exponent := currency.Exponent
	if input.Exponent != nil {
		exponent = *input.Exponent
	}
	if err := currency.Change(input.Code, input.Name, input.Symbol, exponent, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := uc.ensureCodeFree(ctx, currency.Code, currency.ID); err != nil {
		return nil, err
	}

	if err := uc.currencyRepo.Update(ctx, currency); err != nil {
		return nil, err
	}
	return currency, nil
}

func (uc *CurrencyUseCase) ensureCodeFree(ctx context.Context, code, ownerID string) error {
	existing, err := uc.currencyRepo.GetByCode(ctx, code)
	switch {
	case errors.Is(err, domain.ErrCurrencyNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != ownerID:
		return domain.ErrCurrencyCodeTaken
	default:
		return nil
	}
}

// Delete removes a currency that no balance or transaction references.
func (uc *CurrencyUseCase) Delete(ctx context.Context, id string) error {
	return uc.currencyRepo.Delete(ctx, id)
}

// GetByID returns a currency.
func (uc *CurrencyUseCase) GetByID(ctx context.Context, id string) (*domain.Currency, error) {
	return uc.currencyRepo.GetByID(ctx, id)
}

// Search lists currencies matching filter.
func (uc *CurrencyUseCase) Search(ctx context.Context, filter domain.CurrencyFilter) ([]*domain.Currency, int64, error) {
	sort, err := filter.Normalize()
	if err != nil {
		return nil, 0, err
	}
	return uc.currencyRepo.Search(ctx, filter, sort)
}

// SeedCurrency is a currency inserted at startup with a fixed ID.
type SeedCurrency struct {
	ID       string
	Code     string
	Name     string
	Symbol   string
	Exponent int32
}

// DefaultCurrencies mirrors the seed migration of the postgres store.
var DefaultCurrencies = []SeedCurrency{
	{ID: "cur_usd", Code: "USD", Name: "US Dollar", Symbol: "$", Exponent: 2},
	{ID: "cur_eur", Code: "EUR", Name: "Euro", Symbol: "€", Exponent: 2},
	{ID: "cur_rub", Code: "RUB", Name: "Russian Ruble", Symbol: "₽", Exponent: 2},
	{ID: "cur_kzt", Code: "KZT", Name: "Kazakhstani Tenge", Symbol: "₸", Exponent: 2},
}

// Seed creates the given currencies, skipping codes that already exist, and
// returns how many were created.
func (uc *CurrencyUseCase) Seed(ctx context.Context, seeds []SeedCurrency) (int, error) {
	created := 0
	for _, s := range seeds {
		_, err := uc.currencyRepo.GetByCode(ctx, s.Code)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrCurrencyNotFound) {
			return created, err
		}

		currency, err := domain.NewCurrency(s.ID, s.Code, s.Name, s.Symbol, s.Exponent, time.Now().UTC())
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", s.Code, err)
		}
		if err := uc.currencyRepo.Create(ctx, currency); err != nil {
			return created, fmt.Errorf("seed %s: %w", s.Code, err)
		}
		created++
	}
	return created, nil
}
