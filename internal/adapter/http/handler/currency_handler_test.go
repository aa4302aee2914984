package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/usecase"
)

type currencyServiceStub struct {
	createFn func(ctx context.Context, input usecase.CurrencyInput) (*domain.Currency, error)
	updateFn func(ctx context.Context, id string, input usecase.CurrencyInput) (*domain.Currency, error)
	deleteFn func(ctx context.Context, id string) error
	getFn    func(ctx context.Context, id string) (*domain.Currency, error)
	searchFn func(ctx context.Context, filter domain.CurrencyFilter) ([]*domain.Currency, int64, error)
}

func (s *currencyServiceStub) Create(ctx context.Context, input usecase.CurrencyInput) (*domain.Currency, error) {
	return s.createFn(ctx, input)
}

func (s *currencyServiceStub) Update(ctx context.Context, id string, input usecase.CurrencyInput) (*domain.Currency, error) {
	return s.updateFn(ctx, id, input)
}

func (s *currencyServiceStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *currencyServiceStub) GetByID(ctx context.Context, id string) (*domain.Currency, error) {
	return s.getFn(ctx, id)
}

func (s *currencyServiceStub) Search(ctx context.Context, filter domain.CurrencyFilter) ([]*domain.Currency, int64, error) {
	return s.searchFn(ctx, filter)
}

func TestCurrencyHandler_Create(t *testing.T) {
	var captured usecase.CurrencyInput
	h := NewCurrencyHandler(&currencyServiceStub{
		createFn: func(ctx context.Context, input usecase.CurrencyInput) (*domain.Currency, error) {
			captured = input
			return &domain.Currency{ID: "c-1", Code: "KZT", Name: input.Name, Symbol: input.Symbol, Exponent: 2}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/currencies", bytes.NewBufferString(`{"code":"kzt","name":"Tenge","symbol":"T"}`)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Exponent != nil {
		t.Fatalf("expected exponent to default in the use case, got %v", *captured.Exponent)
	}
}

func TestCurrencyHandler_Delete_InUse(t *testing.T) {
	h := NewCurrencyHandler(&currencyServiceStub{
		deleteFn: func(ctx context.Context, id string) error { return domain.ErrCurrencyInUse },
	})

	r := chi.NewRouter()
	r.Delete("/currencies/{id}", h.Delete)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/currencies/c-1", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestCurrencyHandler_List_InvalidSort(t *testing.T) {
	h := NewCurrencyHandler(&currencyServiceStub{
		searchFn: func(ctx context.Context, filter domain.CurrencyFilter) ([]*domain.Currency, int64, error) {
			if _, err := filter.Normalize(); err != nil {
				return nil, 0, err
			}
			return nil, 0, nil
		},
	})

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/currencies?sort_by=symbol", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
