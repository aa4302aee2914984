package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cashledger/internal/adapter/http/dto"
	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/usecase"
)

type currencyBalanceServiceStub struct {
	createFn      func(ctx context.Context, input usecase.CurrencyBalanceInput) (*domain.CurrencyBalance, error)
	getOrCreateFn func(ctx context.Context, balanceID, currencyID string) (*domain.GetOrCreateResult, error)
	adjustFn      func(ctx context.Context, op string, input usecase.CurrencyBalanceInput) (*domain.CurrencyBalance, error)
	deleteFn      func(ctx context.Context, id string) error
	getFn         func(ctx context.Context, id string) (*domain.CurrencyBalance, error)
	getByPairFn   func(ctx context.Context, balanceID, currencyID string) (*domain.CurrencyBalance, error)
	searchFn      func(ctx context.Context, filter domain.CurrencyBalanceFilter) ([]*domain.CurrencyBalance, int64, error)
}

func (s *currencyBalanceServiceStub) Create(ctx context.Context, input usecase.CurrencyBalanceInput) (*domain.CurrencyBalance, error) {
	return s.createFn(ctx, input)
}

func (s *currencyBalanceServiceStub) GetOrCreate(ctx context.Context, balanceID, currencyID string) (*domain.GetOrCreateResult, error) {
	return s.getOrCreateFn(ctx, balanceID, currencyID)
}

func (s *currencyBalanceServiceStub) SetAmount(ctx context.Context, input usecase.CurrencyBalanceInput) (*domain.CurrencyBalance, error) {
	return s.adjustFn(ctx, usecase.OperationSet, input)
}

func (s *currencyBalanceServiceStub) IncrementAmount(ctx context.Context, input usecase.CurrencyBalanceInput) (*domain.CurrencyBalance, error) {
	return s.adjustFn(ctx, usecase.OperationIncrement, input)
}

func (s *currencyBalanceServiceStub) DecrementAmount(ctx context.Context, input usecase.CurrencyBalanceInput) (*domain.CurrencyBalance, error) {
	return s.adjustFn(ctx, usecase.OperationDecrement, input)
}

func (s *currencyBalanceServiceStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *currencyBalanceServiceStub) GetByID(ctx context.Context, id string) (*domain.CurrencyBalance, error) {
	return s.getFn(ctx, id)
}

func (s *currencyBalanceServiceStub) GetByBalanceAndCurrency(ctx context.Context, balanceID, currencyID string) (*domain.CurrencyBalance, error) {
	return s.getByPairFn(ctx, balanceID, currencyID)
}

func (s *currencyBalanceServiceStub) Search(ctx context.Context, filter domain.CurrencyBalanceFilter) ([]*domain.CurrencyBalance, int64, error) {
	return s.searchFn(ctx, filter)
}

func currencyBalanceRouter(h *CurrencyBalanceHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/currency-balances", h.Create)
	r.Get("/currency-balances", h.List)
	r.Post("/currency-balances/get-or-create", h.GetOrCreate)
	r.Post("/currency-balances/set-amount", h.SetAmount)
	r.Post("/currency-balances/increment", h.Increment)
	r.Post("/currency-balances/decrement", h.Decrement)
	r.Get("/currency-balances/by-pair", h.GetByPair)
	r.Get("/currency-balances/{id}", h.Get)
	r.Delete("/currency-balances/{id}", h.Delete)
	return r
}

func TestCurrencyBalanceHandler_Adjustments(t *testing.T) {
	var ops []string
	h := NewCurrencyBalanceHandler(&currencyBalanceServiceStub{
		adjustFn: func(ctx context.Context, op string, input usecase.CurrencyBalanceInput) (*domain.CurrencyBalance, error) {
			ops = append(ops, op)
			if op == usecase.OperationDecrement && input.Amount > 10000 {
				return nil, domain.ErrInsufficientFunds
			}
			return &domain.CurrencyBalance{ID: "cb-1", BalanceID: input.BalanceID, CurrencyID: input.CurrencyID, Amount: input.Amount}, nil
		},
	})

	tests := []struct {
		path     string
		amount   int64
		expected int
	}{
		{"/currency-balances/set-amount", 10000, http.StatusOK},
		{"/currency-balances/increment", 500, http.StatusOK},
		{"/currency-balances/decrement", 15000, http.StatusUnprocessableEntity},
		{"/currency-balances/set-amount", -1, http.StatusBadRequest},
	}

	for _, tt := range tests {
		body, _ := json.Marshal(dto.CurrencyBalanceRequest{BalanceID: "b-1", CurrencyID: "c-1", Amount: tt.amount})
		rec := httptest.NewRecorder()
		currencyBalanceRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tt.path, bytes.NewReader(body)))
		if rec.Code != tt.expected {
			t.Fatalf("%s %d: expected %d, got %d", tt.path, tt.amount, tt.expected, rec.Code)
		}
	}

	expectedOps := []string{usecase.OperationSet, usecase.OperationIncrement, usecase.OperationDecrement}
	if len(ops) != len(expectedOps) {
		t.Fatalf("expected operations %v, got %v", expectedOps, ops)
	}
	for i := range ops {
		if ops[i] != expectedOps[i] {
			t.Fatalf("expected operations %v, got %v", expectedOps, ops)
		}
	}
}

func TestCurrencyBalanceHandler_GetOrCreate_ReportsBranch(t *testing.T) {
	created := true
	h := NewCurrencyBalanceHandler(&currencyBalanceServiceStub{
		getOrCreateFn: func(ctx context.Context, balanceID, currencyID string) (*domain.GetOrCreateResult, error) {
			return &domain.GetOrCreateResult{
				CurrencyBalance: &domain.CurrencyBalance{ID: "cb-1", BalanceID: balanceID, CurrencyID: currencyID},
				Created:         created,
			}, nil
		},
	})

	body := `{"balance_id":"b-1","currency_id":"c-1"}`
	rec := httptest.NewRecorder()
	currencyBalanceRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/currency-balances/get-or-create", bytes.NewBufferString(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 on create, got %d", rec.Code)
	}

	created = false
	rec = httptest.NewRecorder()
	currencyBalanceRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/currency-balances/get-or-create", bytes.NewBufferString(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on existing row, got %d", rec.Code)
	}

	var resp dto.GetOrCreateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Created || resp.CurrencyBalance.ID != "cb-1" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestCurrencyBalanceHandler_Create_Conflict(t *testing.T) {
	h := NewCurrencyBalanceHandler(&currencyBalanceServiceStub{
		createFn: func(ctx context.Context, input usecase.CurrencyBalanceInput) (*domain.CurrencyBalance, error) {
			return nil, domain.ErrCurrencyBalanceExists
		},
	})

	rec := httptest.NewRecorder()
	currencyBalanceRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/currency-balances",
		bytes.NewBufferString(`{"balance_id":"b-1","currency_id":"c-1","amount":0}`)))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestCurrencyBalanceHandler_GetByPair(t *testing.T) {
	h := NewCurrencyBalanceHandler(&currencyBalanceServiceStub{
		getByPairFn: func(ctx context.Context, balanceID, currencyID string) (*domain.CurrencyBalance, error) {
			return &domain.CurrencyBalance{ID: "cb-1", BalanceID: balanceID, CurrencyID: currencyID, Amount: 700}, nil
		},
	})

	rec := httptest.NewRecorder()
	currencyBalanceRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/currency-balances/by-pair?balance_id=b-1&currency_id=c-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	currencyBalanceRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/currency-balances/by-pair?balance_id=b-1", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without currency, got %d", rec.Code)
	}
}

func TestCurrencyBalanceHandler_List_AmountRange(t *testing.T) {
	var captured domain.CurrencyBalanceFilter
	h := NewCurrencyBalanceHandler(&currencyBalanceServiceStub{
		searchFn: func(ctx context.Context, filter domain.CurrencyBalanceFilter) ([]*domain.CurrencyBalance, int64, error) {
			captured = filter
			return nil, 0, nil
		},
	})

	rec := httptest.NewRecorder()
	currencyBalanceRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/currency-balances?balance_id=b-1&min_amount=10", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.BalanceID != "b-1" || captured.MinAmount == nil || *captured.MinAmount != 10 || captured.MaxAmount != nil {
		t.Fatalf("unexpected filter %+v", captured)
	}
}
