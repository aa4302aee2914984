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
)

type balanceServiceStub struct {
	createFn func(ctx context.Context, name string) (*domain.Balance, error)
	updateFn func(ctx context.Context, id string, name *string) (*domain.Balance, error)
	deleteFn func(ctx context.Context, id string) error
	resetFn  func(ctx context.Context, id string) (*domain.Balance, error)
	getFn    func(ctx context.Context, id string) (*domain.Balance, error)
	searchFn func(ctx context.Context, filter domain.BalanceFilter) ([]*domain.Balance, int64, error)
}

func (s *balanceServiceStub) Create(ctx context.Context, name string) (*domain.Balance, error) {
	return s.createFn(ctx, name)
}

func (s *balanceServiceStub) Update(ctx context.Context, id string, name *string) (*domain.Balance, error) {
	return s.updateFn(ctx, id, name)
}

func (s *balanceServiceStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *balanceServiceStub) Reset(ctx context.Context, id string) (*domain.Balance, error) {
	return s.resetFn(ctx, id)
}

func (s *balanceServiceStub) GetByID(ctx context.Context, id string) (*domain.Balance, error) {
	return s.getFn(ctx, id)
}

func (s *balanceServiceStub) Search(ctx context.Context, filter domain.BalanceFilter) ([]*domain.Balance, int64, error) {
	return s.searchFn(ctx, filter)
}

type statisticsServiceStub struct {
	statsFn func(ctx context.Context, balanceID, currencyID string) (*domain.BalanceStatistics, error)
}

func (s *statisticsServiceStub) GetBalanceStatistics(ctx context.Context, balanceID, currencyID string) (*domain.BalanceStatistics, error) {
	return s.statsFn(ctx, balanceID, currencyID)
}

func balanceRouter(h *BalanceHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/balances", h.Create)
	r.Get("/balances", h.List)
	r.Get("/balances/{id}", h.Get)
	r.Put("/balances/{id}", h.Update)
	r.Delete("/balances/{id}", h.Delete)
	r.Post("/balances/{id}/reset", h.Reset)
	r.Get("/balances/{id}/statistics", h.Statistics)
	return r
}

func TestBalanceHandler_Create_Success(t *testing.T) {
	var captured string
	h := NewBalanceHandler(&balanceServiceStub{
		createFn: func(ctx context.Context, name string) (*domain.Balance, error) {
			captured = name
			return &domain.Balance{ID: "b-1", Name: name}, nil
		},
	}, nil)

	body, _ := json.Marshal(dto.CreateBalanceRequest{Name: "Cashbox"})
	rec := httptest.NewRecorder()
	balanceRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/balances", bytes.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured != "Cashbox" {
		t.Fatalf("expected name Cashbox, got %q", captured)
	}

	var resp dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "b-1" {
		t.Fatalf("expected balance ID b-1, got %s", resp.ID)
	}
}

func TestBalanceHandler_Create_NameTaken(t *testing.T) {
	h := NewBalanceHandler(&balanceServiceStub{
		createFn: func(ctx context.Context, name string) (*domain.Balance, error) {
			return nil, domain.ErrBalanceNameTaken
		},
	}, nil)

	rec := httptest.NewRecorder()
	balanceRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/balances", bytes.NewBufferString(`{"name":"Cashbox"}`)))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestBalanceHandler_Get_Detail(t *testing.T) {
	h := NewBalanceHandler(&balanceServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Balance, error) {
			if id != "b-1" {
				return nil, domain.ErrBalanceNotFound
			}
			return &domain.Balance{
				ID:               "b-1",
				Name:             "Cashbox",
				CurrencyBalances: []*domain.CurrencyBalance{{ID: "cb-1", BalanceID: "b-1", CurrencyID: "c-1", Amount: 10000}},
				TransactionCount: 3,
			}, nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	balanceRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/balances/b-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.CurrencyBalances) != 1 || resp.CurrencyBalances[0].Amount != 10000 {
		t.Fatalf("expected one currency balance of 10000, got %+v", resp.CurrencyBalances)
	}
	if resp.TransactionCount == nil || *resp.TransactionCount != 3 {
		t.Fatalf("expected transaction count 3, got %v", resp.TransactionCount)
	}

	rec = httptest.NewRecorder()
	balanceRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/balances/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestBalanceHandler_List_PassesFilter(t *testing.T) {
	var captured domain.BalanceFilter
	h := NewBalanceHandler(&balanceServiceStub{
		searchFn: func(ctx context.Context, filter domain.BalanceFilter) ([]*domain.Balance, int64, error) {
			captured = filter
			return []*domain.Balance{{ID: "b-1", Name: "Cashbox"}}, 41, nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	balanceRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/balances?name=cash&sort_by=name&order=asc&limit=500&offset=40", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.Name != "cash" || captured.SortBy != "name" || captured.Order != domain.SortAsc || captured.Offset != 40 {
		t.Fatalf("unexpected filter %+v", captured)
	}

	var resp dto.ListResponse[dto.BalanceResponse]
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 41 || resp.Limit != domain.MaxPageSize || len(resp.Items) != 1 {
		t.Fatalf("unexpected page %+v", resp)
	}
}

func TestBalanceHandler_Delete(t *testing.T) {
	var deleted string
	h := NewBalanceHandler(&balanceServiceStub{
		deleteFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	balanceRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/balances/b-1", nil))

	if rec.Code != http.StatusNoContent || deleted != "b-1" {
		t.Fatalf("expected 204 deleting b-1, got %d %q", rec.Code, deleted)
	}
}

func TestBalanceHandler_Reset(t *testing.T) {
	h := NewBalanceHandler(&balanceServiceStub{
		resetFn: func(ctx context.Context, id string) (*domain.Balance, error) {
			return &domain.Balance{
				ID:               id,
				CurrencyBalances: []*domain.CurrencyBalance{{ID: "cb-1", BalanceID: id, CurrencyID: "c-1"}},
			}, nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	balanceRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/balances/b-1/reset", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TransactionCount == nil || *resp.TransactionCount != 0 || resp.CurrencyBalances[0].Amount != 0 {
		t.Fatalf("expected zeroed balance, got %+v", resp)
	}
}

func TestBalanceHandler_Statistics(t *testing.T) {
	h := NewBalanceHandler(nil, &statisticsServiceStub{
		statsFn: func(ctx context.Context, balanceID, currencyID string) (*domain.BalanceStatistics, error) {
			return &domain.BalanceStatistics{
				BalanceID:         balanceID,
				CurrencyID:        currencyID,
				TotalIncome:       12000,
				TotalExpense:      2000,
				NetAmount:         10000,
				TotalTransactions: 3,
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	balanceRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/balances/b-1/statistics?currency_id=c-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.StatisticsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.CurrencyID != "c-1" || resp.NetAmount != 10000 {
		t.Fatalf("unexpected statistics %+v", resp)
	}
}
