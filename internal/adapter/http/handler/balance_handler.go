package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cashledger/internal/adapter/http/dto"
	"github.com/iho/cashledger/internal/domain"
)

// BalanceService defines the behavior needed by BalanceHandler.
type BalanceService interface {
	Create(ctx context.Context, name string) (*domain.Balance, error)
	Update(ctx context.Context, id string, name *string) (*domain.Balance, error)
	Delete(ctx context.Context, id string) error
	Reset(ctx context.Context, id string) (*domain.Balance, error)
	GetByID(ctx context.Context, id string) (*domain.Balance, error)
	Search(ctx context.Context, filter domain.BalanceFilter) ([]*domain.Balance, int64, error)
}

// StatisticsService computes history totals of a balance.
type StatisticsService interface {
	GetBalanceStatistics(ctx context.Context, balanceID, currencyID string) (*domain.BalanceStatistics, error)
}

// BalanceHandler handles balance-related HTTP requests.
type BalanceHandler struct {
	balanceUC BalanceService
	statsUC   StatisticsService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService, statsUC StatisticsService) *BalanceHandler {
	return &BalanceHandler{balanceUC: balanceUC, statsUC: statsUC}
}

// Create creates a new balance.
func (h *BalanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBalanceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	balance, err := h.balanceUC.Create(r.Context(), req.Name)
	if err != nil {
		writeDomainError(w, "failed to create balance", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.BalanceFromDomain(balance))
}

// Get returns a balance with its currency balances and latest transactions.
func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	balance, err := h.balanceUC.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceDetailFromDomain(balance))
}

// List searches balances by name.
func (h *BalanceHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePage(r)
	filter := domain.BalanceFilter{
		Name:   r.URL.Query().Get("name"),
		SortBy: r.URL.Query().Get("sort_by"),
		Order:  sortOrder(r),
		Limit:  limit,
		Offset: offset,
	}

	balances, total, err := h.balanceUC.Search(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to list balances", err)
		return
	}

	limit, offset, _ = domain.ValidatePagination(limit, offset)
	writeJSON(w, http.StatusOK, dto.NewListResponse(balances, total, limit, offset, dto.BalanceFromDomain))
}

// Update renames a balance.
func (h *BalanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateBalanceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	balance, err := h.balanceUC.Update(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		writeDomainError(w, "failed to update balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}

// Delete removes a balance with everything it owns.
func (h *BalanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.balanceUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "failed to delete balance", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reset deletes the history of a balance and zeroes its currency balances.
func (h *BalanceHandler) Reset(w http.ResponseWriter, r *http.Request) {
	balance, err := h.balanceUC.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to reset balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceDetailFromDomain(balance))
}

// Statistics sums the history of a balance, optionally for one currency.
func (h *BalanceHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsUC.GetBalanceStatistics(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("currency_id"))
	if err != nil {
		writeDomainError(w, "failed to get statistics", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatisticsFromDomain(stats))
}
