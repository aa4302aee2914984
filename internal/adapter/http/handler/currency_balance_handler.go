package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cashledger/internal/adapter/http/dto"
	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/usecase"
)

// CurrencyBalanceService defines the behavior needed by CurrencyBalanceHandler.
type CurrencyBalanceService interface {
	Create(ctx context.Context, input usecase.CurrencyBalanceInput) (*domain.CurrencyBalance, error)
	GetOrCreate(ctx context.Context, balanceID, currencyID string) (*domain.GetOrCreateResult, error)
	SetAmount(ctx context.Context, input usecase.CurrencyBalanceInput) (*domain.CurrencyBalance, error)
	IncrementAmount(ctx context.Context, input usecase.CurrencyBalanceInput) (*domain.CurrencyBalance, error)
	DecrementAmount(ctx context.Context, input usecase.CurrencyBalanceInput) (*domain.CurrencyBalance, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.CurrencyBalance, error)
	GetByBalanceAndCurrency(ctx context.Context, balanceID, currencyID string) (*domain.CurrencyBalance, error)
	Search(ctx context.Context, filter domain.CurrencyBalanceFilter) ([]*domain.CurrencyBalance, int64, error)
}

// CurrencyBalanceHandler handles requests against the per-currency projection.
type CurrencyBalanceHandler struct {
	cbUC CurrencyBalanceService
}

// NewCurrencyBalanceHandler creates a new CurrencyBalanceHandler.
func NewCurrencyBalanceHandler(cbUC CurrencyBalanceService) *CurrencyBalanceHandler {
	return &CurrencyBalanceHandler{cbUC: cbUC}
}

// Create creates the row for a pair that does not have one yet.
func (h *CurrencyBalanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CurrencyBalanceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cb, err := h.cbUC.Create(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to create currency balance", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CurrencyBalanceFromDomain(cb))
}

// GetOrCreate returns the row for a pair, creating it at zero when missing.
func (h *CurrencyBalanceHandler) GetOrCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.PairRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.cbUC.GetOrCreate(r.Context(), req.BalanceID, req.CurrencyID)
	if err != nil {
		writeDomainError(w, "failed to get or create currency balance", err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, dto.GetOrCreateFromDomain(result))
}

// SetAmount overwrites the amount of a pair.
func (h *CurrencyBalanceHandler) SetAmount(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, "failed to set amount", h.cbUC.SetAmount)
}

// Increment adds to the amount of a pair.
func (h *CurrencyBalanceHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, "failed to increment amount", h.cbUC.IncrementAmount)
}

// Decrement subtracts from the amount of a pair, never below zero.
func (h *CurrencyBalanceHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, "failed to decrement amount", h.cbUC.DecrementAmount)
}

func (h *CurrencyBalanceHandler) adjust(
	w http.ResponseWriter,
	r *http.Request,
	message string,
	fn func(context.Context, usecase.CurrencyBalanceInput) (*domain.CurrencyBalance, error),
) {
	var req dto.CurrencyBalanceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cb, err := fn(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, message, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CurrencyBalanceFromDomain(cb))
}

// Get retrieves a projection row by ID.
func (h *CurrencyBalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	cb, err := h.cbUC.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get currency balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CurrencyBalanceFromDomain(cb))
}

// GetByPair retrieves a projection row by balance and currency.
func (h *CurrencyBalanceHandler) GetByPair(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	balanceID, currencyID := q.Get("balance_id"), q.Get("currency_id")
	if balanceID == "" || currencyID == "" {
		writeError(w, http.StatusBadRequest, "missing pair", "balance_id and currency_id are required")
		return
	}

	cb, err := h.cbUC.GetByBalanceAndCurrency(r.Context(), balanceID, currencyID)
	if err != nil {
		writeDomainError(w, "failed to get currency balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CurrencyBalanceFromDomain(cb))
}

// List searches projection rows.
func (h *CurrencyBalanceHandler) List(w http.ResponseWriter, r *http.Request) {
	minAmount, err := parseAmountQuery(r, "min_amount")
	if err != nil {
		writeDomainError(w, "invalid query", err)
		return
	}
	maxAmount, err := parseAmountQuery(r, "max_amount")
	if err != nil {
		writeDomainError(w, "invalid query", err)
		return
	}

	limit, offset := parsePage(r)
	q := r.URL.Query()
	filter := domain.CurrencyBalanceFilter{
		BalanceID:  q.Get("balance_id"),
		CurrencyID: q.Get("currency_id"),
		MinAmount:  minAmount,
		MaxAmount:  maxAmount,
		SortBy:     q.Get("sort_by"),
		Order:      sortOrder(r),
		Limit:      limit,
		Offset:     offset,
	}

	cbs, total, err := h.cbUC.Search(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to list currency balances", err)
		return
	}

	limit, offset, _ = domain.ValidatePagination(limit, offset)
	writeJSON(w, http.StatusOK, dto.NewListResponse(cbs, total, limit, offset, dto.CurrencyBalanceFromDomain))
}

// Delete removes a projection row.
func (h *CurrencyBalanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.cbUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "failed to delete currency balance", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
