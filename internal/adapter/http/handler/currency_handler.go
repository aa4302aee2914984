package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cashledger/internal/adapter/http/dto"
	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/usecase"
)

// CurrencyService defines the behavior needed by CurrencyHandler.
type CurrencyService interface {
	Create(ctx context.Context, input usecase.CurrencyInput) (*domain.Currency, error)
	Update(ctx context.Context, id string, input usecase.CurrencyInput) (*domain.Currency, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Currency, error)
	Search(ctx context.Context, filter domain.CurrencyFilter) ([]*domain.Currency, int64, error)
}

// CurrencyHandler handles currency-related HTTP requests.
type CurrencyHandler struct {
	currencyUC CurrencyService
}

// NewCurrencyHandler creates a new CurrencyHandler.
func NewCurrencyHandler(currencyUC CurrencyService) *CurrencyHandler {
	return &CurrencyHandler{currencyUC: currencyUC}
}

// Create creates a new currency.
func (h *CurrencyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CurrencyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	currency, err := h.currencyUC.Create(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to create currency", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CurrencyFromDomain(currency))
}

// Get retrieves a currency by ID.
func (h *CurrencyHandler) Get(w http.ResponseWriter, r *http.Request) {
	currency, err := h.currencyUC.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get currency", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CurrencyFromDomain(currency))
}

// List searches currencies by code and name.
func (h *CurrencyHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePage(r)
	q := r.URL.Query()
	filter := domain.CurrencyFilter{
		Code:   q.Get("code"),
		Name:   q.Get("name"),
		SortBy: q.Get("sort_by"),
		Order:  sortOrder(r),
		Limit:  limit,
		Offset: offset,
	}

	currencies, total, err := h.currencyUC.Search(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to list currencies", err)
		return
	}

	limit, offset, _ = domain.ValidatePagination(limit, offset)
	writeJSON(w, http.StatusOK, dto.NewListResponse(currencies, total, limit, offset, dto.CurrencyFromDomain))
}

// Update replaces the attributes of a currency.
func (h *CurrencyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.CurrencyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	currency, err := h.currencyUC.Update(r.Context(), chi.URLParam(r, "id"), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to update currency", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CurrencyFromDomain(currency))
}

// Delete removes a currency that nothing references.
func (h *CurrencyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.currencyUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "failed to delete currency", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
