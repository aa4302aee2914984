package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cashledger/internal/adapter/http/dto"
	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	Create(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error)
	CreateIncome(ctx context.Context, input usecase.MovementInput) (*domain.Transaction, error)
	CreateExpense(ctx context.Context, input usecase.MovementInput) (*domain.Transaction, error)
	CreateTransfer(ctx context.Context, input usecase.CreateTransferInput) (*usecase.TransferResult, error)
	Update(ctx context.Context, id string, input usecase.UpdateTransactionInput) (*domain.Transaction, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	Search(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error)
	GetByDateRange(ctx context.Context, input usecase.DateRangeInput) ([]*domain.Transaction, int64, error)
}

// TransactionHandler handles the accounting engine endpoints.
type TransactionHandler struct {
	txUC TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txUC TransactionService) *TransactionHandler {
	return &TransactionHandler{txUC: txUC}
}

// Create records a transaction of any type.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, "invalid transaction type", err)
		return
	}

	t, err := h.txUC.Create(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to create transaction", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(t))
}

// CreateIncome records an INCOME transaction.
func (h *TransactionHandler) CreateIncome(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, "failed to create income", h.txUC.CreateIncome)
}

// CreateExpense records an EXPENSE transaction.
func (h *TransactionHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, "failed to create expense", h.txUC.CreateExpense)
}

func (h *TransactionHandler) movement(
	w http.ResponseWriter,
	r *http.Request,
	message string,
	fn func(context.Context, usecase.MovementInput) (*domain.Transaction, error),
) {
	var req dto.MovementRequest
	if !decodeBody(w, r, &req) {
		return
	}

	t, err := fn(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, message, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(t))
}

// CreateTransfer moves an amount between two balances.
func (h *TransactionHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.txUC.CreateTransfer(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to create transfer", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferFromDomain(result))
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.txUC.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(t))
}

// Update changes a transaction and re-applies its effect.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateTransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, "invalid update", err)
		return
	}

	t, err := h.txUC.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeDomainError(w, "failed to update transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(t))
}

// Delete reverts and removes a transaction.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.txUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "failed to delete transaction", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List searches transactions.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := transactionFilter(r)
	if err != nil {
		writeDomainError(w, "invalid query", err)
		return
	}

	txs, total, err := h.txUC.Search(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to list transactions", err)
		return
	}

	limit, offset, _ := domain.ValidatePagination(filter.Limit, filter.Offset)
	writeJSON(w, http.StatusOK, dto.NewListResponse(txs, total, limit, offset, dto.TransactionFromDomain))
}

// ListByDateRange lists the transactions of a balance within [from, to].
func (h *TransactionHandler) ListByDateRange(w http.ResponseWriter, r *http.Request) {
	from, err := parseTimeQuery(r, "from")
	if err != nil {
		writeDomainError(w, "invalid query", err)
		return
	}
	to, err := parseTimeQuery(r, "to")
	if err != nil {
		writeDomainError(w, "invalid query", err)
		return
	}
	if from == nil || to == nil {
		writeError(w, http.StatusBadRequest, "invalid query", "from and to are required")
		return
	}

	limit, offset := parsePage(r)
	q := r.URL.Query()
	txs, total, err := h.txUC.GetByDateRange(r.Context(), usecase.DateRangeInput{
		BalanceID:  q.Get("balance_id"),
		CurrencyID: q.Get("currency_id"),
		From:       *from,
		To:         *to,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeDomainError(w, "failed to list transactions", err)
		return
	}

	limit, offset, _ = domain.ValidatePagination(limit, offset)
	writeJSON(w, http.StatusOK, dto.NewListResponse(txs, total, limit, offset, dto.TransactionFromDomain))
}

func transactionFilter(r *http.Request) (domain.TransactionFilter, error) {
	q := r.URL.Query()
	limit, offset := parsePage(r)
	filter := domain.TransactionFilter{
		BalanceID:  q.Get("balance_id"),
		CurrencyID: q.Get("currency_id"),
		SortBy:     q.Get("sort_by"),
		Order:      sortOrder(r),
		Limit:      limit,
		Offset:     offset,
	}

	if v := q.Get("type"); v != "" {
		typ, err := domain.ParseTransactionType(v)
		if err != nil {
			return filter, err
		}
		filter.Type = typ
	}

	var err error
	if filter.MinAmount, err = parseAmountQuery(r, "min_amount"); err != nil {
		return filter, err
	}
	if filter.MaxAmount, err = parseAmountQuery(r, "max_amount"); err != nil {
		return filter, err
	}
	if filter.DateFrom, err = parseTimeQuery(r, "date_from"); err != nil {
		return filter, err
	}
	if filter.DateTo, err = parseTimeQuery(r, "date_to"); err != nil {
		return filter, err
	}
	return filter, nil
}
