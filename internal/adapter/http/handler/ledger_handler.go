package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cashledger/internal/adapter/http/dto"
	"github.com/iho/cashledger/internal/usecase"
)

// ReconciliationService defines the behavior needed by LedgerHandler.
type ReconciliationService interface {
	ReconcileBalance(ctx context.Context, balanceID string) ([]*usecase.ReconciliationResult, error)
	GenerateReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// LedgerHandler handles ledger-wide reconciliation requests.
type LedgerHandler struct {
	reconciliationUC ReconciliationService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(reconciliationUC ReconciliationService) *LedgerHandler {
	return &LedgerHandler{reconciliationUC: reconciliationUC}
}

// Report compares every currency balance with its history.
func (h *LedgerHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.GenerateReport(r.Context())
	if err != nil {
		writeDomainError(w, "failed to reconcile ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromDomain(report))
}

// ReconcileBalance compares the currency balances of one balance with its
// history.
func (h *LedgerHandler) ReconcileBalance(w http.ResponseWriter, r *http.Request) {
	results, err := h.reconciliationUC.ReconcileBalance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to reconcile balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationResultsFromDomain(results))
}
