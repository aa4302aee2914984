package dto

import (
	"time"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ListResponse is one page of a search.
type ListResponse[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// NewListResponse builds a page, mapping every item with fn.
func NewListResponse[S, T any](items []S, total int64, limit, offset int, fn func(S) T) *ListResponse[T] {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}
	return &ListResponse[T]{Items: out, Total: total, Limit: limit, Offset: offset}
}

// CurrencyResponse represents a currency in API responses.
type CurrencyResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Symbol    string    `json:"symbol"`
	Exponent  int32     `json:"exponent"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CurrencyFromDomain converts a domain currency to a response.
func CurrencyFromDomain(c *domain.Currency) *CurrencyResponse {
	return &CurrencyResponse{
		ID:        c.ID,
		Code:      c.Code,
		Name:      c.Name,
		Symbol:    c.Symbol,
		Exponent:  c.Exponent,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CurrencyBalanceResponse represents a projection row. Amount is in minor
// units; Display renders it in major units when the currency is loaded.
type CurrencyBalanceResponse struct {
	ID         string            `json:"id"`
	BalanceID  string            `json:"balance_id"`
	CurrencyID string            `json:"currency_id"`
	Amount     int64             `json:"amount"`
	Display    string            `json:"display,omitempty"`
	Currency   *CurrencyResponse `json:"currency,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// CurrencyBalanceFromDomain converts a projection row to a response.
func CurrencyBalanceFromDomain(cb *domain.CurrencyBalance) *CurrencyBalanceResponse {
	resp := &CurrencyBalanceResponse{
		ID:         cb.ID,
		BalanceID:  cb.BalanceID,
		CurrencyID: cb.CurrencyID,
		Amount:     cb.Amount,
		CreatedAt:  cb.CreatedAt,
		UpdatedAt:  cb.UpdatedAt,
	}
	if cb.Currency != nil {
		resp.Display = cb.Currency.Format(cb.Amount)
		resp.Currency = CurrencyFromDomain(cb.Currency)
	}
	return resp
}

// GetOrCreateResponse reports a projection row and whether it was created.
type GetOrCreateResponse struct {
	CurrencyBalance *CurrencyBalanceResponse `json:"currency_balance"`
	Created         bool                     `json:"created"`
}

// GetOrCreateFromDomain converts a get-or-create result to a response.
func GetOrCreateFromDomain(r *domain.GetOrCreateResult) *GetOrCreateResponse {
	return &GetOrCreateResponse{
		CurrencyBalance: CurrencyBalanceFromDomain(r.CurrencyBalance),
		Created:         r.Created,
	}
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Amount     int64     `json:"amount"`
	BalanceID  string    `json:"balance_id"`
	CurrencyID string    `json:"currency_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:         t.ID,
		Type:       string(t.Type),
		Amount:     t.Amount,
		BalanceID:  t.BalanceID,
		CurrencyID: t.CurrencyID,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

// TransferResponse holds both legs of a transfer.
type TransferResponse struct {
	Expense *TransactionResponse `json:"expense"`
	Income  *TransactionResponse `json:"income"`
}

// TransferFromDomain converts a transfer result to a response.
func TransferFromDomain(r *usecase.TransferResult) *TransferResponse {
	return &TransferResponse{
		Expense: TransactionFromDomain(r.Expense),
		Income:  TransactionFromDomain(r.Income),
	}
}

// BalanceResponse represents a balance. The nested collections are only set
// on single-balance lookups.
type BalanceResponse struct {
	ID                 string                     `json:"id"`
	Name               string                     `json:"name"`
	CreatedAt          time.Time                  `json:"created_at"`
	UpdatedAt          time.Time                  `json:"updated_at"`
	CurrencyBalances   []*CurrencyBalanceResponse `json:"currency_balances,omitempty"`
	RecentTransactions []*TransactionResponse     `json:"recent_transactions,omitempty"`
	TransactionCount   *int64                     `json:"transaction_count,omitempty"`
}

// BalanceFromDomain converts a balance without its read model.
func BalanceFromDomain(b *domain.Balance) *BalanceResponse {
	return &BalanceResponse{
		ID:        b.ID,
		Name:      b.Name,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// BalanceDetailFromDomain converts a balance together with its projection
// rows and latest transactions.
func BalanceDetailFromDomain(b *domain.Balance) *BalanceResponse {
	resp := BalanceFromDomain(b)
	resp.CurrencyBalances = make([]*CurrencyBalanceResponse, len(b.CurrencyBalances))
	for i, cb := range b.CurrencyBalances {
		resp.CurrencyBalances[i] = CurrencyBalanceFromDomain(cb)
	}
	resp.RecentTransactions = make([]*TransactionResponse, len(b.RecentTransactions))
	for i, t := range b.RecentTransactions {
		resp.RecentTransactions[i] = TransactionFromDomain(t)
	}
	count := b.TransactionCount
	resp.TransactionCount = &count
	return resp
}

// StatisticsResponse summarizes the history of a balance.
type StatisticsResponse struct {
	BalanceID         string `json:"balance_id"`
	CurrencyID        string `json:"currency_id,omitempty"`
	TotalIncome       int64  `json:"total_income"`
	TotalExpense      int64  `json:"total_expense"`
	NetAmount         int64  `json:"net_amount"`
	TotalTransactions int64  `json:"total_transactions"`
}

// StatisticsFromDomain converts statistics to a response.
func StatisticsFromDomain(s *domain.BalanceStatistics) *StatisticsResponse {
	return &StatisticsResponse{
		BalanceID:         s.BalanceID,
		CurrencyID:        s.CurrencyID,
		TotalIncome:       s.TotalIncome,
		TotalExpense:      s.TotalExpense,
		NetAmount:         s.NetAmount,
		TotalTransactions: s.TotalTransactions,
	}
}

// ReconciliationResultResponse is the check of one pair.
type ReconciliationResultResponse struct {
	BalanceID      string `json:"balance_id"`
	CurrencyID     string `json:"currency_id"`
	RecordedAmount int64  `json:"recorded_amount"`
	ExpectedAmount int64  `json:"expected_amount"`
	Difference     int64  `json:"difference"`
	IsReconciled   bool   `json:"is_reconciled"`
}

// ReconciliationResultFromDomain converts one pair check to a response.
func ReconciliationResultFromDomain(r *usecase.ReconciliationResult) *ReconciliationResultResponse {
	return &ReconciliationResultResponse{
		BalanceID:      r.BalanceID,
		CurrencyID:     r.CurrencyID,
		RecordedAmount: r.RecordedAmount,
		ExpectedAmount: r.ExpectedAmount,
		Difference:     r.Difference,
		IsReconciled:   r.IsReconciled,
	}
}

// ReconciliationResultsFromDomain converts a list of pair checks.
func ReconciliationResultsFromDomain(results []*usecase.ReconciliationResult) []*ReconciliationResultResponse {
	out := make([]*ReconciliationResultResponse, len(results))
	for i, r := range results {
		out[i] = ReconciliationResultFromDomain(r)
	}
	return out
}

// ReconciliationReportResponse summarizes a full reconciliation run.
type ReconciliationReportResponse struct {
	TotalPairs      int                             `json:"total_pairs"`
	ReconciledPairs int                             `json:"reconciled_pairs"`
	Discrepancies   []*ReconciliationResultResponse `json:"discrepancies"`
	CheckedAt       time.Time                       `json:"checked_at"`
}

// ReconciliationReportFromDomain converts a report to a response.
func ReconciliationReportFromDomain(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	return &ReconciliationReportResponse{
		TotalPairs:      r.TotalPairs,
		ReconciledPairs: r.ReconciledPairs,
		Discrepancies:   ReconciliationResultsFromDomain(r.Discrepancies),
		CheckedAt:       r.CheckedAt,
	}
}
