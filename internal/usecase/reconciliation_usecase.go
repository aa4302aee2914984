package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/cashledger/internal/domain"
)

// ReconciliationUseCase compares the projection with the amounts implied by
// the transaction history. Engine operations keep the two equal; direct
// projection writes (SetAmount, IncrementAmount, DecrementAmount) show up as
// differences.
type ReconciliationUseCase struct {
	balanceRepo BalanceRepository
	cbRepo      CurrencyBalanceRepository
	txRepo      TransactionRepository
}

// NewReconciliationUseCase creates a new reconciliation use case.
func NewReconciliationUseCase(
	balanceRepo BalanceRepository,
	cbRepo CurrencyBalanceRepository,
	txRepo TransactionRepository,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		balanceRepo: balanceRepo,
		cbRepo:      cbRepo,
		txRepo:      txRepo,
	}
}

// ReconciliationResult is the check of one (balance, currency) pair.
type ReconciliationResult struct {
	BalanceID      string
	CurrencyID     string
	RecordedAmount int64
	ExpectedAmount int64
	Difference     int64
	IsReconciled   bool
}

// ReconciliationReport summarizes a reconciliation run.
type ReconciliationReport struct {
	TotalPairs      int
	ReconciledPairs int
	Discrepancies   []*ReconciliationResult
	CheckedAt       time.Time
}

// ReconcileBalance checks every pair of one balance.
func (uc *ReconciliationUseCase) ReconcileBalance(ctx context.Context, balanceID string) ([]*ReconciliationResult, error) {
	if _, err := uc.balanceRepo.GetByID(ctx, balanceID); err != nil {
		return nil, err
	}

	cbs, err := uc.cbRepo.ListByBalance(ctx, balanceID)
	if err != nil {
		return nil, fmt.Errorf("list currency balances: %w", err)
	}

	totals, err := uc.txRepo.PairTotals(ctx, balanceID)
	if err != nil {
		return nil, fmt.Errorf("aggregate history: %w", err)
	}

	return compare(cbs, totals), nil
}

// GenerateReport checks every pair of every balance.
func (uc *ReconciliationUseCase) GenerateReport(ctx context.Context) (*ReconciliationReport, error) {
	totals, err := uc.txRepo.PairTotals(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("aggregate history: %w", err)
	}

	var cbs []*domain.CurrencyBalance
	filter := domain.CurrencyBalanceFilter{Limit: domain.MaxPageSize, SortBy: domain.SortByCreatedAt, Order: domain.SortAsc}
	for {
		sort, err := filter.Normalize()
		if err != nil {
			return nil, err
		}
		page, _, err := uc.cbRepo.Search(ctx, filter, sort)
		if err != nil {
			return nil, fmt.Errorf("list currency balances: %w", err)
		}
		cbs = append(cbs, page...)
		if len(page) < filter.Limit {
			break
		}
		filter.Offset += len(page)
	}

	results := compare(cbs, totals)
	report := &ReconciliationReport{
		TotalPairs:    len(results),
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     time.Now().UTC(),
	}
	for _, r := range results {
		if r.IsReconciled {
			report.ReconciledPairs++
		} else {
			report.Discrepancies = append(report.Discrepancies, r)
		}
	}
	return report, nil
}

// compare matches projection rows against history totals. A pair with
// history but no projection row counts as recorded zero.
func compare(cbs []*domain.CurrencyBalance, totals []*domain.PairTotals) []*ReconciliationResult {
	expected := make(map[domain.PairKey]int64, len(totals))
	for _, t := range totals {
		expected[t.Key] = t.Expected()
	}

	results := make([]*ReconciliationResult, 0, len(cbs))
	seen := make(map[domain.PairKey]struct{}, len(cbs))
	for _, cb := range cbs {
		key := cb.Key()
		seen[key] = struct{}{}
		results = append(results, newResult(key, cb.Amount, expected[key]))
	}

	for _, t := range totals {
		if _, ok := seen[t.Key]; ok {
			continue
		}
		results = append(results, newResult(t.Key, 0, t.Expected()))
	}
	return results
}

func newResult(key domain.PairKey, recorded, expected int64) *ReconciliationResult {
	return &ReconciliationResult{
		BalanceID:      key.BalanceID,
		CurrencyID:     key.CurrencyID,
		RecordedAmount: recorded,
		ExpectedAmount: expected,
		Difference:     recorded - expected,
		IsReconciled:   recorded == expected,
	}
}
