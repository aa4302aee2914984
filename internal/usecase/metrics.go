package usecase

import (
	"errors"
	"time"

	"github.com/iho/cashledger/internal/domain"
)

// Rejection reasons reported to LedgerMetrics.
const (
	RejectionInsufficientFunds = "insufficient_funds"
	RejectionInvalidArgument   = "invalid_argument"
	RejectionNotFound          = "not_found"
	RejectionConflict          = "conflict"
	RejectionInternal          = "internal"
)

func observe(m LedgerMetrics, operation string, start time.Time, err error) {
	if m == nil {
		return
	}

	m.ObserveOperation(operation, time.Since(start))
	if err != nil {
		m.RecordRejection(rejectionReason(err))
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return RejectionInsufficientFunds
	case errors.Is(err, domain.ErrInvalidArgument):
		return RejectionInvalidArgument
	case errors.Is(err, domain.ErrNotFound):
		return RejectionNotFound
	case errors.Is(err, domain.ErrConflict):
		return RejectionConflict
	default:
		return RejectionInternal
	}
}
