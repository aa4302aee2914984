package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a store transaction.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour
)

// Engine operation names used for metrics.
const (
	OperationCreate    = "create"
	OperationUpdate    = "update"
	OperationDelete    = "delete"
	OperationTransfer  = "transfer"
	OperationReset     = "reset"
	OperationSet       = "set_amount"
	OperationIncrement = "increment"
	OperationDecrement = "decrement"
)
