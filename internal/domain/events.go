package domain

import (
	"encoding/json"
	"time"
)

// Event types
const (
	EventTypeBalanceReset       = "balance.reset"
	EventTypeTransactionCreated = "transaction.created"
	EventTypeTransactionUpdated = "transaction.updated"
	EventTypeTransactionDeleted = "transaction.deleted"
	EventTypeTransferCreated    = "transfer.created"
)

// Aggregate types
const (
	AggregateTypeBalance     = "balance"
	AggregateTypeTransaction = "transaction"
)

// OutboxEvent is an event written in the same store transaction as the
// change it describes and published afterwards.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       json.RawMessage
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewOutboxEvent marshals payload into a new unpublished event.
func NewOutboxEvent(id, aggregateType, aggregateID, eventType string, payload any, now time.Time) (*OutboxEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		ID:            id,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       raw,
		CreatedAt:     now,
	}, nil
}

// BalanceResetEvent payload
type BalanceResetEvent struct {
	BalanceID           string `json:"balance_id"`
	DeletedTransactions int64  `json:"deleted_transactions"`
	EventAt             string `json:"event_at"`
}

// TransactionEvent payload
type TransactionEvent struct {
	TransactionID string `json:"transaction_id"`
	Type          string `json:"type"`
	Amount        int64  `json:"amount"`
	BalanceID     string `json:"balance_id"`
	CurrencyID    string `json:"currency_id"`
	EventAt       string `json:"event_at"`
}

// TransferCreatedEvent payload
type TransferCreatedEvent struct {
	ExpenseTransactionID string `json:"expense_transaction_id"`
	IncomeTransactionID  string `json:"income_transaction_id"`
	FromBalanceID        string `json:"from_balance_id"`
	ToBalanceID          string `json:"to_balance_id"`
	CurrencyID           string `json:"currency_id"`
	Amount               int64  `json:"amount"`
	EventAt              string `json:"event_at"`
}

// NewTransactionEvent builds the payload for a transaction event.
func NewTransactionEvent(t *Transaction, at time.Time) TransactionEvent {
	return TransactionEvent{
		TransactionID: t.ID,
		Type:          string(t.Type),
		Amount:        t.Amount,
		BalanceID:     t.BalanceID,
		CurrencyID:    t.CurrencyID,
		EventAt:       at.Format(time.RFC3339Nano),
	}
}
