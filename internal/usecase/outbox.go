package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/cashledger/internal/domain"
)

// emitEvent writes an outbox event in tx. A nil repository disables events.
func emitEvent(
	ctx context.Context,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	tx Transaction,
	aggregateType, aggregateID, eventType string,
	payload any,
	now time.Time,
) error {
	if outboxRepo == nil {
		return nil
	}

	event, err := domain.NewOutboxEvent(idGen.Generate(), aggregateType, aggregateID, eventType, payload, now)
	if err != nil {
		return fmt.Errorf("build %s event: %w", eventType, err)
	}

	if err := outboxRepo.Create(ctx, tx, event); err != nil {
		return fmt.Errorf("write %s event: %w", eventType, err)
	}
	return nil
}
