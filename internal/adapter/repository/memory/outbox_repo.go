package memory

import (
	"context"
	"time"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

// Create stores an event inside tx.
func (r *OutboxRepository) Create(_ context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	return r.store.writeTx(tx, func(d *state) error {
		d.outbox[event.ID] = *event
		return nil
	})
}

// GetUnpublished returns the oldest unpublished events.
func (r *OutboxRepository) GetUnpublished(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	var out []*domain.OutboxEvent
	_ = r.store.read(func(d *state) error {
		for _, e := range d.outbox {
			if !e.Published {
				e := e
				out = append(out, &e)
			}
		}
		return nil
	})

	sortBy(out, false, func(a, b *domain.OutboxEvent) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	}, func(e *domain.OutboxEvent) string { return e.ID })

	return paginate(out, limit, 0), nil
}

// MarkPublished flags an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	return r.store.write(ctx, func(d *state) error {
		e, ok := d.outbox[id]
		if !ok {
			return nil
		}
		e.Published = true
		e.PublishedAt = &publishedAt
		d.outbox[id] = e
		return nil
	})
}

// DeletePublished drops events published before the cutoff.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	err := r.store.write(ctx, func(d *state) error {
		for id, e := range d.outbox {
			if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
				delete(d.outbox, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
