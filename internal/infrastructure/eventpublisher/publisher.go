package eventpublisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/usecase"
)

// EventPublisher drains the outbox: it publishes unpublished events in
// creation order and marks each one once the publisher accepted it.
// Delivery is at least once.
type EventPublisher struct {
	outboxRepo usecase.OutboxRepository
	publisher  Publisher
	metrics    Metrics
	logger     zerolog.Logger
	batchSize  int
	interval   time.Duration
	retention  time.Duration
	now        func() time.Time
}

// Publisher defines the interface for publishing events to external systems.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// Metrics records publishing outcomes.
type Metrics interface {
	RecordOutboxPublished(eventType string)
	RecordOutboxFailed(eventType string)
}

// Config for EventPublisher.
type Config struct {
	OutboxRepo usecase.OutboxRepository
	Publisher  Publisher
	Metrics    Metrics
	Logger     zerolog.Logger
	BatchSize  int           // Number of events to fetch per batch
	Interval   time.Duration // Polling interval
	Retention  time.Duration // Published events older than this are purged; zero keeps them
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}

	return &EventPublisher{
		outboxRepo: cfg.OutboxRepo,
		publisher:  cfg.Publisher,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger.With().Str("component", "outbox").Logger(),
		batchSize:  cfg.BatchSize,
		interval:   cfg.Interval,
		retention:  cfg.Retention,
		now:        time.Now,
	}
}

// Start runs the worker until ctx is cancelled.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().
		Int("batch_size", ep.batchSize).
		Dur("interval", ep.interval).
		Msg("event publisher started")

	ticker := time.NewTicker(ep.interval)
	defer ticker.Stop()

	ep.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			ep.logger.Info().Msg("event publisher shutting down")
			return ctx.Err()
		case <-ticker.C:
			ep.tick(ctx)
		}
	}
}

func (ep *EventPublisher) tick(ctx context.Context) {
	if err := ep.processEvents(ctx); err != nil && ctx.Err() == nil {
		ep.logger.Error().Err(err).Msg("error processing events")
	}
	if err := ep.purge(ctx); err != nil && ctx.Err() == nil {
		ep.logger.Error().Err(err).Msg("error purging published events")
	}
}

// processEvents fetches and publishes a batch of unpublished events.
// A failed publish skips the event until the next tick; a failed mark
// stops the batch so later events are not published ahead of it twice.
func (ep *EventPublisher) processEvents(ctx context.Context) error {
	events, err := ep.outboxRepo.GetUnpublished(ctx, ep.batchSize)
	if err != nil {
		return fmt.Errorf("fetch unpublished events: %w", err)
	}

	if len(events) == 0 {
		return nil
	}

	ep.logger.Debug().Int("count", len(events)).Msg("processing events")

	for _, event := range events {
		if err := ep.publisher.Publish(ctx, event); err != nil {
			ep.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Str("event_type", event.EventType).
				Msg("failed to publish event")
			if ep.metrics != nil {
				ep.metrics.RecordOutboxFailed(event.EventType)
			}
			continue
		}

		if err := ep.outboxRepo.MarkPublished(ctx, event.ID, ep.now()); err != nil {
			return fmt.Errorf("mark event %s published: %w", event.ID, err)
		}
		if ep.metrics != nil {
			ep.metrics.RecordOutboxPublished(event.EventType)
		}
	}

	return nil
}

func (ep *EventPublisher) purge(ctx context.Context) error {
	if ep.retention <= 0 {
		return nil
	}

	n, err := ep.outboxRepo.DeletePublished(ctx, ep.now().Add(-ep.retention))
	if err != nil {
		return err
	}
	if n > 0 {
		ep.logger.Debug().Int64("count", n).Msg("purged published events")
	}
	return nil
}

// envelope is the wire form of a published event.
type envelope struct {
	ID            string          `json:"id"`
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"created_at"`
}

func encode(event *domain.OutboxEvent) ([]byte, error) {
	return json.Marshal(envelope{
		ID:            event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		CreatedAt:     event.CreatedAt,
	})
}

// RedisPublisher publishes events to a Redis pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher creates a new RedisPublisher.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// Publish sends the event envelope to the channel.
func (p *RedisPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	msg, err := encode(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, msg).Err()
}

// LogPublisher is a simple publisher that logs events.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(_ context.Context, event *domain.OutboxEvent) error {
	payload := []byte(event.Payload)
	if len(payload) == 0 {
		payload = []byte("null")
	}

	p.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Str("aggregate_id", event.AggregateID).
		RawJSON("payload", payload).
		Msg("event published")

	return nil
}
