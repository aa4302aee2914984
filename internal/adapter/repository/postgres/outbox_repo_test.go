package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cashledger/internal/domain"
)

func TestOutboxRepositoryCreateAndFetch(t *testing.T) {
	pool := newMockPool(t)
	repo := NewOutboxRepository(pool)
	tx := beginTx(t, pool)
	now := time.Now().UTC()

	event, err := domain.NewOutboxEvent("ev-1", domain.AggregateTypeBalance, "bal", domain.EventTypeBalanceReset,
		domain.BalanceResetEvent{BalanceID: "bal"}, now)
	require.NoError(t, err)

	pool.ExpectExec("INSERT INTO outbox_events").
		WithArgs("ev-1", "bal", "balance", "balance.reset", []byte(event.Payload), now, false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Create(context.Background(), tx, event))

	pool.ExpectQuery("WHERE NOT published").
		WithArgs(int32(10)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "aggregate_id", "aggregate_type", "event_type", "payload", "created_at", "published_at", "published"}).
			AddRow("ev-1", "bal", "balance", "balance.reset", []byte(event.Payload), now, nil, false))

	events, err := repo.GetUnpublished(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.JSONEq(t, string(event.Payload), string(events[0].Payload))
	assert.Nil(t, events[0].PublishedAt)
	assertExpectations(t, pool)
}

func TestOutboxRepositoryDeletePublished(t *testing.T) {
	pool := newMockPool(t)
	repo := NewOutboxRepository(pool)
	cutoff := time.Now().UTC()

	pool.ExpectExec("DELETE FROM outbox_events").
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 7))

	n, err := repo.DeletePublished(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}
