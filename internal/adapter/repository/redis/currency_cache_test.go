package redis

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cashledger/internal/adapter/repository/memory"
	"github.com/iho/cashledger/internal/domain"
)

func newCachedCurrencies(t *testing.T) (*CachedCurrencyRepository, *memory.CurrencyRepository, *Cache) {
	t.Helper()

	client, _ := newTestRedisClient(t)
	cache := NewCache(client)
	inner := memory.NewCurrencyRepository(memory.NewStore())

	return NewCachedCurrencyRepository(inner, cache, time.Minute, zerolog.Nop()), inner, cache
}

func TestCachedCurrencyRepositoryReadThrough(t *testing.T) {
	repo, inner, cache := newCachedCurrencies(t)
	ctx := context.Background()
	now := time.Now().UTC()

	usd, err := domain.NewCurrency("cur-usd", "USD", "US Dollar", "$", 2, now)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, usd))

	got, err := repo.GetByCode(ctx, "USD")
	require.NoError(t, err)
	assert.Equal(t, "cur-usd", got.ID)

	raw, err := cache.Get(ctx, currencyCodeKey("USD"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "US Dollar")

	// A change made behind the cache is not visible until eviction.
	renamed := *usd
	renamed.Name = "Dollar"
	require.NoError(t, inner.Update(ctx, &renamed))

	got, err = repo.GetByCode(ctx, "USD")
	require.NoError(t, err)
	assert.Equal(t, "US Dollar", got.Name)
}

func TestCachedCurrencyRepositoryUpdateEvictsOldCode(t *testing.T) {
	repo, _, cache := newCachedCurrencies(t)
	ctx := context.Background()
	now := time.Now().UTC()

	c, err := domain.NewCurrency("cur-1", "AAA", "Alpha", "A", 2, now)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, c))

	_, err = repo.GetByID(ctx, "cur-1")
	require.NoError(t, err)
	_, err = repo.GetByCode(ctx, "AAA")
	require.NoError(t, err)

	changed := *c
	require.NoError(t, changed.Change("BBB", "Beta", "B", 2, now))
	require.NoError(t, repo.Update(ctx, &changed))

	_, err = cache.Get(ctx, currencyCodeKey("AAA"))
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = cache.Get(ctx, currencyIDKey("cur-1"))
	assert.ErrorIs(t, err, ErrCacheMiss)

	got, err := repo.GetByID(ctx, "cur-1")
	require.NoError(t, err)
	assert.Equal(t, "BBB", got.Code)
}

func TestCachedCurrencyRepositoryNotFoundIsNotCached(t *testing.T) {
	repo, _, cache := newCachedCurrencies(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrCurrencyNotFound)

	_, err = cache.Get(ctx, currencyIDKey("missing"))
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCachedCurrencyRepositoryDelete(t *testing.T) {
	repo, _, cache := newCachedCurrencies(t)
	ctx := context.Background()

	c, err := domain.NewCurrency("cur-1", "CCC", "Gamma", "G", 0, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, c))
	_, err = repo.GetByID(ctx, "cur-1")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "cur-1"))

	_, err = cache.Get(ctx, currencyIDKey("cur-1"))
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = repo.GetByID(ctx, "cur-1")
	assert.ErrorIs(t, err, domain.ErrCurrencyNotFound)
}
