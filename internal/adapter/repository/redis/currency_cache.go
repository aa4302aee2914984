package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/usecase"
)

// CachedCurrencyRepository is a read-through cache in front of a
// usecase.CurrencyRepository. Writes go to the wrapped repository first and
// then evict the affected keys. Cache failures degrade to direct reads.
type CachedCurrencyRepository struct {
	usecase.CurrencyRepository

	cache  usecase.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedCurrencyRepository wraps repo with cache.
func NewCachedCurrencyRepository(repo usecase.CurrencyRepository, cache usecase.Cache, ttl time.Duration, logger zerolog.Logger) *CachedCurrencyRepository {
	return &CachedCurrencyRepository{
		CurrencyRepository: repo,
		cache:              cache,
		ttl:                ttl,
		logger:             logger,
	}
}

func currencyIDKey(id string) string     { return "currency:id:" + id }
func currencyCodeKey(code string) string { return "currency:code:" + code }

// GetByID returns the cached currency or loads and caches it.
func (r *CachedCurrencyRepository) GetByID(ctx context.Context, id string) (*domain.Currency, error) {
	return r.readThrough(ctx, currencyIDKey(id), func() (*domain.Currency, error) {
		return r.CurrencyRepository.GetByID(ctx, id)
	})
}

// GetByCode returns the cached currency or loads and caches it.
func (r *CachedCurrencyRepository) GetByCode(ctx context.Context, code string) (*domain.Currency, error) {
	return r.readThrough(ctx, currencyCodeKey(code), func() (*domain.Currency, error) {
		return r.CurrencyRepository.GetByCode(ctx, code)
	})
}

// Update writes through and evicts both keys of the old and new state.
func (r *CachedCurrencyRepository) Update(ctx context.Context, c *domain.Currency) error {
	old, _ := r.CurrencyRepository.GetByID(ctx, c.ID)

	if err := r.CurrencyRepository.Update(ctx, c); err != nil {
		return err
	}

	r.evict(ctx, c)
	if old != nil && old.Code != c.Code {
		r.evict(ctx, old)
	}
	return nil
}

// Delete removes the currency and evicts its keys.
func (r *CachedCurrencyRepository) Delete(ctx context.Context, id string) error {
	old, _ := r.CurrencyRepository.GetByID(ctx, id)

	if err := r.CurrencyRepository.Delete(ctx, id); err != nil {
		return err
	}

	if old != nil {
		r.evict(ctx, old)
	}
	return nil
}

func (r *CachedCurrencyRepository) readThrough(ctx context.Context, key string, load func() (*domain.Currency, error)) (*domain.Currency, error) {
	raw, err := r.cache.Get(ctx, key)
	if err == nil {
		var c domain.Currency
		if err := json.Unmarshal(raw, &c); err == nil {
			return &c, nil
		}
		r.logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	} else if !errors.Is(err, ErrCacheMiss) {
		r.logger.Warn().Err(err).Str("key", key).Msg("currency cache read failed")
	}

	c, err := load()
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(c); err == nil {
		if err := r.cache.Set(ctx, key, raw, r.ttl); err != nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("currency cache write failed")
		}
	}
	return c, nil
}

func (r *CachedCurrencyRepository) evict(ctx context.Context, c *domain.Currency) {
	for _, key := range []string{currencyIDKey(c.ID), currencyCodeKey(c.Code)} {
		if err := r.cache.Delete(ctx, key); err != nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("currency cache eviction failed")
		}
	}
}
