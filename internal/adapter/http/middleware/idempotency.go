package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cashledger/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks a response served from the store.
	IdempotencyReplayHeader = "X-Idempotency-Replay"
)

// ReplayRecorder counts replayed responses.
type ReplayRecorder interface {
	RecordIdempotentReplay()
}

// storedResponse is what the middleware keeps under an idempotency key.
type storedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body,omitempty"`
}

// IdempotencyMiddleware replays the first successful response for a repeated
// Idempotency-Key.
type IdempotencyMiddleware struct {
	store   usecase.IdempotencyStore
	ttl     time.Duration
	logger  zerolog.Logger
	metrics ReplayRecorder
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware. A zero ttl
// uses usecase.IdempotencyKeyTTL.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration, logger zerolog.Logger, metrics ReplayRecorder) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = usecase.IdempotencyKeyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl, logger: logger, metrics: metrics}
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only apply to mutating requests
		if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodDelete {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		// Scope the key to the endpoint so one key cannot replay another route.
		key = r.Method + " " + r.URL.Path + " " + key

		exists, cached, err := m.store.CheckAndSet(r.Context(), key, nil, m.ttl)
		if err != nil {
			m.logger.Error().Err(err).Msg("idempotency check failed")
			writeJSONError(w, http.StatusInternalServerError, "idempotency check failed")
			return
		}

		if exists {
			m.replay(w, cached)
			return
		}

		// The key is released unless a 2xx response was stored, including when
		// next panics on its way to Recovery.
		stored := false
		defer func() {
			if !stored {
				m.release(r.Context(), key)
			}
		}()

		recorder := newBodyRecorder(w)
		next.ServeHTTP(recorder, r)

		if recorder.statusCode < 200 || recorder.statusCode >= 300 {
			return
		}
		stored = m.save(r.Context(), key, recorder)
	})
}

// detached outlives the request context, which may already be cancelled
// once the client is gone.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
}

func (m *IdempotencyMiddleware) release(ctx context.Context, key string) {
	ctx, cancel := detached(ctx)
	defer cancel()

	if err := m.store.Release(ctx, key); err != nil {
		m.logger.Warn().Err(err).Msg("failed to release idempotency key")
	}
}

func (m *IdempotencyMiddleware) save(ctx context.Context, key string, recorder *bodyRecorder) bool {
	ctx, cancel := detached(ctx)
	defer cancel()

	stored := storedResponse{Status: recorder.statusCode}
	if body := recorder.body.Bytes(); len(body) > 0 {
		stored.Body = body
	}
	payload, err := json.Marshal(stored)
	if err != nil {
		m.logger.Warn().Err(err).Msg("failed to encode idempotent response")
		return false
	}
	if err := m.store.Update(ctx, key, payload, m.ttl); err != nil {
		m.logger.Warn().Err(err).Msg("failed to store idempotent response")
		return false
	}
	return true
}

func (m *IdempotencyMiddleware) replay(w http.ResponseWriter, cached []byte) {
	var stored storedResponse
	if cached == nil || json.Unmarshal(cached, &stored) != nil || stored.Status == 0 {
		// The first request is still running, or its marker expired mid-read.
		writeJSONError(w, http.StatusConflict, "request with this idempotency key is in progress")
		return
	}

	if m.metrics != nil {
		m.metrics.RecordIdempotentReplay()
	}

	w.Header().Set(IdempotencyReplayHeader, "true")
	if len(stored.Body) == 0 {
		w.WriteHeader(stored.Status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(stored.Status)
	w.Write(stored.Body)
}
