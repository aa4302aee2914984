package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeIdempotencyStore struct {
	checkAndSetFn func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	updateFn      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	releaseFn     func(ctx context.Context, key string) error
}

func (f *fakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	return f.checkAndSetFn(ctx, key, response, ttl)
}

func (f *fakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if f.updateFn == nil {
		return nil
	}
	return f.updateFn(ctx, key, response, ttl)
}

func (f *fakeIdempotencyStore) Release(ctx context.Context, key string) error {
	if f.releaseFn == nil {
		return nil
	}
	return f.releaseFn(ctx, key)
}

// memoryIdempotencyStore mimics the Redis store's claim semantics.
type memoryIdempotencyStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{data: make(map[string][]byte)}
}

func (s *memoryIdempotencyStore) CheckAndSet(_ context.Context, key string, response []byte, _ time.Duration) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.data[key]; ok {
		return true, v, nil
	}
	s.data[key] = response
	return false, nil, nil
}

func (s *memoryIdempotencyStore) Update(_ context.Context, key string, response []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = response
	return nil
}

func (s *memoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

type replayCounter struct{ n int }

func (c *replayCounter) RecordIdempotentReplay() { c.n++ }

func TestIdempotencyMiddleware_StoreErrorFailsRequest(t *testing.T) {
	var called bool
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return false, nil, context.DeadlineExceeded
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-err")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, req)

	if called {
		t.Fatalf("handler should not be called when store errors")
	}

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_ReleasesFailedResponses(t *testing.T) {
	var updated, released bool
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return false, nil, nil
		},
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			updated = true
			return nil
		},
		releaseFn: func(ctx context.Context, key string) error {
			released = true
			return nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/expense", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-fail")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})).ServeHTTP(rr, req)

	if updated {
		t.Fatalf("failed responses must not be cached")
	}
	if !released {
		t.Fatalf("expected the key to be released after a failure")
	}
}

func TestIdempotencyMiddleware_ReleasesKeyWhenHandlerPanics(t *testing.T) {
	store := newMemoryIdempotencyStore()
	mw := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop(), nil)

	calls := 0
	h := Recovery(zerolog.Nop())(mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			panic("boom")
		}
		w.WriteHeader(http.StatusCreated)
	})))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/income", bytes.NewBufferString(`{}`))
		req.Header.Set(IdempotencyKeyHeader, "key-panic")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	if rr := send(); rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500 from recovery, got %d", rr.Code)
	}
	if rr := send(); rr.Code != http.StatusCreated {
		t.Fatalf("expected the retry to run the handler, got %d", rr.Code)
	}
	if calls != 2 {
		t.Fatalf("expected 2 handler calls, got %d", calls)
	}
}

func TestIdempotencyMiddleware_ReleasesKeyWhenStoreUpdateFails(t *testing.T) {
	var released bool
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return false, nil, nil
		},
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			return context.DeadlineExceeded
		},
		releaseFn: func(ctx context.Context, key string) error {
			released = true
			return nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/balances", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-update")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
	if !released {
		t.Fatalf("expected the key to be released when the response could not be stored")
	}
}

func TestIdempotencyMiddleware_ReplaysSuccessfulResponse(t *testing.T) {
	store := newMemoryIdempotencyStore()
	replays := &replayCounter{}
	mw := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop(), replays)

	calls := 0
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"t-1"}`))
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/income", bytes.NewBufferString(`{}`))
		req.Header.Set(IdempotencyKeyHeader, "key-1")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	first := send()
	second := send()

	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed status 201, got %d", second.Code)
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("expected replayed body %q, got %q", first.Body.String(), second.Body.String())
	}
	if second.Header().Get(IdempotencyReplayHeader) != "true" {
		t.Fatalf("expected replay header")
	}
	if replays.n != 1 {
		t.Fatalf("expected one recorded replay, got %d", replays.n)
	}
}

func TestIdempotencyMiddleware_KeyScopedToEndpoint(t *testing.T) {
	store := newMemoryIdempotencyStore()
	mw := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop(), nil)

	calls := 0
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for _, path := range []string{"/api/v1/transactions/income", "/api/v1/transactions/expense"} {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(`{}`))
		req.Header.Set(IdempotencyKeyHeader, "shared")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	if calls != 2 {
		t.Fatalf("expected both endpoints to run, got %d calls", calls)
	}
}

func TestIdempotencyMiddleware_PendingKeyConflicts(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return true, []byte("processing"), nil
		},
	}
	mw := NewIdempotencyMiddleware(store, 0, zerolog.Nop(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-pending")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run while the key is pending")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "in progress") {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}

func TestIdempotencyMiddleware_SkipsReadsAndMissingKeys(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			t.Fatalf("store must not be consulted")
			return false, nil, nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop(), nil)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	get := httptest.NewRequest(http.MethodGet, "/api/v1/balances", nil)
	get.Header.Set(IdempotencyKeyHeader, "key")
	handler.ServeHTTP(httptest.NewRecorder(), get)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/balances", nil))
}
