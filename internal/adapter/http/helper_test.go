package http

import (
	"context"
	"sync"
	"time"
)

type routerIdempotencyStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newRouterIdempotencyStore() *routerIdempotencyStore {
	return &routerIdempotencyStore{data: make(map[string][]byte)}
}

func (s *routerIdempotencyStore) CheckAndSet(_ context.Context, key string, response []byte, _ time.Duration) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.data[key]; ok {
		return true, v, nil
	}
	s.data[key] = response
	return false, nil, nil
}

func (s *routerIdempotencyStore) Update(_ context.Context, key string, response []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = response
	return nil
}

func (s *routerIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
