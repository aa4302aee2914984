// Package memory is an in-process implementation of the usecase repositories.
// Transactions are serialized and write to a private copy of the data that
// replaces the committed state on Commit. Readers outside a transaction only
// ever see committed state.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/usecase"
)

var (
	// ErrTxClosed is returned when a finished transaction is used again.
	ErrTxClosed = errors.New("memory: transaction already closed")
	// ErrForeignTx is returned when a transaction from another adapter is passed in.
	ErrForeignTx = errors.New("memory: transaction does not belong to this store")
)

type state struct {
	balances   map[string]domain.Balance
	currencies map[string]domain.Currency
	cbs        map[string]domain.CurrencyBalance
	txs        map[string]domain.Transaction
	outbox     map[string]domain.OutboxEvent
}

func newState() *state {
	return &state{
		balances:   make(map[string]domain.Balance),
		currencies: make(map[string]domain.Currency),
		cbs:        make(map[string]domain.CurrencyBalance),
		txs:        make(map[string]domain.Transaction),
		outbox:     make(map[string]domain.OutboxEvent),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.balances {
		c.balances[k] = v
	}
	for k, v := range s.currencies {
		c.currencies[k] = v
	}
	for k, v := range s.cbs {
		c.cbs[k] = v
	}
	for k, v := range s.txs {
		c.txs[k] = v
	}
	for k, v := range s.outbox {
		c.outbox[k] = v
	}
	return c
}

// Store holds the data of every repository.
type Store struct {
	// writer admits one transaction or standalone write at a time.
	writer chan struct{}
	mu     sync.RWMutex
	data   *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		writer: make(chan struct{}, 1),
		data:   newState(),
	}
}

func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.writer <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) release() {
	<-s.writer
}

// write runs fn as a standalone write, serialized with transactions.
func (s *Store) write(ctx context.Context, fn func(d *state) error) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// writeTx runs fn against the working state of the open transaction tx.
func (s *Store) writeTx(tx usecase.Transaction, fn func(d *state) error) error {
	return s.withTx(tx, fn)
}

// readTx reads the working state of tx, including its uncommitted writes.
func (s *Store) readTx(tx usecase.Transaction, fn func(d *state) error) error {
	return s.withTx(tx, fn)
}

// read sees committed state only.
func (s *Store) read(fn func(d *state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

func (s *Store) withTx(tx usecase.Transaction, fn func(d *state) error) error {
	t, ok := tx.(*Tx)
	if !ok || t.store != s {
		return ErrForeignTx
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTxClosed
	}
	return fn(t.working)
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin waits for exclusive write access and copies the committed state into
// the working state of the new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := m.store.acquire(ctx); err != nil {
		return nil, err
	}

	m.store.mu.RLock()
	working := m.store.data.clone()
	m.store.mu.RUnlock()

	return &Tx{store: m.store, working: working}, nil
}

// Tx is an open memory transaction. Its writes stay private until Commit.
type Tx struct {
	store   *Store
	working *state

	mu   sync.Mutex
	done bool
}

// Commit publishes the working state. A cancelled context rolls back instead.
func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return ErrTxClosed
	}
	t.done = true
	defer t.store.release()

	if err := ctx.Err(); err != nil {
		t.working = nil
		return err
	}

	t.store.mu.Lock()
	t.store.data = t.working
	t.store.mu.Unlock()
	t.working = nil
	return nil
}

// Rollback discards the working state. Rolling back a finished transaction is a no-op.
func (t *Tx) Rollback(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return nil
	}
	t.done = true
	t.working = nil
	t.store.release()
	return nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// sortBy orders items by less, breaking ties by id so pages are stable.
func sortBy[T any](items []T, desc bool, less func(a, b T) int, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		c := less(items[i], items[j])
		if c == 0 {
			if desc {
				return id(items[i]) > id(items[j])
			}
			return id(items[i]) < id(items[j])
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}
