package memory

import (
	"context"
	"os"
	"sync"
	"time"

	"salesboard/internal/core"
	"salesboard/internal/seed"
	"salesboard/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store keeps transactions in process memory.
type Store struct {
	mu     sync.RWMutex
	items  []core.Transaction
	seeded bool
	source string
}

func New() *Store {
	return &Store{}
}

// NewFromFile seeds the store from a JSON file in the remote seed format.
// A missing or unreadable file yields an empty store.
func NewFromFile(path string) *Store {
	s := New()
	f, err := os.Open(path)
	if err != nil {
		return s
	}
	defer f.Close()
	txs, err := seed.Decode(f)
	if err != nil {
		return s
	}
	_, _ = s.SeedIfEmpty(context.Background(), "file:"+path, txs)
	return s
}

// SeedIfEmpty stores the transactions when the store holds none. An empty
// batch does not mark the store seeded.
func (s *Store) SeedIfEmpty(_ context.Context, source string, txs []core.Transaction) (int, error) {
	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return 0, err
		}
	}
	if len(txs) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seeded || len(s.items) > 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	items := make([]core.Transaction, len(txs))
	for i, t := range txs {
		t.CreatedAt, t.UpdatedAt = now, now
		items[i] = t
	}
	s.items = items
	s.seeded = true
	s.source = source
	return len(items), nil
}

// FindAll returns a copy of every stored transaction.
func (s *Store) FindAll(_ context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.items...), nil
}

func (s *Store) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}

func (s *Store) QueryByMonth(ctx context.Context, month time.Month) ([]core.Transaction, error) {
	return s.QueryByMonthAndText(ctx, month, core.SearchQuery{})
}

func (s *Store) QueryByMonthAndText(_ context.Context, month time.Month, q core.SearchQuery) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Transaction
	for _, t := range s.items {
		m, ok := t.SaleMonth()
		if !ok || m != month {
			continue
		}
		if q.Matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) Ping(_ context.Context) error {
	return nil
}

// Source returns where the seed data came from, or "" before seeding.
func (s *Store) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}
