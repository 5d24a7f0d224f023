package repository

import (
	"context"
	"sync"

	"github.com/kaikyoudou/storefront/internal/domain"
)

// MemoryStore keeps the cart for the lifetime of the process. It is
// the fallback when a durable store degrades and the default for tests.
type MemoryStore struct {
	mu    sync.Mutex
	lines []domain.CartLine
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) ([]domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, lines []domain.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = make([]domain.CartLine, len(lines))
	copy(s.lines, lines)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	return nil
}
