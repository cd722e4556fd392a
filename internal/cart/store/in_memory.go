package store

import (
	"context"
	"sync"

	carterrors "github.com/abgdnv/shopcart/internal/cart/errors"
)

// inMemory implements Store using an in-memory map.
type inMemory struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewInMemoryStore creates a new process-local Store.
func NewInMemoryStore() Store {
	return &inMemory{
		values: make(map[string][]byte),
	}
}

// Get retrieves a value by its key.
func (s *inMemory) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, carterrors.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores a copy of value under key.
func (s *inMemory) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	s.values[key] = v
	return nil
}

// Close is a no-op.
func (s *inMemory) Close() error {
	return nil
}
