package server

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// store is a bounded in-memory registry keyed by uuid
type store[T any] struct {
	kind     string
	limit    int
	notFound error

	mu    sync.RWMutex
	items map[string]*T
}

func newStore[T any](kind string, limit int, notFound error) *store[T] {
	return &store[T]{
		kind:     kind,
		limit:    limit,
		notFound: notFound,
		items:    make(map[string]*T),
	}
}

// Add registers item under a fresh id
func (s *store[T]) Add(item *T) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) >= s.limit {
		return "", fmt.Errorf("%w: %d %s sessions", ErrTooManySessions, len(s.items), s.kind)
	}
	id := uuid.NewString()
	s.items[id] = item
	sessionsActive.WithLabelValues(s.kind).Set(float64(len(s.items)))
	return id, nil
}

// Get returns the item with the given id
func (s *store[T]) Get(id string) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", s.notFound, id)
	}
	return item, nil
}

// Delete removes and returns the item with the given id
func (s *store[T]) Delete(id string) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", s.notFound, id)
	}
	delete(s.items, id)
	sessionsActive.WithLabelValues(s.kind).Set(float64(len(s.items)))
	return item, nil
}

// Len returns the number of live items
func (s *store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
