package memory

import (
	"context"
	"sort"
	"sync"

	"zoblogs/internal/storage"
)

// Store is an in-memory implementation of storage.Store.
type Store struct {
	mu   sync.RWMutex
	data map[string]storage.Entry
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{data: make(map[string]storage.Entry)}
}

func (s *Store) Get(_ context.Context, key string) (storage.Entry, error) {
	if !storage.ValidKey(key) {
		return storage.Entry{}, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok {
		return storage.Entry{}, storage.ErrNotFound
	}
	return storage.Entry{Value: append([]byte(nil), e.Value...), Version: e.Version}, nil
}

func (s *Store) Put(_ context.Context, key string, value []byte, expected int64) (int64, error) {
	if !storage.ValidKey(key) {
		return 0, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data[key].Version != expected {
		return 0, storage.ErrVersionConflict
	}
	next := expected + 1
	s.data[key] = storage.Entry{Value: append([]byte(nil), value...), Version: next}
	return next, nil
}

func (s *Store) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Close() error { return nil }

var _ storage.Store = (*Store)(nil)
