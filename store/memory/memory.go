// Package memory provides an in-process map store. It holds everything until
// removed or flushed; there is no eviction.
package memory

import (
	"context"
	"sync"

	"github.com/unkn0wn-root/kvcache/store"
)

type Store struct {
	mu sync.RWMutex
	m  map[string][]byte
}

var (
	_ store.KeyStore = (*Store)(nil)
	_ store.Lister   = (*Store)(nil)
)

func New() *Store {
	return &Store{m: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	// hand out a copy; callers may mutate what they get back
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	// copy so later caller mutations cannot reach into the store
	b := make([]byte, len(value))
	copy(b, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = b
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func (s *Store) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.m))
	for k := range s.m {
		keys = append(keys, k)
	}
	return keys, nil
}

// Flush drops every entry.
func (s *Store) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = make(map[string][]byte)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

func (s *Store) Close(context.Context) error { return nil }
