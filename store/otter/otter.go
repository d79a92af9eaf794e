// Package otter adapts maypok86/otter (W-TinyLFU) to store.KeyStore, the
// usual choice for process-wide application state shared by all requests.
// Capacity and expiry are backend-owned; keys cannot be enumerated.
package otter

import (
	"context"
	"time"

	"github.com/maypok86/otter/v2"

	"github.com/unkn0wn-root/kvcache/store"
)

type Store struct {
	c *otter.Cache[string, []byte]
}

var _ store.KeyStore = (*Store)(nil)

type Config struct {
	// MaxEntries bounds the cache size; 0 falls back to 10_000.
	MaxEntries int
	// TTL expires entries after write; 0 means entries only leave by
	// eviction or removal.
	TTL time.Duration
}

func New(cfg Config) (*Store, error) {
	size := cfg.MaxEntries
	if size <= 0 {
		size = 10_000
	}
	opts := &otter.Options[string, []byte]{
		MaximumSize: size,
	}
	if cfg.TTL > 0 {
		opts.ExpiryCalculator = otter.ExpiryWriting[string, []byte](cfg.TTL)
	}
	c, err := otter.New[string, []byte](opts)
	if err != nil {
		return nil, err
	}
	return &Store{c: c}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := s.c.GetIfPresent(key)
	if !ok {
		return nil, false, nil
	}
	return b, true, nil
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	s.c.Set(key, value)
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.c.Invalidate(key)
	return nil
}

// Flush drops every entry.
func (s *Store) Flush() {
	s.c.InvalidateAll()
}

func (s *Store) Close(_ context.Context) error { return nil }
