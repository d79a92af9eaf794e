// Package ristretto adapts dgraph-io/ristretto to store.KeyStore. Ristretto
// evicts under memory pressure and admits writes probabilistically, so no
// entry is guaranteed to survive -- exactly the residency contract kvcache
// assumes. It cannot enumerate keys: pattern clears on this store report
// NotSupported.
package ristretto

import (
	"context"
	"errors"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/kvcache/store"
)

type Store struct {
	c *rc.Cache
}

var _ store.KeyStore = (*Store)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

func New(cfg Config) (*Store, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Store{c: c}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// self-heal: drop unexpected entry shape
		s.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	// cost = payload size; ristretto may still reject the write under
	// pressure, which a later Get reports as a plain miss
	s.c.Set(key, value, int64(len(value)))
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.c.Del(key)
	return nil
}

func (s *Store) Close(_ context.Context) error {
	s.c.Wait()
	s.c.Close()
	return nil
}

// Metrics exposes ristretto's counters (not part of store.KeyStore).
func (s *Store) Metrics() *rc.Metrics { return s.c.Metrics }
