// Package namespace prefixes physical keys so multiple logical cache
// instances can share one physical store without collisions. Every key sent
// to the wrapped store carries the configured prefix; every key coming back
// out has it stripped.
//
// Foreign keys are a declared limitation, not an error: a physical key that
// does not carry the prefix (another tenant's, or one that merely starts with
// the same characters) cannot be told apart by inspection. Strip exposes this
// with an explicit ok result instead of hiding it.
package namespace

import (
	"context"
	"regexp"
	"strings"

	"github.com/unkn0wn-root/kvcache/store"
)

// Prefix is a per-cache-instance string applied to every physical key.
type Prefix string

// Apply returns the physical key for a logical key.
func (p Prefix) Apply(key string) string { return string(p) + key }

// Strip returns the logical key for a physical key. ok reports whether the
// key actually carried the prefix; when it did not, the key comes back
// unchanged.
func (p Prefix) Strip(key string) (string, bool) {
	if rest, found := strings.CutPrefix(key, string(p)); found {
		return rest, true
	}
	return key, false
}

// RewritePattern rewrites a caller's logical-key pattern to match physical
// keys: the quoted prefix is inserted right after a leading "^" anchor, or
// prepended as "^prefix" otherwise. The rewritten pattern is always anchored
// at the key start -- an unanchored rewrite could match inside another
// tenant's physical key and make a pattern clear cross the namespace
// boundary.
func (p Prefix) RewritePattern(expr string) string {
	q := regexp.QuoteMeta(string(p))
	if rest, found := strings.CutPrefix(expr, "^"); found {
		return "^" + q + rest
	}
	return "^" + q + expr
}

// Store wraps a store.KeyStore, applying prefix to every key on the way in
// and stripping it on the way out. It forwards the inner store's optional
// capabilities with the same key mapping; capabilities the inner store lacks
// surface as store.ErrNotSupported.
type Store struct {
	inner  store.KeyStore
	prefix Prefix
}

var _ store.KeyStore = (*Store)(nil)

func Wrap(inner store.KeyStore, prefix Prefix) *Store {
	return &Store{inner: inner, prefix: prefix}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix.Apply(key))
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	return s.inner.Put(ctx, s.prefix.Apply(key), value)
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, s.prefix.Apply(key))
}

func (s *Store) Close(ctx context.Context) error { return s.inner.Close(ctx) }

// Exists uses the inner store's native probe when it has one, else a Get.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if ex, ok := s.inner.(store.Exister); ok {
		return ex.Exists(ctx, s.prefix.Apply(key))
	}
	_, ok, err := s.inner.Get(ctx, s.prefix.Apply(key))
	return ok, err
}

// GetMulti forwards to the inner batch capability when present, mapping keys
// both ways, and degrades to per-key Gets otherwise.
func (s *Store) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	if bg, ok := s.inner.(store.BatchGetter); ok {
		physical := make([]string, len(keys))
		for i, k := range keys {
			physical[i] = s.prefix.Apply(k)
		}
		raws, err := bg.GetMulti(ctx, physical)
		if err != nil {
			return nil, err
		}
		out := make(map[string][]byte, len(raws))
		for pk, v := range raws {
			lk, _ := s.prefix.Strip(pk)
			out[lk] = v
		}
		return out, nil
	}

	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		v, ok, err := s.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		if ok {
			out[k] = v
		}
	}
	return out, nil
}

// Keys enumerates the physical store and strips the prefix from each key.
// Keys of other tenants pass through unchanged; callers filtering the result
// must not assume every returned key belongs to this namespace.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	lister, ok := s.inner.(store.Lister)
	if !ok {
		return nil, store.ErrNotSupported
	}
	physical, err := lister.Keys(ctx)
	if err != nil {
		return nil, err
	}
	logical := make([]string, len(physical))
	for i, pk := range physical {
		logical[i], _ = s.prefix.Strip(pk)
	}
	return logical, nil
}

// RemoveMatching rewrites pattern with the physical prefix, then removes the
// matching physical keys. The rewrite keeps foreign tenants' keys out of
// reach even when the caller's pattern would match everything.
func (s *Store) RemoveMatching(ctx context.Context, pattern string) (int, error) {
	lister, ok := s.inner.(store.Lister)
	if !ok {
		return 0, store.ErrNotSupported
	}
	physical, err := lister.Keys(ctx)
	if err != nil {
		return 0, err
	}
	matched, err := store.MatchKeys(s.prefix.RewritePattern(pattern), physical)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, pk := range matched {
		if err := s.inner.Remove(ctx, pk); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// MarkDirty delegates to the inner per-entry dirty storage when present.
func (s *Store) MarkDirty(ctx context.Context, key string, dirty bool) error {
	dt, ok := s.inner.(store.DirtyTracker)
	if !ok {
		return store.ErrNotSupported
	}
	return dt.MarkDirty(ctx, s.prefix.Apply(key), dirty)
}

func (s *Store) Dirty(ctx context.Context, key string) (bool, error) {
	dt, ok := s.inner.(store.DirtyTracker)
	if !ok {
		return false, store.ErrNotSupported
	}
	return dt.Dirty(ctx, s.prefix.Apply(key))
}
