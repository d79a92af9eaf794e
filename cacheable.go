package kvcache

import "context"

// Cacheable lets a domain value compute its own cache key from a
// caller-supplied prefix, so collections can be bulk-added without the caller
// building a key map by hand. The cache stores a copy of the value and never
// manages its lifecycle beyond cache residence.
type Cacheable interface {
	CacheKey(prefix string) string
}

// AddItems stores every item under the key it derives via CacheKey(prefix),
// using the same best-effort semantics as AddMap. Two items computing the
// same key silently overwrite each other: last write wins.
func AddItems[V Cacheable](ctx context.Context, c Cache[V], prefix string, items []V) error {
	if len(items) == 0 {
		return nil
	}
	m := make(map[string]V, len(items))
	for _, it := range items {
		m[it.CacheKey(prefix)] = it
	}
	return c.AddMap(ctx, m)
}
