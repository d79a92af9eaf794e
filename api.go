package kvcache

import (
	"context"

	c "github.com/unkn0wn-root/kvcache/codec"
	st "github.com/unkn0wn-root/kvcache/store"
)

// Codec aliases codec.Codec so Options can be filled without importing the
// codec package explicitly.
type Codec[V any] = c.Codec[V]

// Reserved keys. They live in the same key space as ordinary entries (and are
// namespaced along with them); a ClearPattern whose pattern happens to match
// them will delete them, which is acceptable since both are advisory.
const (
	// DirtyListKey holds the framed list of keys currently marked dirty.
	DirtyListKey = "DIRTY_ITEMS"
	// InstanceSetKey holds the marker written by MarkInstanceSet.
	InstanceSetKey = "IS_SET_PLACEHOLDER"
)

// Cache is the high-level, backend-agnostic cache API. V is the caller's
// value type; serialization is handled by a pluggable Codec[V].
//
// No operation fails for a simply-absent key: absence is reported through the
// bool results, never through the error.
type Cache[V any] interface {
	Enabled() bool
	Close(context.Context) error

	// Single entries
	Exists(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) (v V, ok bool, err error)
	Set(ctx context.Context, key string, value V) error
	Add(ctx context.Context, key string, value V) error
	Clear(ctx context.Context, key string) error

	// Batches (per-key best effort, no cross-key atomicity)
	AddMap(ctx context.Context, items map[string]V) error
	GetMulti(ctx context.Context, keys []string) (map[string]V, error)
	ClearMulti(ctx context.Context, keys []string) error

	// ClearPattern removes every entry whose logical key matches the regular
	// expression and reports how many were removed. Requires key enumeration;
	// returns ErrNotSupported when the backend cannot list keys. Full scan,
	// O(n) in stored key count.
	ClearPattern(ctx context.Context, pattern string) (int, error)

	// Dirty tracking
	SetDirty(ctx context.Context, key string) error
	SetClean(ctx context.Context, key string) error
	IsDirty(ctx context.Context, key string) (bool, error)

	// Instance-set marker (advisory; affects no other operation)
	IsInstanceSet(ctx context.Context) (bool, error)
	MarkInstanceSet(ctx context.Context) error

	// SelfTest round-trips a probe entry and reports whether the backend
	// reproduced it. False means the backend is non-functional or evicted
	// the probe before the re-read.
	SelfTest(ctx context.Context) (bool, error)
}

// Options tune the behavior of the cache. Only Store and Codec are required.
type Options[V any] struct {
	// Required
	Store st.KeyStore
	Codec c.Codec[V]

	Logger   Logger // if nil, NopLogger is used
	Disabled bool   // default false (enabled); disabled caches miss on reads and ignore writes
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
