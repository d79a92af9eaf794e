// Package store defines the storage abstraction used by kvcache.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte that was previously passed to Put for a key (no
// prepended/appended metadata, no re-encoding, no mutation). If a store
// performs internal transforms (e.g., compression), they MUST be fully
// reversed so that the bytes returned by Get are identical to the bytes
// provided to Put.
//
// Beyond the KeyStore primitives, a store may declare extra capabilities by
// implementing the optional interfaces below. The cache core probes for them
// with type assertions and falls back to the generic path when a capability
// is missing. An optional method may also return ErrNotSupported to force the
// fallback at call time (the namespace wrapper uses this when its inner store
// lacks the capability).
package store

import (
	"context"
	"errors"
	"regexp"
)

// ErrNotSupported is returned by operations that require a capability the
// underlying store does not provide (e.g. key enumeration on a store that
// cannot list its keys). It is never used for a merely-absent key.
var ErrNotSupported = errors.New("store: operation not supported by backend")

// KeyStore is a minimal byte store. Implementations must be safe for
// concurrent use.
//
// Expiry and eviction are entirely the store's business: the contract carries
// no TTL, and callers must not rely on any entry surviving between calls.
type KeyStore interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores value under key, creating or replacing the entry.
	Put(ctx context.Context, key string, value []byte) error

	// Remove deletes a key. Removing an absent key is a no-op, not an error.
	Remove(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// Lister enumerates every key currently held by the store. Inherently a full
// scan; stores that cannot enumerate simply do not implement it.
type Lister interface {
	Keys(ctx context.Context) ([]string, error)
}

// BatchGetter fetches many keys in one backend round trip. Absent keys are
// omitted from the result map.
type BatchGetter interface {
	GetMulti(ctx context.Context, keys []string) (map[string][]byte, error)
}

// Exister is a native existence probe. Stores without one are probed with a
// plain Get by the cache core.
type Exister interface {
	Exists(ctx context.Context, key string) (bool, error)
}

// DirtyTracker stores the dirty flag beside each entry instead of the cache
// core's sentinel list. Marking an absent key dirty must still record the
// flag; Dirty on an absent key reports false.
type DirtyTracker interface {
	MarkDirty(ctx context.Context, key string, dirty bool) error
	Dirty(ctx context.Context, key string) (bool, error)
}

// PatternRemover removes every entry whose key matches pattern and reports
// how many were removed. Implementations may rewrite the pattern before
// matching (the namespace wrapper anchors its physical prefix) but must keep
// it semantically matching the caller's logical keys.
type PatternRemover interface {
	RemoveMatching(ctx context.Context, pattern string) (int, error)
}

// MatchKeys compiles pattern and returns the subset of keys matching it.
// Shared helper for PatternRemover implementations and the core's generic
// enumerate-and-match path.
func MatchKeys(pattern string, keys []string) ([]string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, k := range keys {
		if re.MatchString(k) {
			out = append(out, k)
		}
	}
	return out, nil
}
