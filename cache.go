package kvcache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sync"

	"github.com/unkn0wn-root/kvcache/internal/wire"
	st "github.com/unkn0wn-root/kvcache/store"
)

// Probe entry written and verified by SelfTest.
const probeKey = "test"

var probeValue = []byte("test")

type cache[V any] struct {
	store   st.KeyStore
	codec   Codec[V]
	log     Logger
	enabled bool

	// Serializes the dirty-list read-modify-write within this process.
	// Concurrent processes sharing one backend can still race; backends
	// implementing store.DirtyTracker avoid the list entirely.
	dirtyMu sync.Mutex
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("kvcache: store is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("kvcache: codec is required")
	}

	c := &cache[V]{
		store:   opts.Store,
		codec:   opts.Codec,
		log:     opts.Logger,
		enabled: !opts.Disabled,
	}
	if c.log == nil {
		c.log = NopLogger{}
	}
	return c, nil
}

func (c *cache[V]) Enabled() bool { return c.enabled }

func (c *cache[V]) Close(ctx context.Context) error {
	return c.store.Close(ctx)
}

func (c *cache[V]) Exists(ctx context.Context, key string) (bool, error) {
	if !c.enabled {
		return false, nil
	}
	if ex, ok := c.store.(st.Exister); ok {
		present, err := ex.Exists(ctx, key)
		if err == nil {
			return present, nil
		}
		if !errors.Is(err, st.ErrNotSupported) {
			return false, opErr("exists", key, err)
		}
	}
	_, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return false, opErr("exists", key, err)
	}
	return ok, nil
}

func (c *cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if !c.enabled {
		return zero, false, nil
	}
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return zero, false, opErr("get", key, err)
	}
	if !ok {
		return zero, false, nil
	}
	v, err := c.codec.Decode(raw)
	if err != nil {
		// Stored payload is not a V. A missing item is the cache's natural
		// failure mode, so report a miss instead of the decode error.
		c.log.Debug("get: payload does not decode, treating as miss", Fields{"key": key, "err": err})
		return zero, false, nil
	}
	return v, true, nil
}

// Set stores a caller-sanctioned authoritative value: it replaces the entry
// and clears the key's dirty flag. Use Add for first-time population that
// must not touch the flag.
func (c *cache[V]) Set(ctx context.Context, key string, value V) error {
	if !c.enabled {
		return nil
	}
	if err := c.put(ctx, "set", key, value); err != nil {
		return err
	}
	return c.SetClean(ctx, key)
}

func (c *cache[V]) Add(ctx context.Context, key string, value V) error {
	if !c.enabled {
		return nil
	}
	return c.put(ctx, "add", key, value)
}

func (c *cache[V]) put(ctx context.Context, op, key string, value V) error {
	payload, err := c.codec.Encode(value)
	if err != nil {
		return opErr(op, key, err)
	}
	return opErr(op, key, c.store.Put(ctx, key, payload))
}

// AddMap stores each pair best-effort: a failing key does not stop the rest
// and nothing is rolled back. All per-key failures are joined.
func (c *cache[V]) AddMap(ctx context.Context, items map[string]V) error {
	if !c.enabled || len(items) == 0 {
		return nil
	}
	var errs []error
	for k, v := range items {
		if err := c.Add(ctx, k, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetMulti deduplicates keys, fetches each unique key once and omits absent
// keys from the result: callers must not assume every requested key appears.
// Stores with a batch capability serve all keys in one round trip.
func (c *cache[V]) GetMulti(ctx context.Context, keys []string) (map[string]V, error) {
	out := make(map[string]V, len(keys))
	if !c.enabled || len(keys) == 0 {
		return out, nil
	}

	unique := dedupe(keys)

	if bg, ok := c.store.(st.BatchGetter); ok {
		raws, err := bg.GetMulti(ctx, unique)
		switch {
		case err == nil:
			for k, raw := range raws {
				v, derr := c.codec.Decode(raw)
				if derr != nil {
					c.log.Debug("getMulti: payload does not decode, omitting", Fields{"key": k, "err": derr})
					continue
				}
				out[k] = v
			}
			return out, nil
		case !errors.Is(err, st.ErrNotSupported):
			return nil, opErr("getMulti", "", err)
		}
	}

	for _, k := range unique {
		v, ok, err := c.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		if ok {
			out[k] = v
		}
	}
	return out, nil
}

func (c *cache[V]) Clear(ctx context.Context, key string) error {
	if !c.enabled {
		return nil
	}
	return opErr("clear", key, c.store.Remove(ctx, key))
}

// ClearMulti removes each key; no dedup needed since removal is idempotent.
func (c *cache[V]) ClearMulti(ctx context.Context, keys []string) error {
	if !c.enabled {
		return nil
	}
	var errs []error
	for _, k := range keys {
		if err := c.Clear(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *cache[V]) ClearPattern(ctx context.Context, pattern string) (int, error) {
	if !c.enabled {
		return 0, nil
	}

	if pm, ok := c.store.(st.PatternRemover); ok {
		n, err := pm.RemoveMatching(ctx, pattern)
		if err == nil || !errors.Is(err, st.ErrNotSupported) {
			return n, opErr("clearPattern", pattern, err)
		}
	}

	lister, ok := c.store.(st.Lister)
	if !ok {
		return 0, opErr("clearPattern", pattern, st.ErrNotSupported)
	}
	if _, err := regexp.Compile(pattern); err != nil {
		return 0, opErr("clearPattern", pattern, err)
	}

	keys, err := lister.Keys(ctx)
	if err != nil {
		return 0, opErr("clearPattern", pattern, err)
	}
	matched, err := st.MatchKeys(pattern, keys)
	if err != nil {
		return 0, opErr("clearPattern", pattern, err)
	}

	removed := 0
	for _, k := range matched {
		if err := c.store.Remove(ctx, k); err != nil {
			return removed, opErr("clearPattern", k, err)
		}
		removed++
	}
	c.log.Debug("clearPattern removed entries", Fields{"pattern": pattern, "count": removed})
	return removed, nil
}

// SetDirty marks key dirty. The list is kept as a set: marking an
// already-dirty key again is a no-op rather than unbounded growth.
func (c *cache[V]) SetDirty(ctx context.Context, key string) error {
	if !c.enabled {
		return nil
	}
	if done, err := c.trackDirty(ctx, key, true); done {
		return opErr("setDirty", key, err)
	}

	c.dirtyMu.Lock()
	defer c.dirtyMu.Unlock()

	list, err := c.readDirtyList(ctx)
	if err != nil {
		return opErr("setDirty", key, err)
	}
	if slices.Contains(list, key) {
		return nil
	}
	list = append(list, key)
	return opErr("setDirty", key, c.writeDirtyList(ctx, list))
}

// SetClean removes key from the dirty list; a no-op if the key is not dirty
// or the list was never created.
func (c *cache[V]) SetClean(ctx context.Context, key string) error {
	if !c.enabled {
		return nil
	}
	if done, err := c.trackDirty(ctx, key, false); done {
		return opErr("setClean", key, err)
	}

	c.dirtyMu.Lock()
	defer c.dirtyMu.Unlock()

	list, err := c.readDirtyList(ctx)
	if err != nil {
		return opErr("setClean", key, err)
	}
	if !slices.Contains(list, key) {
		return nil
	}
	list = slices.DeleteFunc(list, func(k string) bool { return k == key })
	return opErr("setClean", key, c.writeDirtyList(ctx, list))
}

func (c *cache[V]) IsDirty(ctx context.Context, key string) (bool, error) {
	if !c.enabled {
		return false, nil
	}
	if dt, ok := c.store.(st.DirtyTracker); ok {
		dirty, err := dt.Dirty(ctx, key)
		if err == nil {
			return dirty, nil
		}
		if !errors.Is(err, st.ErrNotSupported) {
			return false, opErr("isDirty", key, err)
		}
	}
	list, err := c.readDirtyList(ctx)
	if err != nil {
		return false, opErr("isDirty", key, err)
	}
	return slices.Contains(list, key), nil
}

// trackDirty delegates to the store's per-entry dirty storage when it has
// one. done reports whether the store handled the flag.
func (c *cache[V]) trackDirty(ctx context.Context, key string, dirty bool) (done bool, err error) {
	dt, ok := c.store.(st.DirtyTracker)
	if !ok {
		return false, nil
	}
	err = dt.MarkDirty(ctx, key, dirty)
	if errors.Is(err, st.ErrNotSupported) {
		return false, nil
	}
	return true, err
}

func (c *cache[V]) readDirtyList(ctx context.Context) ([]string, error) {
	raw, ok, err := c.store.Get(ctx, DirtyListKey)
	if err != nil || !ok {
		return nil, err
	}
	list, err := wire.DecodeList(raw)
	if err != nil {
		// Foreign or damaged bytes under the reserved key. Start over; the
		// next write replaces the entry.
		c.log.Warn("dirty list entry is corrupt, resetting", Fields{"key": DirtyListKey, "err": err})
		return nil, nil
	}
	return list, nil
}

func (c *cache[V]) writeDirtyList(ctx context.Context, list []string) error {
	b, err := wire.EncodeList(list)
	if err != nil {
		return err
	}
	return c.store.Put(ctx, DirtyListKey, b)
}

func (c *cache[V]) IsInstanceSet(ctx context.Context) (bool, error) {
	if !c.enabled {
		return false, nil
	}
	_, ok, err := c.store.Get(ctx, InstanceSetKey)
	if err != nil {
		return false, opErr("isInstanceSet", InstanceSetKey, err)
	}
	return ok, nil
}

func (c *cache[V]) MarkInstanceSet(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	return opErr("markInstanceSet", InstanceSetKey, c.store.Put(ctx, InstanceSetKey, wire.EncodeMarker()))
}

// SelfTest writes the probe value iff the probe key reads absent, then reads
// it back and compares. A false result is information, not a bug: the backend
// either failed the round trip or evicted the probe before the re-read.
func (c *cache[V]) SelfTest(ctx context.Context) (bool, error) {
	if !c.enabled {
		return true, nil
	}
	_, ok, err := c.store.Get(ctx, probeKey)
	if err != nil {
		return false, opErr("selfTest", probeKey, err)
	}
	if !ok {
		if err := c.store.Put(ctx, probeKey, probeValue); err != nil {
			return false, opErr("selfTest", probeKey, err)
		}
	}
	raw, ok, err := c.store.Get(ctx, probeKey)
	if err != nil {
		return false, opErr("selfTest", probeKey, err)
	}
	return ok && bytes.Equal(raw, probeValue), nil
}

// dedupe returns keys with duplicates dropped, first occurrence order kept.
func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
