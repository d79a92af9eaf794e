package sqlite

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	"github.com/unkn0wn-root/kvcache"
	"github.com/unkn0wn-root/kvcache/codec"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestPutGetRemove(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, ok, err := s.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("Get on empty store: ok=%v err=%v", ok, err)
	}
	if err := s.Put(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	// replace
	if err := s.Put(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("Put replace: %v", err)
	}
	got, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || string(got) != "v2" {
		t.Fatalf("Get = (%q, %v, %v)", got, ok, err)
	}
	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("key survived Remove")
	}
	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove absent: %v", err)
	}
}

func TestGetMulti(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, k := range []string{"a", "b", "c"} {
		if err := s.Put(ctx, k, []byte(k)); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	out, err := s.GetMulti(ctx, []string{"a", "c", "missing"})
	if err != nil {
		t.Fatalf("GetMulti: %v", err)
	}
	if len(out) != 2 || string(out["a"]) != "a" || string(out["c"]) != "c" {
		t.Fatalf("GetMulti = %v", out)
	}
	if _, ok := out["missing"]; ok {
		t.Fatalf("absent key in result")
	}
}

func TestKeys(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, k := range []string{"b", "a"} {
		if err := s.Put(ctx, k, []byte("v")); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("Keys = %v", keys)
	}
}

func TestDirtyColumn(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if dirty, err := s.Dirty(ctx, "k"); err != nil || dirty {
		t.Fatalf("fresh entry dirty=%v err=%v", dirty, err)
	}

	if err := s.MarkDirty(ctx, "k", true); err != nil {
		t.Fatalf("MarkDirty: %v", err)
	}
	if dirty, _ := s.Dirty(ctx, "k"); !dirty {
		t.Fatalf("entry not dirty after MarkDirty")
	}

	// replacing the payload must not clear the flag
	if err := s.Put(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if dirty, _ := s.Dirty(ctx, "k"); !dirty {
		t.Fatalf("Put cleared the dirty flag")
	}

	if err := s.MarkDirty(ctx, "k", false); err != nil {
		t.Fatalf("MarkDirty clean: %v", err)
	}
	if dirty, _ := s.Dirty(ctx, "k"); dirty {
		t.Fatalf("entry still dirty after clearing")
	}
}

func TestDirtyOnAbsentKey(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// clearing an absent key is a no-op
	if err := s.MarkDirty(ctx, "ghost", false); err != nil {
		t.Fatalf("MarkDirty clean on absent key: %v", err)
	}
	if dirty, err := s.Dirty(ctx, "ghost"); err != nil || dirty {
		t.Fatalf("absent key dirty=%v err=%v", dirty, err)
	}

	// marking an absent key records the flag without inventing a value
	if err := s.MarkDirty(ctx, "ghost", true); err != nil {
		t.Fatalf("MarkDirty on absent key: %v", err)
	}
	if dirty, _ := s.Dirty(ctx, "ghost"); !dirty {
		t.Fatalf("absent key not dirty after marking")
	}
	if _, ok, _ := s.Get(ctx, "ghost"); ok {
		t.Fatalf("dirty-only key visible to Get")
	}
	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("dirty-only key visible to Keys: %v", keys)
	}
}

// The cache core must route dirty tracking through the dirty column instead
// of its sentinel list when the store tracks the flag per entry.
func TestCacheUsesDirtyColumn(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	cc, err := kvcache.New[string](kvcache.Options[string]{
		Store: s,
		Codec: codec.String{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := cc.Add(ctx, "k", "v"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := cc.SetDirty(ctx, "k"); err != nil {
		t.Fatalf("SetDirty: %v", err)
	}

	// flag lives in the row, not under the sentinel key
	if _, ok, _ := s.Get(ctx, kvcache.DirtyListKey); ok {
		t.Fatalf("sentinel list created although the store tracks dirty per entry")
	}
	if dirty, _ := cc.IsDirty(ctx, "k"); !dirty {
		t.Fatalf("IsDirty = false after SetDirty")
	}

	// authoritative Set clears the flag
	if err := cc.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if dirty, _ := cc.IsDirty(ctx, "k"); dirty {
		t.Fatalf("IsDirty = true after Set")
	}
}
