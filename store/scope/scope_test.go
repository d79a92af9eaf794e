package scope

import (
	"context"
	"testing"

	"github.com/unkn0wn-root/kvcache"
	"github.com/unkn0wn-root/kvcache/codec"
)

func TestScopedCachesShareEntries(t *testing.T) {
	ctx := context.Background()
	sc := New()

	c1, err := kvcache.New[string](kvcache.Options[string]{
		Store: sc.Store(),
		Codec: codec.String{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c2, err := kvcache.New[string](kvcache.Options[string]{
		Store: sc.Store(),
		Codec: codec.String{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := c1.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c2.Get(ctx, "k")
	if err != nil || !ok || got != "v" {
		t.Fatalf("Get through second cache = (%q, %v, %v)", got, ok, err)
	}
}

func TestFlushEndsTheScope(t *testing.T) {
	ctx := context.Background()
	sc := New()

	if err := sc.Store().Put(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if sc.Len() != 1 {
		t.Fatalf("Len = %d, want 1", sc.Len())
	}

	sc.Flush()
	if sc.Len() != 0 {
		t.Fatalf("Len = %d after Flush", sc.Len())
	}
	if _, ok, _ := sc.Store().Get(ctx, "k"); ok {
		t.Fatalf("entry survived Flush")
	}
}
