package redis

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/kvcache"
	"github.com/unkn0wn-root/kvcache/codec"
	"github.com/unkn0wn-root/kvcache/namespace"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cli := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	s, err := New(Config{Client: cli, TTL: ttl, CloseClient: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s, mr
}

func TestNewRequiresClient(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrNilClient)
}

func TestPutGetRemove(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 0)

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "k", []byte("v")))
	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, s.Remove(ctx, "k"))
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetMultiSingleRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 0)

	require.NoError(t, s.Put(ctx, "a", []byte("1")))
	require.NoError(t, s.Put(ctx, "b", []byte("2")))

	out, err := s.GetMulti(ctx, []string{"a", "b", "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": []byte("1"), "b": []byte("2")}, out)
}

func TestKeysAndExists(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 0)

	require.NoError(t, s.Put(ctx, "a", []byte("1")))
	require.NoError(t, s.Put(ctx, "b", []byte("2")))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"a", "b"}, keys)

	ok, err := s.Exists(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTTLIsBackendOwned(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, time.Minute)

	require.NoError(t, s.Put(ctx, "k", []byte("v")))
	mr.FastForward(2 * time.Minute)

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "entry should have expired")
}

// Full contract over a namespaced redis store: the shape used when several
// logical caches share one database.
func TestCacheOverNamespacedRedis(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 0)

	cc, err := kvcache.New[string](kvcache.Options[string]{
		Store: namespace.Wrap(s, "tenant:"),
		Codec: codec.String{},
	})
	require.NoError(t, err)

	require.NoError(t, cc.Set(ctx, "user:1", "ada"))
	require.NoError(t, cc.Set(ctx, "user:2", "grace"))
	require.NoError(t, cc.Set(ctx, "order:1", "o1"))

	got, ok, err := cc.Get(ctx, "user:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ada", got)

	out, err := cc.GetMulti(ctx, []string{"user:1", "user:1", "order:1", "missing"})
	require.NoError(t, err)
	assert.Len(t, out, 2)

	require.NoError(t, cc.SetDirty(ctx, "user:1"))
	dirty, err := cc.IsDirty(ctx, "user:1")
	require.NoError(t, err)
	assert.True(t, dirty)

	n, err := cc.ClearPattern(ctx, "^user:.*")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ok, err = cc.Exists(ctx, "order:1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cc.SelfTest(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}
