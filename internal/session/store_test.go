package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/dreamcatcher/internal/kv"
	"github.com/dmitrijs2005/dreamcatcher/internal/logging"
	"github.com/dmitrijs2005/dreamcatcher/internal/vfs"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVFS(t *testing.T) (*vfs.Store, *kv.MemorySubstrate) {
	t.Helper()
	sub := kv.NewMemorySubstrate()
	return vfs.New(sub, "", logging.Discard()), sub
}

func TestStoreMarkerStore(t *testing.T) {
	ctx := context.Background()
	s, sub := newVFS(t)
	ms := NewStoreMarkerStore(s)

	_, ok, err := ms.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, ms.Save(ctx, "marker-1", time.Hour))

	raw, err := sub.Get(ctx, MarkerKey)
	require.NoError(t, err)
	assert.Equal(t, `"marker-1"`, string(raw))

	got, ok, err := ms.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "marker-1", got)

	require.NoError(t, ms.Clear(ctx))
	_, ok, err = ms.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func newRedisStore(t *testing.T) (*RedisMarkerStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisMarkerStore(rdb, ""), mr
}

func TestRedisMarkerStore_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	ms, mr := newRedisStore(t)

	_, ok, err := ms.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, ms.Save(ctx, "marker-1", time.Hour))
	assert.True(t, mr.Exists(MarkerKey))
	assert.Equal(t, time.Hour, mr.TTL(MarkerKey))

	got, ok, err := ms.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "marker-1", got)

	require.NoError(t, ms.Clear(ctx))
	assert.False(t, mr.Exists(MarkerKey))
}

func TestRedisMarkerStore_Expires(t *testing.T) {
	ctx := context.Background()
	ms, mr := newRedisStore(t)

	require.NoError(t, ms.Save(ctx, "marker-1", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, ok, err := ms.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisMarkerStore_ServerDown(t *testing.T) {
	ctx := context.Background()
	ms, mr := newRedisStore(t)
	mr.Close()

	_, _, err := ms.Load(ctx)
	require.Error(t, err)
}

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewRedis(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	require.NoError(t, rdb.Close())

	_, err = NewRedis(context.Background(), "::not a url")
	require.Error(t, err)
}

func TestLoadOrCreateSecret_IsStable(t *testing.T) {
	ctx := context.Background()
	s, _ := newVFS(t)

	first, err := LoadOrCreateSecret(ctx, s)
	require.NoError(t, err)
	assert.Len(t, first, 64)

	second, err := LoadOrCreateSecret(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
