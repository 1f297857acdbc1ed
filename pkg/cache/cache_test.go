package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_TTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	mc := NewMemoryCache(WithMemoryClock(clock.Now))
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), time.Minute))
	b, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), b)

	clock.Advance(2 * time.Minute)
	_, err = mc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	mc := NewMemoryCache(WithMemoryMaxSize(2), WithMemoryClock(clock.Now))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", []byte("1"), time.Hour)
	clock.Advance(time.Second)
	_ = mc.Set(ctx, "b", []byte("2"), time.Hour)
	clock.Advance(time.Second)
	_, _ = mc.Get(ctx, "a")
	clock.Advance(time.Second)
	_ = mc.Set(ctx, "c", []byte("3"), time.Hour)

	assert.Equal(t, 2, mc.Len())
	_, err := mc.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = mc.Get(ctx, "a")
	assert.NoError(t, err)
}

func TestMemoryCache_DeleteByPattern(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "screen:1", []byte("x"), time.Hour)
	_ = mc.Set(ctx, "screen:2", []byte("x"), time.Hour)
	_ = mc.Set(ctx, "series:1", []byte("x"), time.Hour)

	require.NoError(t, mc.DeleteByPattern(ctx, "screen:*"))
	assert.Equal(t, 1, mc.Len())
}

func TestLayeredCache_ReadsThroughToL2(t *testing.T) {
	l2 := NewMemoryCache()
	lc := NewLayeredCache(l2, WithLayeredMemory(10, time.Minute))
	defer lc.Close()
	ctx := context.Background()

	require.NoError(t, l2.Set(ctx, "k", []byte("from-l2"), time.Hour))
	b, err := lc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("from-l2"), b)

	require.NoError(t, lc.Set(ctx, "w", []byte("both"), time.Hour))
	b, err = l2.Get(ctx, "w")
	require.NoError(t, err)
	assert.Equal(t, []byte("both"), b)

	require.NoError(t, lc.DeleteByPattern(ctx, "*"))
	_, err = lc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestSetKey_OrderAndCaseInsensitive(t *testing.T) {
	a := SetKey([]string{"GC=F", "btc-usd", "EURUSD=X"})
	b := SetKey([]string{"EURUSD=X", " BTC-USD ", "GC=F", "GC=F"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, SetKey([]string{"GC=F"}))
}
