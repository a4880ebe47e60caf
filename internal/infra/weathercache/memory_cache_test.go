package weathercache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	cache := NewMemoryCache(16, time.Hour)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "current:metric:london")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Set(ctx, "current:metric:london", []byte(`{"name":"London"}`), time.Minute))
	payload, ok, err := cache.Get(ctx, "current:metric:london")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"name":"London"}`, string(payload))
}

func TestMemoryCacheExpires(t *testing.T) {
	cache := NewMemoryCache(16, time.Hour)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Minute))
	now = now.Add(2 * time.Minute)

	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryCacheCopiesPayload(t *testing.T) {
	cache := NewMemoryCache(16, time.Hour)
	ctx := context.Background()
	raw := []byte("abc")

	require.NoError(t, cache.Set(ctx, "k", raw, 0))
	raw[0] = 'x'

	payload, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "abc", string(payload))
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewMemoryCache(2, time.Hour)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "geo:oslo", []byte("1"), time.Minute))
	require.NoError(t, cache.Set(ctx, "geo:lima", []byte("2"), time.Minute))
	_, ok, err := cache.Get(ctx, "geo:oslo")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, cache.Set(ctx, "geo:rome", []byte("3"), time.Minute))

	require.Equal(t, 2, cache.Len())
	_, ok, err = cache.Get(ctx, "geo:lima")
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = cache.Get(ctx, "geo:oslo")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMemoryCacheSweepsExpiredKeys(t *testing.T) {
	cache := NewMemoryCache(100000, 20*time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 10000; i++ {
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("geo:city-%d", i), []byte("x"), time.Millisecond))
	}

	// keys that are never read again must still be released
	require.Eventually(t, func() bool { return cache.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
