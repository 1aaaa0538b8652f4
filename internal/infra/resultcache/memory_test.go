package resultcache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/textcraft/pkg/util"
)

func withClock(t *testing.T, now *time.Time) {
	t.Helper()
	original := util.NowUTC
	util.NowUTC = func() time.Time { return *now }
	t.Cleanup(func() { util.NowUTC = original })
}

func TestMemoryCacheExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	withClock(t, &now)
	ctx := context.Background()
	cache := NewMemoryCache(time.Minute, 0)

	require.NoError(t, cache.Set(ctx, "k", "summary"))
	value, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "summary", value)

	now = now.Add(time.Minute)
	_, ok, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryCacheWithoutTTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	withClock(t, &now)
	ctx := context.Background()
	cache := NewMemoryCache(0, 0)

	require.NoError(t, cache.Set(ctx, "k", "v"))
	now = now.Add(24 * time.Hour)
	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMemoryCacheBounded(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(time.Hour, 3)
	for i := 0; i < 10; i++ {
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("k%d", i), "v"))
	}
	require.LessOrEqual(t, len(cache.entries), 3)

	_, ok, err := cache.Get(ctx, "k9")
	require.NoError(t, err)
	require.True(t, ok)
}
