package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSummaryCache(t *testing.T) (*SummaryCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSummaryCache(client, 10*time.Minute), mr
}

func TestSummaryCacheRoundTrip(t *testing.T) {
	cache, _ := testSummaryCache(t)
	ctx := context.Background()

	_, ok := cache.Get(ctx)
	assert.False(t, ok)

	want := Summary{
		Purchase:   TypeSummary{Count: 2, Nominal: 360000},
		Sale:       TypeSummary{Count: 1, Nominal: 1500000},
		Production: TypeSummary{Count: 1, Nominal: 75000},
		GrandTotal: 1860000,
	}
	cache.Set(ctx, want)

	got, ok := cache.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestSummaryCacheExpiresAndInvalidates(t *testing.T) {
	cache, mr := testSummaryCache(t)
	ctx := context.Background()

	cache.Set(ctx, Summary{GrandTotal: 100})
	mr.FastForward(11 * time.Minute)
	_, ok := cache.Get(ctx)
	assert.False(t, ok)

	cache.Set(ctx, Summary{GrandTotal: 200})
	cache.Invalidate(ctx)
	_, ok = cache.Get(ctx)
	assert.False(t, ok)
}

func TestSummaryCacheNilReceiverIsNoop(t *testing.T) {
	var cache *SummaryCache
	ctx := context.Background()

	cache.Set(ctx, Summary{GrandTotal: 1})
	cache.Invalidate(ctx)
	_, ok := cache.Get(ctx)
	assert.False(t, ok)
}
