package query

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

func TestCacheKey_DeterministicAndFilterOrderInsensitive(t *testing.T) {
	a := models.ResolvedIntent{
		IntentType: models.ResolvedTrend,
		Metric:     "revenue",
		Dimension:  "month",
		Filters: []models.Filter{
			{Column: "region", Op: models.OpEqual, Literal: "west"},
			{Column: "status", Op: models.OpEqual, Literal: "paid"},
		},
	}
	b := models.ResolvedIntent{
		IntentType: models.ResolvedTrend,
		Metric:     "revenue",
		Dimension:  "month",
		Filters: []models.Filter{
			{Column: "status", Op: models.OpEqual, Literal: "paid"},
			{Column: "region", Op: models.OpEqual, Literal: "west"},
		},
	}
	assert.Equal(t, CacheKey(a), CacheKey(b))
}

func TestCacheKey_DiffersOnMetric(t *testing.T) {
	a := models.ResolvedIntent{IntentType: models.ResolvedSummary, Metric: "revenue"}
	b := models.ResolvedIntent{IntentType: models.ResolvedSummary, Metric: "orders"}
	assert.NotEqual(t, CacheKey(a), CacheKey(b))
}

func TestResultCache_SetThenGetReturnsCacheHit(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := NewResultCache(5*time.Minute, clock)

	dataset := models.NormalizedDataset{ColumnOrder: []string{"revenue"}}
	cache.Set("key1", dataset)

	got, ok := cache.Get("key1")
	require.True(t, ok)
	assert.True(t, got.CacheHit)
}

func TestResultCache_ExpiresAfterTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := NewResultCache(5*time.Minute, clock)
	cache.Set("key1", models.NormalizedDataset{})

	clock.Advance(6 * time.Minute)

	_, ok := cache.Get("key1")
	assert.False(t, ok)
}

func TestResultCache_DoesNotStoreCacheHitDatasets(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := NewResultCache(5*time.Minute, clock)

	cache.Set("key1", models.NormalizedDataset{CacheHit: true})

	_, ok := cache.Get("key1")
	assert.False(t, ok)
}

func TestResultCache_SweepRemovesOnlyExpiredEntries(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := NewResultCache(5*time.Minute, clock)

	cache.Set("stale", models.NormalizedDataset{})
	clock.Advance(3 * time.Minute)
	cache.Set("fresh", models.NormalizedDataset{})
	clock.Advance(3 * time.Minute)

	cache.Sweep()

	_, staleOK := cache.Get("stale")
	_, freshOK := cache.Get("fresh")
	assert.False(t, staleOK)
	assert.True(t, freshOK)
}
