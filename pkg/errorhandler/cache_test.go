package errorhandler

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

func TestDatasetCache_ExactMatchHit(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := NewDatasetCache(DatasetCacheTTL, clock)
	cache.Store("q_abc", models.NormalizedDataset{RowCount: 10})

	clock.Advance(5 * time.Second)

	got, ok := cache.Get("q_abc")
	require.True(t, ok)
	assert.Equal(t, 10, got.Dataset.RowCount)
	assert.Equal(t, 5, got.AgeSeconds)
	assert.False(t, got.PartialMatch)
}

func TestDatasetCache_PartialMatchByPrefix(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := NewDatasetCache(DatasetCacheTTL, clock)
	cache.Store("q_abc_v2", models.NormalizedDataset{RowCount: 7})

	got, ok := cache.Get("q_abc_v3")
	require.True(t, ok)
	assert.True(t, got.PartialMatch)
	assert.Equal(t, 7, got.Dataset.RowCount)
}

func TestDatasetCache_ExpiredEntryIsAMiss(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := NewDatasetCache(DatasetCacheTTL, clock)
	cache.Store("q_abc", models.NormalizedDataset{RowCount: 1})

	clock.Advance(DatasetCacheTTL + time.Second)

	_, ok := cache.Get("q_abc")
	assert.False(t, ok)
}

func TestDatasetCache_Sweep(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := NewDatasetCache(DatasetCacheTTL, clock)
	cache.Store("stale", models.NormalizedDataset{})

	clock.Advance(DatasetCacheTTL + time.Second)
	cache.Store("fresh", models.NormalizedDataset{})

	cache.Sweep()

	_, staleOK := cache.entries["stale"]
	_, freshOK := cache.entries["fresh"]
	assert.False(t, staleOK)
	assert.True(t, freshOK)
}
