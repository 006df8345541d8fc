package errorhandler

import (
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

type datasetCacheEntry struct {
	dataset  models.NormalizedDataset
	storedAt time.Time
}

// CachedDataset is the result of a DatasetCache lookup, carrying the
// staleness metadata the query-error recovery strategy surfaces to the
// user ("use cached results from N seconds ago").
type CachedDataset struct {
	Dataset      models.NormalizedDataset
	AgeSeconds   int
	PartialMatch bool
}

// DatasetCache is the query-error fallback cache, keyed directly by
// query_id rather than the query engine's intent-hash key, with a
// query_id-prefix partial-match fallback for a near-miss lookup.
type DatasetCache struct {
	mu      sync.Mutex
	entries map[string]datasetCacheEntry
	ttl     time.Duration
	clock   clockwork.Clock
}

// NewDatasetCache builds a cache with the given TTL and clock. A nil
// clock defaults to the real wall clock.
func NewDatasetCache(ttl time.Duration, clock clockwork.Clock) *DatasetCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &DatasetCache{
		entries: make(map[string]datasetCacheEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

// Get returns the cached dataset for queryID if fresh. Failing an exact
// match, it looks for a key sharing queryID's underscore-delimited prefix
// (a "similar recent query" fallback) and flags it partial.
func (c *DatasetCache) Get(queryID string) (CachedDataset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()

	if entry, ok := c.entries[queryID]; ok {
		if now.Sub(entry.storedAt) < c.ttl {
			return CachedDataset{Dataset: entry.dataset, AgeSeconds: int(now.Sub(entry.storedAt).Seconds())}, true
		}
		delete(c.entries, queryID)
	}

	prefix := strings.SplitN(queryID, "_", 2)[0]
	for key, entry := range c.entries {
		if now.Sub(entry.storedAt) >= c.ttl {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			return CachedDataset{
				Dataset:      entry.dataset,
				AgeSeconds:   int(now.Sub(entry.storedAt).Seconds()),
				PartialMatch: true,
			}, true
		}
	}

	return CachedDataset{}, false
}

// Store records dataset under queryID.
func (c *DatasetCache) Store(queryID string, dataset models.NormalizedDataset) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[queryID] = datasetCacheEntry{dataset: dataset, storedAt: c.clock.Now()}
}

// Sweep removes every entry whose TTL has elapsed.
func (c *DatasetCache) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	for key, entry := range c.entries {
		if now.Sub(entry.storedAt) >= c.ttl {
			delete(c.entries, key)
		}
	}
}
