package query

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/tarsy-labs/chartpilot/pkg/metrics"
	"github.com/tarsy-labs/chartpilot/pkg/models"
)

// DefaultResultTTL is the result cache's default entry lifetime: a TTL
// cache, default 5 minutes.
const DefaultResultTTL = 5 * time.Minute

// ResultCache is the TTL cache fronting repeated identical queries. Keys
// are a hash over (intent_type, metric, dimension, normalized filter map).
type ResultCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	clock   clockwork.Clock
}

type cacheEntry struct {
	dataset   models.NormalizedDataset
	storedAt  time.Time
}

// NewResultCache constructs a cache with the given TTL. A zero ttl defaults
// to DefaultResultTTL. clock defaults to the real clock when nil.
func NewResultCache(ttl time.Duration, clock clockwork.Clock) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ResultCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

// CacheKey hashes (intent_type, metric, dimension, normalized filters) into
// the string key the cache is addressed by.
func CacheKey(intent models.ResolvedIntent) string {
	filters := make([]string, 0, len(intent.Filters))
	for _, f := range intent.Filters {
		filters = append(filters, fmt.Sprintf("%s%s%s", f.Column, f.Op, f.Literal))
	}
	sort.Strings(filters)

	raw := strings.Join([]string{
		string(intent.IntentType),
		strings.ToLower(intent.Metric),
		strings.ToLower(intent.Dimension),
		strings.Join(filters, "|"),
	}, "\x1f")

	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached dataset for key, flagged CacheHit=true, if present
// and not expired.
func (c *ResultCache) Get(key string) (models.NormalizedDataset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		metrics.CacheMissesTotal.Inc()
		return models.NormalizedDataset{}, false
	}
	if c.clock.Now().Sub(entry.storedAt) > c.ttl {
		delete(c.entries, key)
		metrics.CacheMissesTotal.Inc()
		return models.NormalizedDataset{}, false
	}

	metrics.CacheHitsTotal.Inc()
	hit := entry.dataset
	hit.CacheHit = true
	return hit, true
}

// Set stores dataset under key with the current time as insertion timestamp.
// Only ok=true, non-cache-hit datasets should ever be passed in — cache
// hits are never themselves re-written.
func (c *ResultCache) Set(key string, dataset models.NormalizedDataset) {
	if dataset.CacheHit {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{dataset: dataset, storedAt: c.clock.Now()}
}

// Sweep removes every entry older than the cache's TTL. Callers schedule
// this explicitly, consistent with pkg/catalog and pkg/descindex.
func (c *ResultCache) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	for key, entry := range c.entries {
		if now.Sub(entry.storedAt) > c.ttl {
			delete(c.entries, key)
		}
	}
}
