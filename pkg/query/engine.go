// Package query is the query engine: it turns a ResolvedIntent into a
// single validated SELECT, executes it with retry-with-repair, normalizes
// the result, and fronts repeated lookups with a TTL cache.
package query

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/tarsy-labs/chartpilot/pkg/llmgateway"
	"github.com/tarsy-labs/chartpilot/pkg/models"
)

// Engine composes the builder, validator, executor, normalizer and cache
// behind its four operations: execute, execute_raw, cache_get, cache_set.
type Engine struct {
	Store   Store
	Gateway llmgateway.Gateway
	Cache   *ResultCache
}

// Config constructs an Engine with sensible defaults.
type Config struct {
	Store   Store
	Gateway llmgateway.Gateway
	CacheTTL time.Duration
	Clock    clockwork.Clock
}

// New builds an Engine from cfg, defaulting CacheTTL to DefaultResultTTL and
// Clock to the real clock.
func New(cfg Config) *Engine {
	return &Engine{
		Store:   cfg.Store,
		Gateway: cfg.Gateway,
		Cache:   NewResultCache(cfg.CacheTTL, cfg.Clock),
	}
}

// Execute is the engine's main entry point: cache_get, and on miss,
// build+execute+normalize+cache_set.
func (e *Engine) Execute(ctx context.Context, intent models.ResolvedIntent, catalogDescription string) (models.NormalizedDataset, error) {
	key := CacheKey(intent)
	if cached, ok := e.Cache.Get(key); ok {
		return cached, nil
	}

	fromGraph := intent.MetricTable
	if intent.DimensionTable != "" && intent.DimensionTable != intent.MetricTable {
		fromGraph = intent.MetricTable + " JOIN " + intent.DimensionTable +
			" ON " + intent.MetricTable + ".id = " + intent.DimensionTable + "_id"
	}

	dataset, err := Execute(ctx, e.Store, e.Gateway, catalogDescription, intent, fromGraph)
	if err != nil {
		return models.NormalizedDataset{}, err
	}

	e.Cache.Set(key, dataset)
	return dataset, nil
}

// ExecuteRaw is the read-only probe operation: validated but never cached
// or repaired.
func (e *Engine) ExecuteRaw(ctx context.Context, sql string) (models.ExecutionResult, error) {
	return ExecuteRaw(ctx, e.Store, sql)
}

// CacheGet exposes the cache's lookup directly as the cache_get(key)
// operation.
func (e *Engine) CacheGet(key string) (models.NormalizedDataset, bool) {
	return e.Cache.Get(key)
}

// CacheSet exposes the cache's store directly as the cache_set(key,
// value) operation.
func (e *Engine) CacheSet(key string, dataset models.NormalizedDataset) {
	e.Cache.Set(key, dataset)
}
