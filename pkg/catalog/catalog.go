// Package catalog introspects the target analytics database and keeps a
// TTL-bounded, concurrency-safe snapshot of its relational shape.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

// DefaultTTL is the catalog refresh interval: default 1 hour.
const DefaultTTL = time.Hour

// Querier is the subset of database access the introspector needs. Backed by
// pgx against Postgres information_schema in production; a fake in tests.
type Querier interface {
	ListTables(ctx context.Context) ([]string, error)
	TableColumns(ctx context.Context, table string) ([]models.ColumnSchema, error)
	TableForeignKeys(ctx context.Context, table string) ([]models.ForeignKeyEdge, error)
}

// Config controls cache behavior.
type Config struct {
	TTL   time.Duration
	Clock clockwork.Clock

	// MaxConcurrency bounds the number of tables introspected at once.
	// Zero means unbounded (one goroutine per table).
	MaxConcurrency int
}

// Introspector is the catalog introspector.
type Introspector struct {
	q      Querier
	cfg    Config
	snap   atomic.Pointer[models.Catalog]
	mu     sync.Mutex // serializes concurrent refreshes
}

// New builds an Introspector. A nil/zero Config gets production defaults.
func New(q Querier, cfg Config) *Introspector {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Introspector{q: q, cfg: cfg}
}

// GetCatalog returns the cached Catalog, refreshing it first if the cached
// snapshot is missing or older than TTL.
func (in *Introspector) GetCatalog(ctx context.Context) (*models.Catalog, error) {
	if c := in.snap.Load(); c != nil && in.cfg.Clock.Now().Sub(c.LoadedAt) < in.cfg.TTL {
		return c, nil
	}
	return in.refresh(ctx)
}

// GetTable returns one table's schema, triggering a refresh if stale.
func (in *Introspector) GetTable(ctx context.Context, name string) (*models.TableSchema, bool, error) {
	c, err := in.GetCatalog(ctx)
	if err != nil {
		return nil, false, err
	}
	t, ok := c.Table(name)
	return t, ok, nil
}

// RelatedTables returns the set of tables reachable at foreign-key depth 1
// from the named table, in either direction.
func (in *Introspector) RelatedTables(ctx context.Context, name string) ([]string, error) {
	c, err := in.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var related []string
	add := func(t string) {
		if t != name && !seen[t] {
			seen[t] = true
			related = append(related, t)
		}
	}

	if t, ok := c.Table(name); ok {
		for _, fk := range t.ForeignKeys {
			add(fk.TargetTable)
		}
	}
	for tableName, t := range c.Tables {
		for _, fk := range t.ForeignKeys {
			if fk.TargetTable == name {
				add(tableName)
			}
		}
	}
	return related, nil
}

// SearchByColumn returns {table, column} pairs whose column name contains
// pattern (case-insensitive substring match).
func (in *Introspector) SearchByColumn(ctx context.Context, pattern string) ([]models.FieldMapping, error) {
	c, err := in.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	needle := normalizeSearchTerm(pattern)
	var hits []models.FieldMapping
	for tableName, t := range c.Tables {
		for _, col := range t.Columns {
			if containsFold(col.Name, needle) {
				hits = append(hits, models.FieldMapping{
					UserTerm: pattern,
					Table:    tableName,
					Column:   col.Name,
					Kind:     models.MappingExact,
				})
			}
		}
	}
	return hits, nil
}

// Invalidate drops the cached snapshot so the next GetCatalog forces a
// full refresh.
func (in *Introspector) Invalidate() {
	in.snap.Store(nil)
}

// refresh rebuilds the entire Catalog from the underlying store. Per-table
// errors are logged and skipped — a bad table never empties the whole
// catalog.
func (in *Introspector) refresh(ctx context.Context) (*models.Catalog, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	// Another goroutine may have already refreshed while we waited on the lock.
	if c := in.snap.Load(); c != nil && in.cfg.Clock.Now().Sub(c.LoadedAt) < in.cfg.TTL {
		return c, nil
	}

	tables, err := in.q.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list tables: %w", err)
	}

	loaded := make(map[string]*models.TableSchema, len(tables))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	if in.cfg.MaxConcurrency > 0 {
		g.SetLimit(in.cfg.MaxConcurrency)
	}
	for _, table := range tables {
		table := table
		g.Go(func() error {
			schema, err := in.loadTable(gctx, table)
			if err != nil {
				slog.Warn("catalog: skipping table after introspection error",
					"table", table, "error", err)
				return nil
			}
			mu.Lock()
			loaded[table] = schema
			mu.Unlock()
			return nil
		})
	}
	// errors are swallowed per-table above; Wait only surfaces unexpected
	// (e.g. context cancellation) failures.
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("catalog: refresh: %w", err)
	}

	snapshot := &models.Catalog{Tables: loaded, LoadedAt: in.cfg.Clock.Now()}
	in.snap.Store(snapshot)
	return snapshot, nil
}

func (in *Introspector) loadTable(ctx context.Context, table string) (*models.TableSchema, error) {
	cols, err := in.q.TableColumns(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	fks, err := in.q.TableForeignKeys(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("foreign keys: %w", err)
	}
	return &models.TableSchema{
		TableName:   table,
		Columns:     cols,
		ForeignKeys: fks,
		LoadedAt:    in.cfg.Clock.Now(),
	}, nil
}
