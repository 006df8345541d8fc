package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

// fakeQuerier serves a fixed schema and counts refreshes, optionally failing
// for specific tables.
type fakeQuerier struct {
	tables   []string
	columns  map[string][]models.ColumnSchema
	fks      map[string][]models.ForeignKeyEdge
	failFor  map[string]bool
	refreshN int
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{
		tables: []string{"users", "orders"},
		columns: map[string][]models.ColumnSchema{
			"users": {
				{Name: "user_id", DeclaredType: "integer", PrimaryKey: true},
				{Name: "email", DeclaredType: "text"},
			},
			"orders": {
				{Name: "order_id", DeclaredType: "integer", PrimaryKey: true},
				{Name: "user_id", DeclaredType: "integer"},
				{Name: "total_amount", DeclaredType: "numeric"},
			},
		},
		fks: map[string][]models.ForeignKeyEdge{
			"orders": {{LocalColumn: "user_id", TargetTable: "users", TargetColumn: "user_id"}},
		},
		failFor: map[string]bool{},
	}
}

func (f *fakeQuerier) ListTables(ctx context.Context) ([]string, error) {
	return f.tables, nil
}

func (f *fakeQuerier) TableColumns(ctx context.Context, table string) ([]models.ColumnSchema, error) {
	f.refreshN++
	if f.failFor[table] {
		return nil, errors.New("simulated introspection failure")
	}
	return f.columns[table], nil
}

func (f *fakeQuerier) TableForeignKeys(ctx context.Context, table string) ([]models.ForeignKeyEdge, error) {
	return f.fks[table], nil
}

func TestIntrospector_GetCatalog_LoadsAllTables(t *testing.T) {
	q := newFakeQuerier()
	in := New(q, Config{Clock: clockwork.NewFakeClock()})

	cat, err := in.GetCatalog(context.Background())
	require.NoError(t, err)
	assert.Len(t, cat.Tables, 2)

	users, ok := cat.Table("users")
	require.True(t, ok)
	assert.Len(t, users.Columns, 2)
}

func TestIntrospector_SkipsFailingTableWithoutEmptyingCatalog(t *testing.T) {
	q := newFakeQuerier()
	q.failFor["orders"] = true
	in := New(q, Config{Clock: clockwork.NewFakeClock()})

	cat, err := in.GetCatalog(context.Background())
	require.NoError(t, err)

	_, ok := cat.Table("orders")
	assert.False(t, ok, "failing table should be skipped, not fatal")
	_, ok = cat.Table("users")
	assert.True(t, ok, "other tables must still load")
}

func TestIntrospector_CachesWithinTTL(t *testing.T) {
	q := newFakeQuerier()
	clock := clockwork.NewFakeClock()
	in := New(q, Config{TTL: time.Hour, Clock: clock})

	_, err := in.GetCatalog(context.Background())
	require.NoError(t, err)
	firstCount := q.refreshN

	_, err = in.GetCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, firstCount, q.refreshN, "second call within TTL must not re-introspect")
}

func TestIntrospector_RefreshesAfterTTLExpiry(t *testing.T) {
	q := newFakeQuerier()
	clock := clockwork.NewFakeClock()
	in := New(q, Config{TTL: time.Minute, Clock: clock})

	_, err := in.GetCatalog(context.Background())
	require.NoError(t, err)
	firstCount := q.refreshN

	clock.Advance(2 * time.Minute)

	_, err = in.GetCatalog(context.Background())
	require.NoError(t, err)
	assert.Greater(t, q.refreshN, firstCount, "catalog must refresh once TTL has elapsed")
}

func TestIntrospector_Invalidate_ForcesRefresh(t *testing.T) {
	q := newFakeQuerier()
	in := New(q, Config{TTL: time.Hour, Clock: clockwork.NewFakeClock()})

	_, err := in.GetCatalog(context.Background())
	require.NoError(t, err)
	firstCount := q.refreshN

	in.Invalidate()

	_, err = in.GetCatalog(context.Background())
	require.NoError(t, err)
	assert.Greater(t, q.refreshN, firstCount)
}

func TestIntrospector_RelatedTables_BothDirections(t *testing.T) {
	q := newFakeQuerier()
	in := New(q, Config{Clock: clockwork.NewFakeClock()})

	related, err := in.RelatedTables(context.Background(), "users")
	require.NoError(t, err)
	assert.Contains(t, related, "orders", "users should reach orders via the inbound FK")

	related, err = in.RelatedTables(context.Background(), "orders")
	require.NoError(t, err)
	assert.Contains(t, related, "users", "orders should reach users via its outbound FK")
}

func TestIntrospector_SearchByColumn_CaseInsensitiveSubstring(t *testing.T) {
	q := newFakeQuerier()
	in := New(q, Config{Clock: clockwork.NewFakeClock()})

	hits, err := in.SearchByColumn(context.Background(), "ID")
	require.NoError(t, err)
	assert.NotEmpty(t, hits)
	for _, h := range hits {
		assert.Contains(t, h.Column, "id")
	}
}

func TestSanitizeIdentifier(t *testing.T) {
	cases := map[string]string{
		"Order Total":  "order_total",
		"2024_revenue": "col_2024_revenue",
		"user-id":      "user_id",
		"  spaced  ":   "spaced",
	}
	for input, want := range cases {
		assert.Equal(t, want, SanitizeIdentifier(input), "input=%q", input)
	}
}
