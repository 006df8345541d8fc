package descindex

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T, cfg Config) *Index {
	t.Helper()
	idx, err := Open("", NewHashEmbedder(32), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestIndex_IngestAndQuery_ReturnsNearestFirst(t *testing.T) {
	idx := newTestIndex(t, Config{})
	ctx := context.Background()

	_, err := idx.Ingest(ctx, "orders.json", KindTableDescription, "orders table tracks purchase transactions")
	require.NoError(t, err)
	_, err = idx.Ingest(ctx, "weather.json", KindTableDescription, "weather station readings of temperature")
	require.NoError(t, err)

	matches, err := idx.Query(ctx, "orders table tracks purchase transactions", 5, 0)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "orders.json", matches[0].Record.FileName)
	assert.InDelta(t, 0, matches[0].Distance, 1e-9, "querying with the exact ingested text must be a near-zero distance")
}

func TestIndex_Query_RespectsTopK(t *testing.T) {
	idx := newTestIndex(t, Config{})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := idx.Ingest(ctx, "source.json", KindColumnInsight, string(rune('a'+i))+" column insight text")
		require.NoError(t, err)
	}

	matches, err := idx.Query(ctx, "column insight text", 2, 1.0)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(matches), 2)
}

func TestIndex_Query_FiltersByThreshold(t *testing.T) {
	idx := newTestIndex(t, Config{})
	ctx := context.Background()

	_, err := idx.Ingest(ctx, "a.json", KindBusinessContext, "completely unrelated content about gardening")
	require.NoError(t, err)

	matches, err := idx.Query(ctx, "orders and revenue analysis", 5, 0.0001)
	require.NoError(t, err)
	assert.Empty(t, matches, "a near-zero threshold should exclude dissimilar content")
}

func TestIndex_Ingest_IsIdempotentOnContent(t *testing.T) {
	idx := newTestIndex(t, Config{})
	ctx := context.Background()

	id1, err := idx.Ingest(ctx, "a.json", KindQuerySuggestions, "try grouping by region")
	require.NoError(t, err)
	id2, err := idx.Ingest(ctx, "a.json", KindQuerySuggestions, "try grouping by region")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	doc, ok, err := idx.GetDocument(ctx, id1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "try grouping by region", doc.Text)
}

func TestIndex_GetDocument_MissingReturnsFalse(t *testing.T) {
	idx := newTestIndex(t, Config{})
	_, ok, err := idx.GetDocument(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIndex_Sweep_RemovesStaleDocuments(t *testing.T) {
	idx := newTestIndex(t, Config{TTL: time.Minute})
	ctx := context.Background()

	_, err := idx.Ingest(ctx, "stale.json", KindTableDescription, "an old table description")
	require.NoError(t, err)

	removed, err := idx.Sweep(ctx, time.Now().Add(2*time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	matches, err := idx.Query(ctx, "an old table description", 5, 1.0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestIndex_Sweep_NoopWhenTTLZero(t *testing.T) {
	idx := newTestIndex(t, Config{})
	removed, err := idx.Sweep(context.Background(), time.Now().Add(365*24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestContentHash_DeterministicPerInput(t *testing.T) {
	h1 := ContentHash("f.json", KindTableDescription, "text")
	h2 := ContentHash("f.json", KindTableDescription, "text")
	h3 := ContentHash("f.json", KindTableDescription, "different text")
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}
