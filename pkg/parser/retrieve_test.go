package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrieveSchema_ScoresTableAndColumnHits(t *testing.T) {
	catalog := testCatalog()
	tables := RetrieveSchema("show sales total_amount by customer region", catalog)
	require.NotEmpty(t, tables)

	names := map[string]bool{}
	for _, table := range tables {
		names[table.TableName] = true
	}
	assert.True(t, names["sales"])
}

func TestRetrieveSchema_ReturnsEmptyWhenNothingScores(t *testing.T) {
	catalog := testCatalog()
	tables := RetrieveSchema("xyz abc qqq", catalog)
	assert.Empty(t, tables)
}

func TestRetrieveSchema_CapsAtTopFive(t *testing.T) {
	catalog := testCatalog()
	tables := RetrieveSchema("sales customers products", catalog)
	assert.LessOrEqual(t, len(tables), topRelevantTables)
}
