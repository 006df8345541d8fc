package llmgateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON_PlainObject(t *testing.T) {
	obj, errMsg := ExtractJSON(`{"chart_type": "bar", "x_axis": "region"}`)
	require.Empty(t, errMsg)
	assert.Equal(t, "bar", obj["chart_type"])
}

func TestExtractJSON_FencedJSONBlock(t *testing.T) {
	text := "Here is the result:\n```json\n{\"queries\": [\"SELECT 1\"]}\n```\nDone."
	obj, errMsg := ExtractJSON(text)
	require.Empty(t, errMsg)
	assert.Contains(t, obj, "queries")
}

func TestExtractJSON_GenericFencedBlock(t *testing.T) {
	text := "```\n{\"ok\": true}\n```"
	obj, errMsg := ExtractJSON(text)
	require.Empty(t, errMsg)
	assert.Equal(t, true, obj["ok"])
}

func TestExtractJSON_LeadingAndTrailingProse(t *testing.T) {
	text := `Sure, here's the JSON: {"metric": "revenue"} Hope that helps!`
	obj, errMsg := ExtractJSON(text)
	require.Empty(t, errMsg)
	assert.Equal(t, "revenue", obj["metric"])
}

func TestExtractJSON_EmbeddedSQLWithNewlines(t *testing.T) {
	text := "{\"queries\": [\"SELECT *\nFROM orders\nWHERE total > 10\"]}"
	obj, errMsg := ExtractJSON(text)
	require.Empty(t, errMsg)
	queries, ok := obj["queries"].([]any)
	require.True(t, ok)
	require.Len(t, queries, 1)
	assert.NotContains(t, queries[0].(string), "\n")
}

func TestExtractJSON_TrailingCommas(t *testing.T) {
	text := `{"chart_type": "bar", "x_axis": "region",}`
	obj, errMsg := ExtractJSON(text)
	require.Empty(t, errMsg)
	assert.Equal(t, "bar", obj["chart_type"])
}

func TestExtractJSON_NoObjectFound(t *testing.T) {
	_, errMsg := ExtractJSON("there is no JSON here at all")
	assert.NotEmpty(t, errMsg)
}

func TestCompleteWithExtraction_ReportsMissingRequiredKeys(t *testing.T) {
	resp := completeWithExtraction(`{"chart_type": "bar"}`, Request{RequiredKeys: []string{"chart_type", "x_axis"}})
	assert.Equal(t, []string{"x_axis"}, resp.Missing)
}

func TestCompleteWithExtraction_NoMissingKeysWhenAllPresent(t *testing.T) {
	resp := completeWithExtraction(`{"chart_type": "bar", "x_axis": "region"}`, Request{RequiredKeys: []string{"chart_type", "x_axis"}})
	assert.Empty(t, resp.Missing)
}
