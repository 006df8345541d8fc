package slack

import (
	"strings"
	"testing"
	"unicode/utf8"

	goslack "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildJobStartedMessage(t *testing.T) {
	blocks := BuildJobStartedMessage("job-123", "show revenue by region")

	require.Len(t, blocks, 1)

	section, ok := blocks[0].(*goslack.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, section.Text.Text, ":arrows_counterclockwise:")
	assert.Contains(t, section.Text.Text, "Generating chart")
	assert.Contains(t, section.Text.Text, "show revenue by region")
	assert.Contains(t, section.Text.Text, "job-123")
}

func TestBuildJobCompletedMessage_Completed(t *testing.T) {
	input := JobCompletedInput{
		JobID:         "job-1",
		Status:        "completed",
		ComponentName: "RevenueByRegionBarChart",
		ChartType:     "bar",
	}
	blocks := BuildJobCompletedMessage(input, "https://dash.example.com")

	require.Len(t, blocks, 2)

	header := blocks[0].(*goslack.SectionBlock)
	assert.Contains(t, header.Text.Text, ":white_check_mark:")
	assert.Contains(t, header.Text.Text, "Chart Generated")
	assert.Contains(t, header.Text.Text, "RevenueByRegionBarChart")
	assert.Contains(t, header.Text.Text, "bar")

	action := blocks[1].(*goslack.ActionBlock)
	require.Len(t, action.Elements.ElementSet, 1)
	btn, ok := action.Elements.ElementSet[0].(*goslack.ButtonBlockElement)
	require.True(t, ok)
	assert.Equal(t, "View Job", btn.Text.Text)
	assert.Contains(t, btn.URL, "https://dash.example.com/jobs/job-1")
}

func TestBuildJobCompletedMessage_NoDashboardURL(t *testing.T) {
	input := JobCompletedInput{JobID: "job-2", Status: "completed"}
	blocks := BuildJobCompletedMessage(input, "")

	require.Len(t, blocks, 1)
}

func TestBuildJobCompletedMessage_Failed(t *testing.T) {
	input := JobCompletedInput{
		JobID:        "job-3",
		Status:       "failed",
		ErrorMessage: "timeout waiting for LLM",
	}
	blocks := BuildJobCompletedMessage(input, "https://dash.example.com")

	header := blocks[0].(*goslack.SectionBlock)
	assert.Contains(t, header.Text.Text, ":x:")
	assert.Contains(t, header.Text.Text, "Chart Generation Failed")
	assert.Contains(t, header.Text.Text, "timeout waiting for LLM")
}

func TestBuildJobCompletedMessage_Cancelled(t *testing.T) {
	input := JobCompletedInput{JobID: "job-4", Status: "cancelled"}
	blocks := BuildJobCompletedMessage(input, "https://dash.example.com")

	header := blocks[0].(*goslack.SectionBlock)
	assert.Contains(t, header.Text.Text, ":no_entry_sign:")
	assert.Contains(t, header.Text.Text, "Chart Generation Cancelled")
}

func TestTruncateForSlack(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "hello", truncateForSlack("hello"))
	})

	t.Run("exact limit unchanged", func(t *testing.T) {
		text := strings.Repeat("a", maxBlockTextLength)
		assert.Equal(t, text, truncateForSlack(text))
	})

	t.Run("over limit truncated", func(t *testing.T) {
		text := strings.Repeat("a", maxBlockTextLength+100)
		result := truncateForSlack(text)
		assert.True(t, len(result) < len(text))
		assert.Contains(t, result, "truncated")
	})

	t.Run("multi-byte runes not split", func(t *testing.T) {
		text := strings.Repeat("🔥", maxBlockTextLength+10)
		result := truncateForSlack(text)
		assert.Contains(t, result, "truncated")
		assert.True(t, utf8.ValidString(result), "result should be valid UTF-8")
		prefix := strings.Split(result, "\n\n_...")[0]
		assert.Equal(t, maxBlockTextLength, utf8.RuneCountInString(prefix))
	})
}
