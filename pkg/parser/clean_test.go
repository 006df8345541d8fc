package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

func TestClean_FixesTyposAndDropsNoiseWords(t *testing.T) {
	cleaned := Clean("can you show me reveue by mnoth please")
	assert.Contains(t, cleaned.Cleaned, "revenue")
	assert.Contains(t, cleaned.Cleaned, "month")
	assert.NotContains(t, cleaned.Cleaned, "please")
	assert.NotContains(t, cleaned.Cleaned, "can")
}

func TestClean_PreservesWordOrder(t *testing.T) {
	cleaned := Clean("show sales by month")
	assert.Equal(t, "show sales month", cleaned.Cleaned)
}

func TestClean_DetectsTrendIntent(t *testing.T) {
	cleaned := Clean("show revenue trend by month")
	assert.Equal(t, models.IntentTrend, cleaned.Primary)
}

func TestClean_DetectsCompareIntent(t *testing.T) {
	cleaned := Clean("compare revenue by region")
	assert.Equal(t, models.IntentCompare, cleaned.Primary)
}

func TestClean_LowConfidenceOnEmptyInput(t *testing.T) {
	cleaned := Clean("   ")
	assert.Equal(t, float64(0), cleaned.Confidence)
}
