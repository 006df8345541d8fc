package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_ActionablePromptPassesThreshold(t *testing.T) {
	result := Validate("show revenue trend by month")
	assert.True(t, result.IsValid)
	assert.GreaterOrEqual(t, result.Confidence, minActionableConfidence)
}

func TestValidate_GreetingFailsThreshold(t *testing.T) {
	result := Validate("hello how are you")
	assert.False(t, result.IsValid)
}

func TestValidate_CapturesTemporalIndicators(t *testing.T) {
	result := Validate("show monthly revenue")
	assert.Contains(t, result.TemporalIndicators, "monthly")
}

func TestValidate_NegativePatternReducesConfidence(t *testing.T) {
	withPenalty := Validate("please show revenue")
	withoutPenalty := Validate("show revenue")
	assert.Less(t, withPenalty.Confidence, withoutPenalty.Confidence)
}
