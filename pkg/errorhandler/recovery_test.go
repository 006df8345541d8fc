package errorhandler

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

func TestRecoveryPolicy_SchemaErrorAutoRemapsOnSynonymHit(t *testing.T) {
	policy := NewRecoveryPolicy(nil, NewSynonymMapper())
	payload := models.ErrorPayload{Data: models.ErrorPayloadData{
		Context: map[string]any{"field": "revenue", "available_fields": []interface{}{"total_amount", "region"}},
	}}
	analysis := Analyze(models.ErrorSchema, payload.Data)

	recovery := policy.Determine(models.ErrorSchema, payload, analysis, 0)
	assert.Equal(t, "auto_remap_field", recovery.Strategy)
	assert.Equal(t, models.ActionResume, recovery.NextAction)
	assert.Equal(t, "total_amount", recovery.FieldMapping["revenue"])
}

func TestRecoveryPolicy_QueryErrorUsesCacheOnHit(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := NewDatasetCache(DatasetCacheTTL, clock)
	cache.Store("q_123", models.NormalizedDataset{RowCount: 5})

	policy := NewRecoveryPolicy(cache, NewSynonymMapper())
	payload := models.ErrorPayload{Data: models.ErrorPayloadData{QueryID: "q_123", Message: "query timeout"}}
	analysis := Analyze(models.ErrorQuery, payload.Data)

	recovery := policy.Determine(models.ErrorQuery, payload, analysis, 0)
	assert.Equal(t, "use_cached_data", recovery.Strategy)
	assert.Equal(t, models.ActionResume, recovery.NextAction)
	require.NotNil(t, recovery.CachedDataset)
	assert.Equal(t, 5, recovery.CachedDataset.RowCount)
}

func TestRecoveryPolicy_QueryErrorRetriesUnderBudget(t *testing.T) {
	policy := NewRecoveryPolicy(nil, nil)
	payload := models.ErrorPayload{Data: models.ErrorPayloadData{QueryID: "q_123", Message: "query timeout"}}
	analysis := Analyze(models.ErrorQuery, payload.Data)

	recovery := policy.Determine(models.ErrorQuery, payload, analysis, 1)
	assert.Equal(t, "retry_with_backoff", recovery.Strategy)
	assert.Contains(t, recovery.AutomatedActions, "retry:2")
	assert.Contains(t, recovery.AutomatedActions, "backoff:3s")
}

func TestRecoveryPolicy_QueryErrorEscalatesAtRetryBudget(t *testing.T) {
	policy := NewRecoveryPolicy(nil, nil)
	payload := models.ErrorPayload{Data: models.ErrorPayloadData{QueryID: "q_123", Message: "query timeout"}}
	analysis := Analyze(models.ErrorQuery, payload.Data)

	recovery := policy.Determine(models.ErrorQuery, payload, analysis, MaxRetries)
	assert.Equal(t, "escalate_query_issue", recovery.Strategy)
	assert.Equal(t, models.ActionEscalate, recovery.NextAction)
}

func TestRecoveryPolicy_ChartErrorUsesCompatibilityMatrix(t *testing.T) {
	policy := NewRecoveryPolicy(nil, nil)
	payload := models.ErrorPayload{Data: models.ErrorPayloadData{
		Context: map[string]any{"chart": "pie", "dimension": "date"},
	}}
	recovery := policy.Determine(models.ErrorChart, payload, Analysis{}, 0)
	assert.Equal(t, "suggest_chart_alternatives", recovery.Strategy)
	assert.Contains(t, recovery.AutomatedActions, "suggest_chart:line")
}

func TestRecoveryPolicy_ChartErrorFallsBackToDefaultAlternatives(t *testing.T) {
	policy := NewRecoveryPolicy(nil, nil)
	payload := models.ErrorPayload{Data: models.ErrorPayloadData{
		Context: map[string]any{"chart": "donut", "dimension": "whatever"},
	}}
	recovery := policy.Determine(models.ErrorChart, payload, Analysis{}, 0)
	assert.Contains(t, recovery.AutomatedActions, "suggest_chart:bar")
}

func TestRecoveryPolicy_InputErrorAwaitsUser(t *testing.T) {
	policy := NewRecoveryPolicy(nil, nil)
	payload := models.ErrorPayload{Data: models.ErrorPayloadData{
		Context: map[string]any{"missing_params": []interface{}{"time range"}},
	}}
	recovery := policy.Determine(models.ErrorInput, payload, Analysis{}, 0)
	assert.Equal(t, models.ActionAwaitUser, recovery.NextAction)
	assert.Contains(t, recovery.Suggestions, "Please specify the time range")
}

func TestRecoveryPolicy_SystemErrorEscalatesAndAttachesCache(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := NewDatasetCache(DatasetCacheTTL, clock)
	cache.Store("q_999", models.NormalizedDataset{RowCount: 3})
	clock.Advance(2 * time.Second)

	policy := NewRecoveryPolicy(cache, nil)
	payload := models.ErrorPayload{Data: models.ErrorPayloadData{QueryID: "q_999"}}
	recovery := policy.Determine(models.ErrorSystem, payload, Analysis{}, 0)

	assert.Equal(t, models.ActionEscalate, recovery.NextAction)
	require.NotNil(t, recovery.CachedDataset)
}
