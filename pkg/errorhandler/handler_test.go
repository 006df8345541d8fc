package errorhandler

import (
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

func newTestHandler(clock clockwork.Clock) (*Handler, *DatasetCache) {
	cache := NewDatasetCache(DatasetCacheTTL, clock)
	idempotency := NewIdempotencyStore(IdempotencyTTL, clock)
	recovery := NewRecoveryPolicy(cache, NewSynonymMapper())
	router := NewRouter()
	return NewHandler(idempotency, recovery, router, clock), cache
}

func TestHandler_InvalidPayloadSurfacesAsValidationError(t *testing.T) {
	handler, _ := newTestHandler(clockwork.NewFakeClock())
	payload := models.ErrorPayload{Data: models.ErrorPayloadData{QueryID: "bad id"}}

	record := handler.Handle("test-component", payload, 0)
	assert.Equal(t, models.ErrorValidation, record.Kind)
	assert.Equal(t, models.SeverityHigh, record.Severity)
	assert.NotEmpty(t, record.UserMessage)
}

func TestHandler_SchemaErrorAutoRemapsEndToEnd(t *testing.T) {
	handler, _ := newTestHandler(clockwork.NewFakeClock())
	payload := models.ErrorPayload{
		AgentID: "query-engine",
		Status:  "error",
		Data: models.ErrorPayloadData{
			ErrorType: "schema_error",
			ErrorCode: "E_SCHEMA",
			Message:   "field not found",
			QueryID:   "q_42",
			Context: map[string]any{
				"field":            "revenue",
				"available_fields": []interface{}{"total_amount", "region"},
			},
		},
	}

	record := handler.Handle("query-engine", payload, 0)
	assert.Equal(t, models.ErrorSchema, record.Kind)
	assert.Equal(t, "auto_remap_field", record.Recovery.Strategy)
	assert.Equal(t, models.ActionResume, record.Recovery.NextAction)
	assert.Contains(t, record.UserMessage, "matching field")
}

func TestHandler_DuplicateWithinIdempotencyWindowReturnsSameRecord(t *testing.T) {
	clock := clockwork.NewFakeClock()
	handler, _ := newTestHandler(clock)
	payload := models.ErrorPayload{
		AgentID: "a", Status: "error",
		Data: models.ErrorPayloadData{ErrorCode: "E1", Message: "query failed", QueryID: "q_dup"},
	}

	first := handler.Handle("a", payload, 0)
	second := handler.Handle("a", payload, 1)

	assert.Equal(t, first.ErrorID, second.ErrorID)
	assert.Equal(t, first.Recovery.Strategy, second.Recovery.Strategy)
}

func TestHandler_RoutesEscalationToOpsChannel(t *testing.T) {
	handler, _ := newTestHandler(clockwork.NewFakeClock())
	payload := models.ErrorPayload{
		AgentID: "a", Status: "error",
		Data: models.ErrorPayloadData{ErrorCode: "E1", Message: "service unavailable", QueryID: "q_sys"},
	}

	record := handler.Handle("a", payload, 0)
	require.Equal(t, models.ActionEscalate, record.Recovery.NextAction)

	select {
	case got := <-handler.Router.Ops:
		assert.Equal(t, record.ErrorID, got.ErrorID)
	default:
		t.Fatal("expected an ops escalation on the router's Ops channel")
	}
}

func TestHandler_RoutesResumeToPipelineChannel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	handler, cache := newTestHandler(clock)
	cache.Store("q_cached", models.NormalizedDataset{RowCount: 2})

	payload := models.ErrorPayload{
		AgentID: "a", Status: "error",
		Data: models.ErrorPayloadData{ErrorCode: "E1", Message: "query timeout", QueryID: "q_cached"},
	}

	record := handler.Handle("a", payload, 0)
	require.Equal(t, models.ActionResume, record.Recovery.NextAction)

	select {
	case got := <-handler.Router.Pipeline:
		assert.Equal(t, record.ErrorID, got.ErrorID)
	default:
		t.Fatal("expected a resume directive on the router's Pipeline channel")
	}
}
