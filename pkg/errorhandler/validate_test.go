package errorhandler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

func validPayload() models.ErrorPayload {
	return models.ErrorPayload{
		AgentID:   "agent-1",
		Timestamp: time.Now(),
		Status:    "error",
		Data: models.ErrorPayloadData{
			ErrorCode: "E100",
			Message:   "query failed",
			QueryID:   "q_abc123",
		},
	}
}

func TestValidatePayload_Valid(t *testing.T) {
	ok, errs := ValidatePayload(validPayload())
	assert.True(t, ok)
	assert.Empty(t, errs)
}

func TestValidatePayload_MissingAgentID(t *testing.T) {
	p := validPayload()
	p.AgentID = ""
	ok, errs := ValidatePayload(p)
	assert.False(t, ok)
	assert.Contains(t, errs, "missing required field: agent_id")
}

func TestValidatePayload_BadQueryIDFormat(t *testing.T) {
	p := validPayload()
	p.Data.QueryID = "not-a-valid-id!"
	ok, errs := ValidatePayload(p)
	assert.False(t, ok)
	assert.Contains(t, errs[0], "invalid query_id format")
}

func TestValidatePayload_UnknownErrorType(t *testing.T) {
	p := validPayload()
	p.Data.ErrorType = "totally_unknown"
	ok, errs := ValidatePayload(p)
	assert.False(t, ok)
	found := false
	for _, e := range errs {
		if e == "invalid error_type: totally_unknown" {
			found = true
		}
	}
	assert.True(t, found)
}
