package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsy-labs/chartpilot/pkg/llmgateway"
	"github.com/tarsy-labs/chartpilot/pkg/models"
)

// fakeStore serves fixed responses keyed by the exact SQL it receives, and
// counts how many times each statement was run.
type fakeStore struct {
	responses map[string]models.ExecutionResult
	calls     []string
}

func (s *fakeStore) Query(_ context.Context, sql string) (models.ExecutionResult, error) {
	s.calls = append(s.calls, sql)
	if resp, ok := s.responses[sql]; ok {
		return resp, nil
	}
	return models.ExecutionResult{OK: false, Error: "relation does not exist", SQL: sql}, nil
}

// fakeGateway always repairs to a fixed replacement statement.
type fakeGateway struct {
	repairedSQL string
	calls       int
}

func (g *fakeGateway) Complete(_ context.Context, req llmgateway.Request) (*llmgateway.Response, error) {
	g.calls++
	return &llmgateway.Response{
		RawText: `{"sql": "` + g.repairedSQL + `"}`,
		Parsed:  map[string]any{"sql": g.repairedSQL},
	}, nil
}

func TestExecuteWithRepair_SucceedsOnFirstAttempt(t *testing.T) {
	store := &fakeStore{responses: map[string]models.ExecutionResult{
		"SELECT 1 FROM sales": {OK: true, Rows: []models.Row{{"value": 1.0}}, ColumnOrder: []string{"value"}},
	}}
	gw := &fakeGateway{}

	result, err := executeWithRepair(context.Background(), store, gw, "sales(id, total_amount)", "SELECT 1 FROM sales")
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, 0, gw.calls)
}

func TestExecuteWithRepair_RepairsOnceThenSucceeds(t *testing.T) {
	store := &fakeStore{responses: map[string]models.ExecutionResult{
		"SELECT fixed FROM sales": {OK: true, Rows: []models.Row{{"value": 1.0}}, ColumnOrder: []string{"value"}},
	}}
	gw := &fakeGateway{repairedSQL: "SELECT fixed FROM sales"}

	result, err := executeWithRepair(context.Background(), store, gw, "sales(id, total_amount)", "SELECT broken FROM sales")
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, 1, gw.calls)
	assert.Equal(t, 2, len(store.calls))
}

func TestExecuteWithRepair_PropagatesAfterThreeIdenticalFailures(t *testing.T) {
	store := &fakeStore{responses: map[string]models.ExecutionResult{}}
	gw := &fakeGateway{repairedSQL: "SELECT broken FROM sales"}

	_, err := executeWithRepair(context.Background(), store, gw, "sales(id)", "SELECT broken FROM sales")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repeated failure")
}

func TestExecuteWithRepair_RejectsRepairThatFailsValidation(t *testing.T) {
	store := &fakeStore{responses: map[string]models.ExecutionResult{}}
	gw := &fakeGateway{repairedSQL: "DROP TABLE sales"}

	_, err := executeWithRepair(context.Background(), store, gw, "sales(id)", "SELECT broken FROM sales")
	require.Error(t, err)
}

func TestExecuteRaw_FailsValidationWithoutCallingStore(t *testing.T) {
	store := &fakeStore{responses: map[string]models.ExecutionResult{}}
	_, err := ExecuteRaw(context.Background(), store, "DELETE FROM sales")
	require.Error(t, err)
	assert.Empty(t, store.calls)
}
