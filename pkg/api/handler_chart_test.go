package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsy-labs/chartpilot/pkg/database"
	"github.com/tarsy-labs/chartpilot/pkg/models"
	"github.com/tarsy-labs/chartpilot/pkg/registry"
)

// fakeOrchestrator is a JobOrchestrator that just forwards to a real
// Registry, so handler tests exercise real job-lifecycle data without
// spinning up the full pipeline.
type fakeOrchestrator struct {
	reg       *registry.Registry
	cancelled map[string]bool
}

func newFakeOrchestrator(reg *registry.Registry) *fakeOrchestrator {
	return &fakeOrchestrator{reg: reg, cancelled: make(map[string]bool)}
}

func (f *fakeOrchestrator) Submit(_ context.Context, prompt models.Prompt) *models.Job {
	return f.reg.Create(prompt)
}

func (f *fakeOrchestrator) Cancel(jobID string) bool {
	if _, ok := f.reg.Get(jobID); !ok {
		return false
	}
	f.cancelled[jobID] = true
	return true
}

func newTestServer(t *testing.T) (*Server, *registry.Registry, *fakeOrchestrator) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	reg := registry.New(registry.DefaultTTL, clock)
	orch := newFakeOrchestrator(reg)
	s := NewServer(nil, fakeFileMetadataStore{}, nil, reg, orch, clock)
	return s, reg, orch
}

type fakeFileMetadataStore struct{}

func (fakeFileMetadataStore) ListFileMetadata(_ context.Context) ([]database.FileMetadata, error) {
	return nil, nil
}

func (fakeFileMetadataStore) DatabasePath() string { return "test:5432/test" }

func TestGenerateChartHandler_Accepted(t *testing.T) {
	s, _, _ := newTestServer(t)

	body, _ := json.Marshal(GenerateChartRequest{Prompt: "show revenue by region"})
	req := httptest.NewRequest(http.MethodPost, "/generate-chart", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	s.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp GenerateChartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.JobID)
	assert.Equal(t, "pending", resp.Status)
}

func TestGenerateChartHandler_RejectsEmptyPrompt(t *testing.T) {
	s, _, _ := newTestServer(t)

	body, _ := json.Marshal(GenerateChartRequest{Prompt: ""})
	req := httptest.NewRequest(http.MethodPost, "/generate-chart", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobStatusHandler_Found(t *testing.T) {
	s, reg, _ := newTestServer(t)
	job := reg.Create(models.Prompt{Text: "show revenue"})

	req := httptest.NewRequest(http.MethodGet, "/job-status/"+job.ID, nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp JobStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, job.ID, resp.JobID)
	assert.Equal(t, "pending", resp.Status)
}

func TestJobStatusHandler_NotFound(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/job-status/nonexistent", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListJobsHandler_TruncatesPrompt(t *testing.T) {
	s, reg, _ := newTestServer(t)
	reg.Create(models.Prompt{Text: "a very long prompt that definitely exceeds fifty characters in length"})

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp JobsListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Jobs, 1)
	assert.LessOrEqual(t, len(resp.Jobs[0].PromptPreview), 50)
}

func TestDeleteJobHandler_RejectsInFlight(t *testing.T) {
	s, reg, _ := newTestServer(t)
	job := reg.Create(models.Prompt{Text: "p"})

	req := httptest.NewRequest(http.MethodDelete, "/jobs/"+job.ID, nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteJobHandler_AllowsTerminal(t *testing.T) {
	s, reg, _ := newTestServer(t)
	job := reg.Create(models.Prompt{Text: "p"})
	_, err := reg.Update(job.ID, func(j *models.Job) { j.Status = models.JobCompleted })
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/jobs/"+job.ID, nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	_, ok := reg.Get(job.ID)
	assert.False(t, ok)
}

func TestDeleteJobHandler_NotFound(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodDelete, "/jobs/nonexistent", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelJobHandler_Found(t *testing.T) {
	s, reg, orch := newTestServer(t)
	job := reg.Create(models.Prompt{Text: "p"})

	req := httptest.NewRequest(http.MethodPost, "/jobs/"+job.ID+"/cancel", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, orch.cancelled[job.ID])
}

func TestHealthHandler(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, s.clock.Now().UTC(), resp.Timestamp.UTC())
}
