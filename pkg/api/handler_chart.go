package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	echo "github.com/labstack/echo/v5"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

// generateChartHandler handles POST /generate-chart: it registers a new
// job and hands it to the orchestrator, returning immediately with the
// pending job's id.
func (s *Server) generateChartHandler(c *echo.Context) error {
	var req GenerateChartRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return writeError(c, http.StatusBadRequest, "malformed request body")
	}
	if req.Prompt == "" {
		return writeError(c, http.StatusBadRequest, "prompt is required")
	}

	prompt := models.Prompt{
		Text:        req.Prompt,
		SubmittedAt: s.clock.Now(),
	}
	if req.ContainerID != nil {
		prompt.SessionID = strconv.Itoa(*req.ContainerID)
	}

	job := s.orchestrator.Submit(c.Request().Context(), prompt)

	return c.JSON(http.StatusAccepted, &GenerateChartResponse{
		JobID:   job.ID,
		Status:  string(job.Status),
		Message: "chart generation started",
	})
}

// jobStatusHandler handles GET /job-status/{job_id}.
func (s *Server) jobStatusHandler(c *echo.Context) error {
	jobID := c.Param("job_id")

	job, ok := s.registry.Get(jobID)
	if !ok {
		return writeError(c, http.StatusNotFound, "job not found")
	}

	resp := &JobStatusResponse{
		JobID:       job.ID,
		Status:      string(job.Status),
		Progress:    job.Progress,
		Suggestions: job.Suggestions,
		CreatedAt:   job.SubmittedAt,
		CompletedAt: job.CompletedAt,
	}
	if job.Result != nil {
		resp.Result = job.Result.ArtifactCode
		resp.ComponentName = job.Result.ComponentName
		resp.ChartType = job.Result.ChartType
	}
	resp.ErrorMessage = job.ErrorMessage

	return c.JSON(http.StatusOK, resp)
}

// listJobsHandler handles GET /jobs: compact listing, prompts truncated
// to 50 characters by Registry.List itself.
func (s *Server) listJobsHandler(c *echo.Context) error {
	summaries := s.registry.List()

	resp := &JobsListResponse{Jobs: make([]JobSummaryResponse, 0, len(summaries))}
	for _, sum := range summaries {
		resp.Jobs = append(resp.Jobs, JobSummaryResponse{
			JobID:         sum.ID,
			Status:        string(sum.Status),
			Progress:      sum.Progress,
			PromptPreview: sum.PromptPreview,
			SubmittedAt:   sum.SubmittedAt,
		})
	}

	return c.JSON(http.StatusOK, resp)
}

// deleteJobHandler handles DELETE /jobs/{job_id}: 200 if terminal, 400 if
// in-flight, 404 if unknown.
func (s *Server) deleteJobHandler(c *echo.Context) error {
	jobID := c.Param("job_id")

	if err := s.registry.Delete(jobID); err != nil {
		return writeRegistryError(c, err)
	}

	return c.JSON(http.StatusOK, &DeleteJobResponse{
		JobID:   jobID,
		Message: "job deleted",
	})
}

// cancelJobHandler handles POST /jobs/{job_id}/cancel, exposing the
// pipeline's cooperative cancellation (a job may be cancelled while
// pending or processing) through the HTTP surface.
func (s *Server) cancelJobHandler(c *echo.Context) error {
	jobID := c.Param("job_id")

	if !s.orchestrator.Cancel(jobID) {
		return writeError(c, http.StatusNotFound, "job not found or already finished")
	}

	return c.JSON(http.StatusOK, &DeleteJobResponse{
		JobID:   jobID,
		Message: "cancellation requested",
	})
}
