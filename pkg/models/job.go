package models

import "time"

// JobStatus is the lifecycle state of a Job. Transitions are monotonic:
// a prefix of pending -> processing -> {completed|failed|cancelled}.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
	JobCancelled  JobStatus = "cancelled"
)

// Terminal reports whether the status accepts no further transitions.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobCompleted, JobFailed, JobCancelled:
		return true
	default:
		return false
	}
}

// JobResult carries the artifact-shaped outcome of a completed job.
type JobResult struct {
	ArtifactCode  string `json:"artifact_code"`
	ComponentName string `json:"component_name"`
	ChartType     string `json:"chart_type"`
	CacheHit      bool   `json:"cache_hit"`
}

// Job is the unit the orchestrator drives and the registry tracks.
type Job struct {
	ID          string     `json:"id"`
	SubmittedAt time.Time  `json:"submitted_at"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	Prompt      Prompt     `json:"prompt"`
	Result      *JobResult `json:"result,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Suggestions []string   `json:"suggestions,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Clone returns a deep-enough copy safe to hand to a caller outside the
// registry's lock.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	cp := *j
	if j.Result != nil {
		r := *j.Result
		cp.Result = &r
	}
	if j.Suggestions != nil {
		cp.Suggestions = append([]string(nil), j.Suggestions...)
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}

// Summary is the truncated view returned by list endpoints: prompts are
// truncated to 50 characters.
type Summary struct {
	ID          string    `json:"id"`
	Status      JobStatus `json:"status"`
	Progress    int       `json:"progress"`
	PromptPreview string  `json:"prompt_preview"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ToSummary truncates Prompt.Text to 50 characters.
func (j *Job) ToSummary() Summary {
	text := j.Prompt.Text
	if len(text) > 50 {
		text = text[:50]
	}
	return Summary{
		ID:            j.ID,
		Status:        j.Status,
		Progress:      j.Progress,
		PromptPreview: text,
		SubmittedAt:   j.SubmittedAt,
	}
}
