package api

import "time"

// GenerateChartResponse is returned 202 Accepted by POST /generate-chart.
type GenerateChartResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// JobStatusResponse is returned by GET /job-status/{job_id}.
type JobStatusResponse struct {
	JobID         string     `json:"job_id"`
	Status        string     `json:"status"`
	Progress      int        `json:"progress"`
	Result        string     `json:"result,omitempty"`
	ComponentName string     `json:"component_name,omitempty"`
	ChartType     string     `json:"chart_type,omitempty"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	Suggestions   []string   `json:"suggestions,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// JobSummaryResponse is one entry of the compact listing returned by
// GET /jobs (prompts truncated to 50 characters).
type JobSummaryResponse struct {
	JobID         string    `json:"job_id"`
	Status        string    `json:"status"`
	Progress      int       `json:"progress"`
	PromptPreview string    `json:"prompt_preview"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// JobsListResponse is returned by GET /jobs.
type JobsListResponse struct {
	Jobs []JobSummaryResponse `json:"jobs"`
}

// DeleteJobResponse is returned 200 OK by DELETE /jobs/{job_id}.
type DeleteJobResponse struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

// ColumnStatus describes one column of a table in GET /database-status.
type ColumnStatus struct {
	Name         string `json:"name"`
	DeclaredType string `json:"declared_type"`
	Nullable     bool   `json:"nullable"`
	PrimaryKey   bool   `json:"primary_key"`
}

// TableStatus describes one table in GET /database-status.
type TableStatus struct {
	TableName   string         `json:"table_name"`
	FileName    string         `json:"file_name,omitempty"`
	RowCount    int            `json:"row_count"`
	ColumnCount int            `json:"column_count"`
	Columns     []ColumnStatus `json:"columns"`
	LoadedAt    time.Time      `json:"loaded_at"`
}

// DatabaseStatusResponse is returned by GET /database-status.
type DatabaseStatusResponse struct {
	TotalTables  int           `json:"total_tables"`
	Tables       []TableStatus `json:"tables"`
	DatabasePath string        `json:"database_path"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the shared error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
