package models

import "time"

// ErrorKind is the canonical classification the error handler assigns an error.
type ErrorKind string

const (
	ErrorInput      ErrorKind = "input"
	ErrorSchema     ErrorKind = "schema"
	ErrorQuery      ErrorKind = "query"
	ErrorChart      ErrorKind = "chart"
	ErrorSystem     ErrorKind = "system"
	ErrorValidation ErrorKind = "validation"
)

// Severity is the error handler's severity rating.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// NextAction tells the orchestrator what to do with a Job after the error handler decides.
type NextAction string

const (
	ActionResume    NextAction = "resume"
	ActionAwaitUser NextAction = "await_user"
	ActionEscalate  NextAction = "escalate"
)

// ErrorPayload is the shape every component reports to the error handler.
type ErrorPayload struct {
	AgentID   string        `json:"agent_id"`
	Timestamp time.Time     `json:"timestamp"`
	Status    string        `json:"status"`
	Data      ErrorPayloadData `json:"data"`
}

// ErrorPayloadData is the nested "data" object of an ErrorPayload.
type ErrorPayloadData struct {
	ErrorType string         `json:"error_type,omitempty"`
	ErrorCode string         `json:"error_code"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	QueryID   string         `json:"query_id"`
}

// Recovery is the recovery directive the error handler produces.
type Recovery struct {
	Strategy         string     `json:"strategy"`
	AutomatedActions []string   `json:"automated_actions"`
	Suggestions      []string   `json:"suggestions"`
	NextAction       NextAction `json:"next_action"`

	// CachedDataset/FieldMapping carry the substitution payload for
	// `resume`-with-substitution directives.
	CachedDataset *NormalizedDataset `json:"-"`
	FieldMapping  map[string]string  `json:"field_mapping,omitempty"`
}

// ErrorRecord is the full, stored outcome of running an ErrorPayload
// through the error handler's state machine.
type ErrorRecord struct {
	ErrorID         string    `json:"error_id"`
	SourceComponent string    `json:"source_component"`
	RawPayload      ErrorPayload `json:"raw_payload"`
	Kind            ErrorKind `json:"kind"`
	Severity        Severity  `json:"severity"`
	RootCause       string    `json:"root_cause"`
	Confidence      float64   `json:"confidence"`
	Recovery        Recovery  `json:"recovery"`
	UserMessage     string    `json:"user_message"`
	IdempotencyKey  string    `json:"idempotency_key"`
	CreatedAt       time.Time `json:"created_at"`
}
