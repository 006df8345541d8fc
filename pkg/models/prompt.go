// Package models holds the data shapes shared between pipeline components:
// the immutable Prompt a job starts from, the structured intermediate
// results each agent hands to the next, and the terminal Job/ErrorRecord
// state the HTTP surface exposes.
package models

import "time"

// Prompt is the immutable input to a job. It is never mutated after
// creation; cleaning and enrichment always produce new values.
type Prompt struct {
	Text          string    `json:"text"`
	SessionID     string    `json:"session_id,omitempty"`
	PriorQueries  []string  `json:"prior_queries,omitempty"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// Intent is the primary intent tag assigned during cleaning/validation.
type Intent string

const (
	IntentShow         Intent = "show"
	IntentCompare       Intent = "compare"
	IntentTrend         Intent = "trend"
	IntentDistribution  Intent = "distribution"
	IntentCorrelation   Intent = "correlation"
	IntentOther         Intent = "other"
	IntentInvalid       Intent = "invalid"
)

// CleanedPrompt is the output of text normalization.
type CleanedPrompt struct {
	Original   string  `json:"original"`
	Cleaned    string  `json:"cleaned"`
	Confidence float64 `json:"confidence"`
	Primary    Intent  `json:"primary_intent"`
}
