package models

// MappingKind classifies how a FieldMapping was derived.
type MappingKind string

const (
	MappingExact               MappingKind = "exact"
	MappingFuzzy                MappingKind = "fuzzy"
	MappingSemantic             MappingKind = "semantic"
	MappingRelationshipInferred MappingKind = "relationship-inferred"
)

// FieldMapping is one user_term -> {table, column} correspondence.
// Produced per prompt; never persisted.
type FieldMapping struct {
	UserTerm   string      `json:"user_term"`
	Table      string      `json:"table"`
	Column     string      `json:"column"` // "*" for a whole-table match
	Confidence float64     `json:"confidence"`
	Kind       MappingKind `json:"kind"`
}

// FullPath returns "table.column" (or just "table" for whole-table matches).
func (m FieldMapping) FullPath() string {
	if m.Column == "" || m.Column == "*" {
		return m.Table
	}
	return m.Table + "." + m.Column
}

// ResolvedIntentType is the structured intent category handed to the query engine.
type ResolvedIntentType string

const (
	ResolvedSummary    ResolvedIntentType = "summary"
	ResolvedComparison ResolvedIntentType = "comparison"
	ResolvedTrend      ResolvedIntentType = "trend"
)

// FilterOp is a comparison operator for a ResolvedIntent filter.
type FilterOp string

const (
	OpEqual        FilterOp = "="
	OpGreaterEqual FilterOp = ">="
	OpLessEqual    FilterOp = "<="
)

// Filter is one equality or range predicate. The builder only ever emits
// equality predicates; ranges are used for resolved time-window filters
// produced during enrichment (see pkg/parser).
type Filter struct {
	Column  string   `json:"column"`
	Op      FilterOp `json:"op"`
	Literal string   `json:"literal"`
}

// ResolvedIntent is the contract handed from intent resolution to the query engine.
type ResolvedIntent struct {
	IntentType      ResolvedIntentType `json:"intent_type"`
	Metric          string             `json:"metric"`
	Dimension       string             `json:"dimension,omitempty"`
	ChartTypeHint   string             `json:"chart_type_hint"`
	Filters         []Filter           `json:"filters,omitempty"`
	SchemaValidated bool               `json:"schema_validated"`

	// MetricTable/DimensionTable record which Catalog table each resolved
	// field lives in, so the SQL builder can construct the join graph
	// without re-running field mapping.
	MetricTable    string `json:"metric_table"`
	DimensionTable string `json:"dimension_table,omitempty"`
}
