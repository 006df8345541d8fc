package models

import "time"

// SQLPlan is the deterministic, pre-execution shape of a query: a join
// graph plus the clauses the builder will render into one SELECT. Never
// shown to the LLM.
type SQLPlan struct {
	SelectList  []string `json:"select_list"`
	FromGraph   string   `json:"from_graph"` // rendered FROM/JOIN clause
	GroupBy     []string `json:"group_by,omitempty"`
	OrderBy     string   `json:"order_by,omitempty"`
	Limit       int      `json:"limit"`
	WherePreds  []string `json:"where_predicates,omitempty"`
}

// Row is one result row, column name -> raw value as returned by the store.
type Row map[string]any

// ExecutionResult is the raw, untyped output of running one statement.
type ExecutionResult struct {
	Rows        []Row         `json:"rows"`
	ColumnOrder []string      `json:"column_order"`
	Elapsed     time.Duration `json:"elapsed"`
	RowCount    int           `json:"row_count"`
	OK          bool          `json:"ok"`
	Error       string        `json:"error,omitempty"`
	SQL         string        `json:"sql"`
}

// ChartConfig describes how the normalized dataset should be charted.
type ChartConfig struct {
	ChartType    string `json:"chart_type"`
	XAxis        string `json:"x_axis"`
	YAxis        string `json:"y_axis"`
	Title        string `json:"title"`
	LimitApplied int    `json:"limit_applied"`
}

// NumericStats summarizes one numeric column.
type NumericStats struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Mean      float64 `json:"mean"`
	NullCount int     `json:"null_count"`
}

// CategoricalStats summarizes one categorical column's top values.
type CategoricalStats struct {
	TopValues []ValueCount `json:"top_values"`
}

// ValueCount pairs a categorical value with its occurrence count.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// DatasetSummary is the statistical summary attached to a NormalizedDataset.
type DatasetSummary struct {
	RowCount       int                         `json:"row_count"`
	ColCount       int                         `json:"col_count"`
	NumericStats   map[string]NumericStats     `json:"numeric_stats"`
	CategoricalStats map[string]CategoricalStats `json:"categorical_stats"`
	HasTimeAxis    bool                        `json:"has_time_axis"`
}

// NormalizedDataset is typed, chart-ready data plus config and summary.
type NormalizedDataset struct {
	Rows        []Row          `json:"rows"`
	ColumnOrder []string       `json:"column_order"`
	ChartConfig ChartConfig    `json:"chart_config"`
	Summary     DatasetSummary `json:"summary"`

	// CacheHit is true when this dataset was served from the result cache
	// rather than freshly executed.
	CacheHit bool `json:"cache_hit"`
}
