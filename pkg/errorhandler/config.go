// Package errorhandler implements the fixed-stage error state machine
// (validate, idempotency check, ingress, classify, analyze, decide recovery,
// execute automated actions, message, route).
package errorhandler

import (
	"time"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

// MaxRetries and RetryDelays are the query-error retry budget.
const MaxRetries = 3

// RetryDelays[n] is the backoff before retry attempt n+1.
var RetryDelays = []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

// IdempotencyTTL is the window in which a repeated (query_id, error_code)
// pair returns the prior ErrorRecord unchanged.
const IdempotencyTTL = 5 * time.Minute

// DatasetCacheTTL is the TTL for the query-error fallback cache, distinct
// from the query engine's intent-keyed ResultCache.
const DatasetCacheTTL = 1 * time.Hour

// errorPatterns scores a raw message/code against a fixed keyword
// dictionary per kind.
var errorPatterns = map[models.ErrorKind][]string{
	models.ErrorInput: {
		"ambiguous", "unclear", "missing parameter", "invalid input", "unspecified",
	},
	models.ErrorSchema: {
		"field not found", "column missing", "schema mismatch", "unknown field", "attribute error",
	},
	models.ErrorQuery: {
		"timeout", "query failed", "database error", "aggregation error", "execution failed",
	},
	models.ErrorChart: {
		"incompatible chart", "visualization error", "chart type mismatch", "rendering failed",
	},
	models.ErrorSystem: {
		"service unavailable", "connection failed", "system outage", "network error",
	},
	models.ErrorValidation: {
		"validation failed", "constraint violation", "invalid format", "type mismatch",
	},
}

// fieldSynonyms maps a canonical business term to its known synonyms, used
// by the schema-error recovery strategy.
var fieldSynonyms = map[string][]string{
	"revenue":  {"sales", "income", "earnings", "total_sales", "net_revenue"},
	"customer": {"client", "user", "account", "customer_id", "client_id"},
	"product":  {"item", "sku", "merchandise", "product_id", "product_code"},
	"date":     {"time", "timestamp", "period", "created_at", "order_date"},
	"region":   {"area", "location", "zone", "territory", "geography"},
	"quantity": {"qty", "amount", "count", "units", "volume"},
	"price":    {"cost", "amount", "value", "unit_price", "price_per_unit"},
}

// chartKey identifies a (chart_type, dimension_kind) pair in the
// compatibility matrix.
type chartKey struct {
	chartType string
	dimension string
}

// chartCompatibility is the fixed chart/dimension compatibility matrix
// consulted by the chart-error recovery strategy. Deliberately sparse:
// unlisted pairs fall through to defaultChartAlternatives.
var chartCompatibility = map[chartKey][]string{
	{"pie", "date"}:     {"line", "bar", "area"},
	{"pie", "time"}:     {"line", "bar", "area"},
	{"line", "category"}: {"bar", "pie", "column"},
	{"scatter", "single"}: {"bar", "line"},
}

// defaultChartAlternatives is returned when the compatibility matrix has no
// entry for the observed (chart_type, dimension) pair.
var defaultChartAlternatives = []string{"bar", "line", "table"}

// messageTemplates renders the final user-facing string per error kind.
var messageTemplates = map[models.ErrorKind]string{
	models.ErrorInput:      "I need more details. %s. %s",
	models.ErrorSchema:     "Field not found. %s. %s",
	models.ErrorQuery:      "Query issue: %s. %s",
	models.ErrorChart:      "%s. %s",
	models.ErrorSystem:     "Technical issue: %s. %s",
	models.ErrorValidation: "Invalid data: %s. %s",
}

const defaultMessageTemplate = "Error: %s. %s"
