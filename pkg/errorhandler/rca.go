package errorhandler

import (
	"fmt"
	"strings"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

// Analysis is the per-kind root-cause-analysis output.
type Analysis struct {
	RootCause         string
	Details           string
	Severity          models.Severity
	CanRetry          bool
	NeedsCacheCheck   bool
	NeedsSynonymCheck bool
}

// Analyze produces root-cause context for kind from the raw payload data.
func Analyze(kind models.ErrorKind, data models.ErrorPayloadData) Analysis {
	switch kind {
	case models.ErrorInput:
		return analyzeInputError(data)
	case models.ErrorSchema:
		return analyzeSchemaError(data)
	case models.ErrorQuery:
		return analyzeQueryError(data)
	case models.ErrorChart:
		return analyzeChartError(data)
	case models.ErrorSystem:
		return analyzeSystemError(data)
	case models.ErrorValidation:
		return analyzeValidationError(data)
	default:
		return Analysis{RootCause: "Unknown error occurred", Details: data.Message, Severity: models.SeverityMedium}
	}
}

func missingParams(data models.ErrorPayloadData) []string {
	raw, ok := data.Context["missing_params"]
	if !ok {
		return nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, v := range items {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func contextString(data models.ErrorPayloadData, key string) string {
	raw, ok := data.Context[key]
	if !ok {
		return ""
	}
	s, _ := raw.(string)
	return s
}

func contextStringSlice(data models.ErrorPayloadData, key string) []string {
	raw, ok := data.Context[key]
	if !ok {
		return nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, v := range items {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func analyzeInputError(data models.ErrorPayloadData) Analysis {
	missing := missingParams(data)
	details := "Missing parameters: unknown"
	if len(missing) > 0 {
		details = "Missing parameters: " + strings.Join(missing, ", ")
	}
	return Analysis{
		RootCause: "User input lacks required specificity",
		Details:   details,
		Severity:  models.SeverityLow,
	}
}

func analyzeSchemaError(data models.ErrorPayloadData) Analysis {
	field := contextString(data, "field")
	if field == "" {
		field = "unknown"
	}
	available := contextStringSlice(data, "available_fields")
	details := "Available fields: none"
	if len(available) > 0 {
		details = "Available fields: " + strings.Join(firstN(available, 5), ", ")
	}
	return Analysis{
		RootCause:         fmt.Sprintf("Field '%s' not found in schema", field),
		Details:           details,
		Severity:          models.SeverityMedium,
		NeedsSynonymCheck: true,
	}
}

func analyzeQueryError(data models.ErrorPayloadData) Analysis {
	msg := strings.ToLower(data.Message)
	switch {
	case strings.Contains(msg, "timeout"):
		queryTime := contextString(data, "query_time")
		if queryTime == "" {
			queryTime = "unknown"
		}
		return Analysis{
			RootCause:       "Query execution timeout - dataset too large",
			Details:         fmt.Sprintf("Query ran for %s seconds", queryTime),
			Severity:        models.SeverityMedium,
			NeedsCacheCheck: true,
			CanRetry:        true,
		}
	case strings.Contains(msg, "connection"):
		return Analysis{
			RootCause: "Database connection lost",
			Details:   "Transient network issue",
			Severity:  models.SeverityHigh,
			CanRetry:  true,
		}
	default:
		return Analysis{
			RootCause: "Query execution failed",
			Details:   data.Message,
			Severity:  models.SeverityHigh,
			CanRetry:  false,
		}
	}
}

func analyzeChartError(data models.ErrorPayloadData) Analysis {
	chart := contextString(data, "chart")
	if chart == "" {
		chart = "unknown"
	}
	dimension := contextString(data, "dimension")
	if dimension == "" {
		dimension = "unknown"
	}
	return Analysis{
		RootCause: fmt.Sprintf("Chart type '%s' incompatible with '%s' dimension", chart, dimension),
		Details:   fmt.Sprintf("Chart: %s, Data dimension: %s", chart, dimension),
		Severity:  models.SeverityLow,
	}
}

func analyzeSystemError(data models.ErrorPayloadData) Analysis {
	details := data.Message
	if details == "" {
		details = "Unknown system error"
	}
	return Analysis{
		RootCause:       "System or service unavailable",
		Details:         details,
		Severity:        models.SeverityCritical,
		NeedsCacheCheck: true,
	}
}

func analyzeValidationError(data models.ErrorPayloadData) Analysis {
	details := data.Message
	if details == "" {
		details = "Validation constraints not met"
	}
	return Analysis{
		RootCause: "Data validation failed",
		Details:   details,
		Severity:  models.SeverityMedium,
	}
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
