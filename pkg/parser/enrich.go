package parser

import (
	"sort"
	"time"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

// chartHintRule picks a chart_type_hint from (intent, has-time-axis,
// cardinality) via a small rule table.
type chartHintRule struct {
	intent      models.Intent
	hasTimeAxis bool
	hint        string
}

var chartHintRules = []chartHintRule{
	{models.IntentTrend, true, "line"},
	{models.IntentTrend, false, "bar"},
	{models.IntentCompare, false, "bar"},
	{models.IntentDistribution, false, "pie"},
	{models.IntentCorrelation, false, "scatter"},
	{models.IntentShow, true, "line"},
	{models.IntentShow, false, "bar"},
}

func chartTypeHint(intent models.Intent, hasTimeAxis bool) string {
	for _, rule := range chartHintRules {
		if rule.intent == intent && rule.hasTimeAxis == hasTimeAxis {
			return rule.hint
		}
	}
	return "bar"
}

// Enrich turns the validated cleaned prompt, field mappings and relevant
// schema into a ResolvedIntent.
func Enrich(cleaned models.CleanedPrompt, mapping MappingResult, relevant []*models.TableSchema, catalog *models.Catalog, now time.Time) models.ResolvedIntent {
	metric, metricTable := bestNumericMapping(mapping.Mappings, catalog)
	dimension, dimensionTable := bestDimensionMapping(mapping.Mappings, catalog, metric)

	hasTimeAxis := false
	var dateColumn string
	if dimensionTable != "" {
		if table, ok := catalog.Table(dimensionTable); ok {
			dateColumn = dateColumnFor(table)
			hasTimeAxis = dateColumn != ""
		}
	}
	if dateColumn == "" && metricTable != "" {
		if table, ok := catalog.Table(metricTable); ok {
			dateColumn = dateColumnFor(table)
		}
	}

	intentType := resolveIntentType(cleaned.Primary)

	var filters []models.Filter
	if f, ok := ExtractTemporalFilter(cleaned.Cleaned, dateColumn, now); ok {
		filters = append(filters, f)
	}

	return models.ResolvedIntent{
		IntentType:      intentType,
		Metric:          metric,
		Dimension:       dimension,
		ChartTypeHint:   chartTypeHint(cleaned.Primary, hasTimeAxis),
		Filters:         filters,
		SchemaValidated: metric != "" && metricTable != "",
		MetricTable:     metricTable,
		DimensionTable:  dimensionTable,
	}
}

func resolveIntentType(primary models.Intent) models.ResolvedIntentType {
	switch primary {
	case models.IntentTrend:
		return models.ResolvedTrend
	case models.IntentCompare, models.IntentDistribution:
		return models.ResolvedComparison
	default:
		return models.ResolvedSummary
	}
}

// bestNumericMapping picks the highest-confidence mapping whose column is
// numeric: metric = best-scoring numeric field.
func bestNumericMapping(mappings []models.FieldMapping, catalog *models.Catalog) (metric, table string) {
	ranked := rankedCopy(mappings)
	for _, m := range ranked {
		if m.Column == "" || m.Column == "*" || catalog == nil {
			continue
		}
		t, ok := catalog.Table(m.Table)
		if !ok {
			continue
		}
		col, ok := t.Column(m.Column)
		if ok && models.IsNumericType(col.DeclaredType) {
			return m.UserTerm, m.Table
		}
	}
	return "", ""
}

// bestDimensionMapping picks the highest-confidence mapping onto a
// non-numeric/time column that isn't the metric term itself: dimension =
// best-scoring non-numeric/time field.
func bestDimensionMapping(mappings []models.FieldMapping, catalog *models.Catalog, metricTerm string) (dimension, table string) {
	ranked := rankedCopy(mappings)
	for _, m := range ranked {
		if m.UserTerm == metricTerm || m.Column == "" || m.Column == "*" || catalog == nil {
			continue
		}
		t, ok := catalog.Table(m.Table)
		if !ok {
			continue
		}
		col, ok := t.Column(m.Column)
		if ok && !models.IsNumericType(col.DeclaredType) {
			return m.UserTerm, m.Table
		}
	}
	return "", ""
}

func rankedCopy(mappings []models.FieldMapping) []models.FieldMapping {
	out := make([]models.FieldMapping, len(mappings))
	copy(out, mappings)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out
}
