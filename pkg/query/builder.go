package query

import (
	"fmt"
	"strings"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

// Default row limits per result intent.
const (
	limitTrend      = 50
	limitComparison = 20
	limitDefault    = 100
)

// metricExpr is the fixed metric-name -> SQL-expression translation table.
// Unknown metrics fall back to SUM(<metric>).
var metricExpr = map[string]string{
	"revenue":   "SUM(total_amount)",
	"sales":     "SUM(total_amount)",
	"orders":    "COUNT(*)",
	"customers": "COUNT(DISTINCT user_id)",
	"quantity":  "SUM(quantity)",
	"avg_order": "AVG(total_amount)",
}

// dimensionColumn names the date column dimension expressions key off of.
// The builder doesn't know the physical column a priori; callers resolve it
// via ResolvedIntent.Dimension -> Catalog before invoking BuildDimensionExpr
// with the concrete column, except for the well-known month/year/quarter
// buckets which always key off a "date"-like column passed in explicitly.
const defaultDateColumn = "sale_date"

// BuildSQLPlan derives a deterministic SQLPlan from a ResolvedIntent and a
// join-graph string already chosen by the caller (dimension/metric table
// resolution lives in pkg/parser; the builder only renders SQL).
func BuildSQLPlan(intent models.ResolvedIntent, fromGraph string) models.SQLPlan {
	metricExpr, metricAlias := renderMetricExpr(intent.Metric)

	plan := models.SQLPlan{
		FromGraph: fromGraph,
	}

	if intent.Dimension == "" {
		plan.SelectList = []string{metricExpr + " AS value"}
		plan.Limit = limitForIntent(intent.IntentType, false)
		plan.WherePreds = renderFilters(intent.Filters)
		return plan
	}

	dimExpr, dimAlias := renderDimensionExpr(intent.Dimension)
	plan.SelectList = []string{
		dimExpr + " AS " + dimAlias,
		metricExpr + " AS " + metricAlias,
	}
	plan.GroupBy = []string{dimExpr}
	plan.WherePreds = renderFilters(intent.Filters)
	plan.Limit = limitForIntent(intent.IntentType, true)

	switch intent.IntentType {
	case models.ResolvedTrend:
		plan.OrderBy = dimExpr + " ASC"
	case models.ResolvedComparison:
		plan.OrderBy = metricAlias + " DESC"
	}

	return plan
}

func limitForIntent(t models.ResolvedIntentType, hasDimension bool) int {
	switch t {
	case models.ResolvedTrend:
		return limitTrend
	case models.ResolvedComparison:
		return limitComparison
	default:
		return limitDefault
	}
}

func renderMetricExpr(metric string) (expr string, alias string) {
	key := strings.ToLower(strings.TrimSpace(metric))
	if e, ok := metricExpr[key]; ok {
		return e, sanitizeAlias(metric)
	}
	return fmt.Sprintf("SUM(%s)", metric), sanitizeAlias(metric)
}

// renderDimensionExpr renders the month/year/quarter bucketing expressions
// against Postgres (the introspection target per pkg/catalog), using
// to_char/EXTRACT for the bucketing, since the engine runs these statements
// against the same Postgres instance pkg/catalog introspects.
func renderDimensionExpr(dimension string) (expr string, alias string) {
	switch strings.ToLower(strings.TrimSpace(dimension)) {
	case "month":
		return fmt.Sprintf("to_char(%s, 'YYYY-MM')", defaultDateColumn), "month"
	case "year":
		return fmt.Sprintf("to_char(%s, 'YYYY')", defaultDateColumn), "year"
	case "quarter":
		return quarterCaseExpr(defaultDateColumn), "quarter"
	default:
		return dimension, sanitizeAlias(dimension)
	}
}

// quarterCaseExpr renders a CASE expression bucketing a month number into a
// calendar quarter label.
func quarterCaseExpr(dateColumn string) string {
	monthExpr := fmt.Sprintf("EXTRACT(MONTH FROM %s)", dateColumn)
	return fmt.Sprintf(
		"CASE WHEN %s <= 3 THEN 'Q1' WHEN %s <= 6 THEN 'Q2' WHEN %s <= 9 THEN 'Q3' ELSE 'Q4' END",
		monthExpr, monthExpr, monthExpr)
}

// sanitizeAlias produces a safe SQL identifier alias from a free-form name.
func sanitizeAlias(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "value"
	}
	return out
}

// renderFilters turns ResolvedIntent.Filters into rendered predicates.
// Equality predicates only; strings are single-quoted with embedded
// quotes doubled.
func renderFilters(filters []models.Filter) []string {
	if len(filters) == 0 {
		return nil
	}
	preds := make([]string, 0, len(filters))
	for _, f := range filters {
		preds = append(preds, fmt.Sprintf("%s %s %s", f.Column, f.Op, quoteLiteral(f.Literal)))
	}
	return preds
}

func quoteLiteral(lit string) string {
	return "'" + strings.ReplaceAll(lit, "'", "''") + "'"
}

// Render turns an SQLPlan into a single executable SELECT statement.
func Render(plan models.SQLPlan) string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(plan.SelectList, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(plan.FromGraph)

	if len(plan.WherePreds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(plan.WherePreds, " AND "))
	}
	if len(plan.GroupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(plan.GroupBy, ", "))
	}
	if plan.OrderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(plan.OrderBy)
	}
	if plan.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", plan.Limit))
	}
	return sb.String()
}
