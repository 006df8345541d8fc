package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

// Normalize turns a raw ExecutionResult into a typed, chart-ready
// NormalizedDataset.
func Normalize(result models.ExecutionResult, chartTypeHint string) models.NormalizedDataset {
	numericCols, categoricalCols, typedRows := coerceRows(result.Rows, result.ColumnOrder)

	cfg := buildChartConfig(chartTypeHint, result.ColumnOrder, numericCols, categoricalCols)
	summary := buildSummary(typedRows, result.ColumnOrder, numericCols, categoricalCols)

	return models.NormalizedDataset{
		Rows:        typedRows,
		ColumnOrder: result.ColumnOrder,
		ChartConfig: cfg,
		Summary:     summary,
	}
}

// coerceRows produces typed rows (numeric strings parsed, nulls defaulted)
// and classifies each column as numeric or categorical by majority vote
// across non-null values.
func coerceRows(rows []models.Row, columns []string) (numericCols, categoricalCols []string, out []models.Row) {
	isNumeric := make(map[string]bool, len(columns))
	for _, col := range columns {
		numCount, total := 0, 0
		for _, row := range rows {
			v, ok := row[col]
			if !ok || v == nil {
				continue
			}
			total++
			if _, ok := asFloat(v); ok {
				numCount++
			}
		}
		isNumeric[col] = total > 0 && numCount == total
	}

	for _, col := range columns {
		if isNumeric[col] {
			numericCols = append(numericCols, col)
		} else {
			categoricalCols = append(categoricalCols, col)
		}
	}

	out = make([]models.Row, len(rows))
	for i, row := range rows {
		typed := make(models.Row, len(columns))
		for _, col := range columns {
			v := row[col]
			if isNumeric[col] {
				if v == nil {
					typed[col] = float64(0)
					continue
				}
				f, ok := asFloat(v)
				if !ok {
					f = 0
				}
				typed[col] = f
			} else {
				if v == nil {
					typed[col] = ""
					continue
				}
				typed[col] = toDisplayString(v)
			}
		}
		out[i] = typed
	}
	return numericCols, categoricalCols, out
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func toDisplayString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func buildChartConfig(hint string, columns, numericCols, categoricalCols []string) models.ChartConfig {
	cfg := models.ChartConfig{ChartType: hint}

	if len(categoricalCols) > 0 {
		cfg.XAxis = categoricalCols[0]
	} else if len(columns) > 0 {
		cfg.XAxis = columns[0]
	}
	if len(numericCols) > 0 {
		cfg.YAxis = numericCols[0]
	}

	if cfg.ChartType == "" {
		switch {
		case len(numericCols) == 0:
			cfg.ChartType = "table"
		case len(numericCols) >= 2 && len(categoricalCols) == 0:
			cfg.ChartType = "scatter"
		default:
			cfg.ChartType = "bar"
		}
	}
	return cfg
}

func buildSummary(rows []models.Row, columns, numericCols, categoricalCols []string) models.DatasetSummary {
	summary := models.DatasetSummary{
		RowCount:         len(rows),
		ColCount:         len(columns),
		NumericStats:     map[string]models.NumericStats{},
		CategoricalStats: map[string]models.CategoricalStats{},
	}

	for _, col := range numericCols {
		summary.NumericStats[col] = numericStatsFor(rows, col)
	}

	// Top-3 values per first three categorical columns.
	limit := 3
	if len(categoricalCols) < limit {
		limit = len(categoricalCols)
	}
	for _, col := range categoricalCols[:limit] {
		summary.CategoricalStats[col] = categoricalStatsFor(rows, col)
	}

	for _, col := range columns {
		lower := strings.ToLower(col)
		if strings.Contains(lower, "date") || strings.Contains(lower, "time") {
			summary.HasTimeAxis = true
			break
		}
	}

	return summary
}

func numericStatsFor(rows []models.Row, col string) models.NumericStats {
	var stats models.NumericStats
	first := true
	for _, row := range rows {
		v, ok := row[col].(float64)
		if !ok {
			stats.NullCount++
			continue
		}
		if first {
			stats.Min, stats.Max = v, v
			first = false
		} else {
			if v < stats.Min {
				stats.Min = v
			}
			if v > stats.Max {
				stats.Max = v
			}
		}
		stats.Mean += v
	}
	if n := len(rows) - stats.NullCount; n > 0 {
		stats.Mean /= float64(n)
	}
	return stats
}

func categoricalStatsFor(rows []models.Row, col string) models.CategoricalStats {
	counts := map[string]int{}
	for _, row := range rows {
		s, _ := row[col].(string)
		counts[s]++
	}

	values := make([]models.ValueCount, 0, len(counts))
	for v, c := range counts {
		values = append(values, models.ValueCount{Value: v, Count: c})
	}
	sort.Slice(values, func(i, j int) bool {
		if values[i].Count != values[j].Count {
			return values[i].Count > values[j].Count
		}
		return values[i].Value < values[j].Value
	})
	if len(values) > 3 {
		values = values[:3]
	}
	return models.CategoricalStats{TopValues: values}
}
