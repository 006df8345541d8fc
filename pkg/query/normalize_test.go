package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

func TestNormalize_CoercesNumericStrings(t *testing.T) {
	result := models.ExecutionResult{
		ColumnOrder: []string{"month", "revenue"},
		Rows: []models.Row{
			{"month": "2024-01", "revenue": "1200.50"},
			{"month": "2024-02", "revenue": "900"},
		},
		OK: true,
	}

	dataset := Normalize(result, "")

	require.Len(t, dataset.Rows, 2)
	assert.Equal(t, float64(1200.50), dataset.Rows[0]["revenue"])
	assert.Equal(t, "2024-01", dataset.Rows[0]["month"])
}

func TestNormalize_NullMetricBecomesZero(t *testing.T) {
	result := models.ExecutionResult{
		ColumnOrder: []string{"region", "revenue"},
		Rows: []models.Row{
			{"region": "west", "revenue": nil},
			{"region": "east", "revenue": 500.0},
		},
		OK: true,
	}

	dataset := Normalize(result, "")
	assert.Equal(t, float64(0), dataset.Rows[0]["revenue"])
}

func TestNormalize_NullCategoricalBecomesEmptyString(t *testing.T) {
	result := models.ExecutionResult{
		ColumnOrder: []string{"region", "revenue"},
		Rows: []models.Row{
			{"region": nil, "revenue": 10.0},
		},
		OK: true,
	}

	dataset := Normalize(result, "")
	assert.Equal(t, "", dataset.Rows[0]["region"])
}

func TestNormalize_ChartConfigDefaultsToTableWhenNoNumeric(t *testing.T) {
	result := models.ExecutionResult{
		ColumnOrder: []string{"region", "status"},
		Rows:        []models.Row{{"region": "west", "status": "ok"}},
		OK:          true,
	}
	dataset := Normalize(result, "")
	assert.Equal(t, "table", dataset.ChartConfig.ChartType)
}

func TestNormalize_ChartConfigScatterWhenTwoNumericsNoCategorical(t *testing.T) {
	result := models.ExecutionResult{
		ColumnOrder: []string{"quantity", "revenue"},
		Rows:        []models.Row{{"quantity": 3.0, "revenue": 10.0}},
		OK:          true,
	}
	dataset := Normalize(result, "")
	assert.Equal(t, "scatter", dataset.ChartConfig.ChartType)
}

func TestNormalize_ChartConfigRespectsHint(t *testing.T) {
	result := models.ExecutionResult{
		ColumnOrder: []string{"month", "revenue"},
		Rows:        []models.Row{{"month": "2024-01", "revenue": 10.0}},
		OK:          true,
	}
	dataset := Normalize(result, "line")
	assert.Equal(t, "line", dataset.ChartConfig.ChartType)
	assert.Equal(t, "month", dataset.ChartConfig.XAxis)
	assert.Equal(t, "revenue", dataset.ChartConfig.YAxis)
}

func TestNormalize_SummaryIncludesNumericStatsAndTimeAxis(t *testing.T) {
	result := models.ExecutionResult{
		ColumnOrder: []string{"sale_date", "revenue"},
		Rows: []models.Row{
			{"sale_date": "2024-01-01", "revenue": 10.0},
			{"sale_date": "2024-01-02", "revenue": 20.0},
		},
		OK: true,
	}
	dataset := Normalize(result, "")

	stats := dataset.Summary.NumericStats["revenue"]
	assert.Equal(t, 10.0, stats.Min)
	assert.Equal(t, 20.0, stats.Max)
	assert.Equal(t, 15.0, stats.Mean)
	assert.True(t, dataset.Summary.HasTimeAxis)
	assert.Equal(t, 2, dataset.Summary.RowCount)
}

func TestNormalize_TopThreeCategoricalValues(t *testing.T) {
	result := models.ExecutionResult{
		ColumnOrder: []string{"region"},
		Rows: []models.Row{
			{"region": "west"}, {"region": "west"}, {"region": "east"}, {"region": "north"}, {"region": "south"},
		},
		OK: true,
	}
	dataset := Normalize(result, "")
	top := dataset.Summary.CategoricalStats["region"].TopValues
	require.Len(t, top, 3)
	assert.Equal(t, "west", top[0].Value)
	assert.Equal(t, 2, top[0].Count)
}
