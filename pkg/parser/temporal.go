package parser

import (
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/en"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

// temporalParser resolves relative date phrases ("last quarter", "last 7
// days") in a cleaned prompt into concrete date literals (see DESIGN.md's
// pkg/parser entry).
var temporalParser = buildTemporalParser()

func buildTemporalParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	return w
}

// ExtractTemporalFilter looks for a relative-date phrase in cleaned and, if
// found, resolves it (relative to now) into an equality or range Filter
// against dateColumn. Returns ok=false when no temporal phrase is present.
func ExtractTemporalFilter(cleaned, dateColumn string, now time.Time) (models.Filter, bool) {
	if dateColumn == "" {
		return models.Filter{}, false
	}

	result, err := temporalParser.Parse(cleaned, now)
	if err != nil || result == nil {
		return models.Filter{}, false
	}

	return models.Filter{
		Column:  dateColumn,
		Op:      models.OpGreaterEqual,
		Literal: result.Time.Format("2006-01-02"),
	}, true
}

// dateColumnFor picks the first date-like column on table, by name
// convention — the same "date"/"time" substring heuristic pkg/query's
// normalizer already uses for has_time_axis.
func dateColumnFor(table *models.TableSchema) string {
	if table == nil {
		return ""
	}
	for _, col := range table.Columns {
		lower := strings.ToLower(col.Name)
		if strings.Contains(lower, "date") || strings.Contains(lower, "time") {
			return col.Name
		}
	}
	return ""
}
