package parser

import (
	"sort"
	"strings"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

const (
	tableNameHitScore  = 0.8
	columnNameHitScore = 0.5
	topRelevantTables  = 5
)

var retrievalStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "and": true, "or": true, "by": true,
}

// RetrieveSchema scores every Catalog table by keyword hits on its table and
// column names against candidate terms drawn from cleaned (length > 2, not a
// stop word). Returns the top-5 tables with a positive score, or an empty
// slice if none score.
func RetrieveSchema(cleaned string, catalog *models.Catalog) []*models.TableSchema {
	if catalog == nil {
		return nil
	}

	candidates := candidateTerms(cleaned)
	if len(candidates) == 0 {
		return nil
	}

	type scored struct {
		table *models.TableSchema
		score float64
	}
	var results []scored

	for _, table := range catalog.Tables {
		score := tableScore(table, candidates)
		if score > 0 {
			results = append(results, scored{table: table, score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].table.TableName < results[j].table.TableName
	})

	if len(results) > topRelevantTables {
		results = results[:topRelevantTables]
	}

	out := make([]*models.TableSchema, 0, len(results))
	for _, r := range results {
		out = append(out, r.table)
	}
	return out
}

func candidateTerms(cleaned string) []string {
	var out []string
	for _, w := range strings.Fields(cleaned) {
		if len(w) > 2 && !retrievalStopWords[w] {
			out = append(out, strings.ToLower(w))
		}
	}
	return out
}

func tableScore(table *models.TableSchema, candidates []string) float64 {
	var score float64
	tableName := strings.ToLower(table.TableName)
	for _, term := range candidates {
		if strings.Contains(tableName, term) || strings.Contains(term, tableName) {
			score += tableNameHitScore
		}
		for _, col := range table.Columns {
			if strings.Contains(strings.ToLower(col.Name), term) {
				score += columnNameHitScore
			}
		}
	}
	return score
}
