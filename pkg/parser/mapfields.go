package parser

import (
	"regexp"
	"sort"
	"strings"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

const fuzzyMinConfidence = 0.6

// sortedTables returns catalog's tables in name order, so every map/range
// over the catalog produces output order independent of Go's randomized
// map iteration — identical inputs must produce identical outputs.
func sortedTables(catalog *models.Catalog) []*models.TableSchema {
	if catalog == nil {
		return nil
	}
	names := make([]string, 0, len(catalog.Tables))
	for name := range catalog.Tables {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*models.TableSchema, len(names))
	for i, name := range names {
		out[i] = catalog.Tables[name]
	}
	return out
}

// synonymMap resolves a user term to a canonical business term, whose
// column-name substring is then searched for.
var synonymMap = map[string][]string{
	"revenue":  {"sales", "income", "earnings", "money", "amount"},
	"customer": {"client", "user", "buyer", "purchaser"},
	"product":  {"item", "goods", "merchandise"},
	"date":     {"time", "when", "period"},
	"quantity": {"amount", "count", "number", "qty"},
	"price":    {"cost", "value", "rate"},
	"country":  {"region", "location", "area", "territory"},
	"name":     {"title", "label", "identifier"},
	"email":    {"contact", "address"},
	"category": {"type", "kind", "group", "class"},
}

var stopWords = map[string]bool{
	"show": true, "me": true, "get": true, "find": true, "the": true,
	"by": true, "of": true, "and": true, "or": true, "in": true, "on": true,
	"at": true, "to": true, "for": true,
}

var wordPattern = regexp.MustCompile(`\b\w+\b`)

// MappingResult is the output of MapFields: deduplicated mappings kept at
// best confidence per (user_term, full_path), plus relationship-inferred
// suggested tables and any terms that mapped to nothing.
type MappingResult struct {
	Mappings        []models.FieldMapping
	Confidence      float64
	SuggestedTables []string
	UnmappedTerms   []string
}

// ExtractTerms pulls meaningful terms (length > 2, not a stop word) out of
// free text, in order, as candidate mapping terms.
func ExtractTerms(text string) []string {
	var terms []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if !stopWords[w] && len(w) > 2 {
			terms = append(terms, w)
		}
	}
	return terms
}

// MapFields runs the three mapping strategies (exact, fuzzy, semantic)
// against catalog and combines them, keeping the best-confidence mapping
// per (user_term, full_path).
func MapFields(userInput string, catalog *models.Catalog) MappingResult {
	terms := ExtractTerms(userInput)

	var all []models.FieldMapping
	exact := findExactMatches(terms, catalog)
	all = append(all, exact...)

	exactTerms := make(map[string]bool, len(exact))
	for _, m := range exact {
		exactTerms[m.UserTerm] = true
	}
	var remaining []string
	for _, t := range terms {
		if !exactTerms[t] {
			remaining = append(remaining, t)
		}
	}
	if len(remaining) > 0 {
		all = append(all, findFuzzyMatches(remaining, catalog)...)
	}
	all = append(all, findSemanticMatches(terms, catalog)...)

	final := dedupeBestByKey(all)
	sort.SliceStable(final, func(i, j int) bool { return final[i].Confidence > final[j].Confidence })

	var confidenceSum float64
	for _, m := range final {
		confidenceSum += m.Confidence
	}
	overall := 0.0
	if len(final) > 0 {
		overall = confidenceSum / float64(len(final))
	}

	suggestedTables := inferRelatedTables(final, catalog)

	mapped := make(map[string]bool, len(final))
	for _, m := range final {
		mapped[m.UserTerm] = true
	}
	var unmapped []string
	for _, t := range terms {
		if !mapped[t] {
			unmapped = append(unmapped, t)
		}
	}

	return MappingResult{
		Mappings:        final,
		Confidence:      overall,
		SuggestedTables: suggestedTables,
		UnmappedTerms:   unmapped,
	}
}

func findExactMatches(terms []string, catalog *models.Catalog) []models.FieldMapping {
	if catalog == nil {
		return nil
	}
	var out []models.FieldMapping
	for _, term := range terms {
		for _, table := range sortedTables(catalog) {
			tableName := table.TableName
			if strings.EqualFold(term, tableName) || strings.EqualFold(term, strings.TrimSuffix(tableName, "s")) {
				out = append(out, models.FieldMapping{
					UserTerm: term, Table: tableName, Column: "*",
					Confidence: 1.0, Kind: models.MappingExact,
				})
			}
			for _, col := range table.Columns {
				if strings.EqualFold(term, col.Name) || strings.EqualFold(term, strings.ReplaceAll(col.Name, "_", " ")) {
					out = append(out, models.FieldMapping{
						UserTerm: term, Table: tableName, Column: col.Name,
						Confidence: 1.0, Kind: models.MappingExact,
					})
				}
			}
		}
	}
	return out
}

func findFuzzyMatches(terms []string, catalog *models.Catalog) []models.FieldMapping {
	if catalog == nil {
		return nil
	}
	var out []models.FieldMapping
	for _, term := range terms {
		var candidates []models.FieldMapping
		for _, table := range sortedTables(catalog) {
			tableName := table.TableName
			if r := fuzzyRatio(term, tableName); r >= fuzzyMinConfidence {
				candidates = append(candidates, models.FieldMapping{
					UserTerm: term, Table: tableName, Column: "*",
					Confidence: r, Kind: models.MappingFuzzy,
				})
			}
			for _, col := range table.Columns {
				if r := fuzzyRatio(term, col.Name); r >= fuzzyMinConfidence {
					candidates = append(candidates, models.FieldMapping{
						UserTerm: term, Table: tableName, Column: col.Name,
						Confidence: r, Kind: models.MappingFuzzy,
					})
				}
			}
		}
		if len(candidates) == 0 {
			continue
		}
		sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Confidence > candidates[j].Confidence })
		if len(candidates) > 3 {
			candidates = candidates[:3]
		}
		out = append(out, candidates...)
	}
	return out
}

func findSemanticMatches(terms []string, catalog *models.Catalog) []models.FieldMapping {
	if catalog == nil {
		return nil
	}
	canonicalTerms := make([]string, 0, len(synonymMap))
	for canonical := range synonymMap {
		canonicalTerms = append(canonicalTerms, canonical)
	}
	sort.Strings(canonicalTerms)

	var out []models.FieldMapping
	for _, term := range terms {
		termLower := strings.ToLower(term)
		for _, canonical := range canonicalTerms {
			synonyms := synonymMap[canonical]
			matched := termLower == canonical
			if !matched {
				for _, s := range synonyms {
					if termLower == s {
						matched = true
						break
					}
				}
			}
			if !matched {
				continue
			}
			for _, table := range sortedTables(catalog) {
				for _, col := range table.Columns {
					if strings.Contains(strings.ToLower(col.Name), canonical) {
						out = append(out, models.FieldMapping{
							UserTerm: term, Table: table.TableName, Column: col.Name,
							Confidence: 0.8, Kind: models.MappingSemantic,
						})
					}
				}
			}
		}
	}
	return out
}

// dedupeBestByKey keeps, per (user_term, full_path), only the
// highest-confidence mapping.
func dedupeBestByKey(mappings []models.FieldMapping) []models.FieldMapping {
	best := make(map[string]models.FieldMapping, len(mappings))
	order := make([]string, 0, len(mappings))
	for _, m := range mappings {
		key := m.UserTerm + ":" + m.FullPath()
		if existing, ok := best[key]; !ok || m.Confidence > existing.Confidence {
			if _, seen := best[key]; !seen {
				order = append(order, key)
			}
			best[key] = m
		}
	}
	out := make([]models.FieldMapping, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

// inferRelatedTables follows foreign keys out of mapped tables to suggest
// additional tables relevant to the prompt.
func inferRelatedTables(mappings []models.FieldMapping, catalog *models.Catalog) []string {
	seen := map[string]bool{}
	var out []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, m := range mappings {
		add(m.Table)
		if catalog == nil {
			continue
		}
		if table, ok := catalog.Table(m.Table); ok {
			for _, fk := range table.ForeignKeys {
				add(fk.TargetTable)
			}
		}
	}
	sort.Strings(out)
	return out
}
