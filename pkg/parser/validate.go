package parser

import (
	"regexp"
	"strings"
)

// minActionableConfidence is the validation threshold: a prompt with
// confidence below 0.3 fails validation.
const minActionableConfidence = 0.3

// validationCategory is one weighted scoring bucket.
type validationCategory struct {
	name    string
	weight  float64
	buckets [][]string
}

var validationCategories = []validationCategory{
	{
		name:   "visualization",
		weight: 0.35,
		buckets: [][]string{
			{"show", "display", "chart", "graph", "plot", "visualize"},
			{"create", "generate", "make", "build", "draw", "render", "report"},
		},
	},
	{
		name:   "data_references",
		weight: 0.25,
		buckets: [][]string{
			{"sales", "revenue", "profit", "income", "count", "total", "average", "performance", "metrics"},
			{"customer", "product", "region", "category", "type"},
		},
	},
	{
		name:   "temporal",
		weight: 0.20,
		buckets: [][]string{
			{"month", "year", "quarter", "week", "day"},
			{"monthly", "yearly", "quarterly", "weekly", "daily"},
			{"over time", "timeline", "trend", "history"},
		},
	},
	{
		name:   "chart_types",
		weight: 0.10,
		buckets: [][]string{
			{"bar chart", "line chart", "pie chart", "scatter plot"},
			{"breakdown", "distribution", "comparison", "trend"},
		},
	},
	{
		name:   "actions",
		weight: 0.10,
		buckets: [][]string{
			{"compare", "analyze", "breakdown", "summarize"},
			{"filter", "where", "only", "exclude"},
		},
	},
}

var negativePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(hello|hi|help|how|what|why|when|where)\b`),
	regexp.MustCompile(`\b(can you|could you|please|thank you)\b`),
	regexp.MustCompile(`\b(random|test|example|sample)\b`),
}

// ValidationResult is the weighted-classifier verdict for a cleaned prompt.
type ValidationResult struct {
	IsValid    bool
	Confidence float64
	// DataElements, TemporalIndicators and ChartTypeHints feed the
	// ResolvedIntent's dimension/chart_type_hint enrichment in enrich.go.
	DataElements      []string
	TemporalIndicators []string
	ChartTypeHints    []string
}

// Validate scores cleaned against the weighted-category classifier.
// Negative patterns (greetings, meta-requests) subtract a small penalty.
func Validate(cleaned string) ValidationResult {
	lower := strings.ToLower(cleaned)

	var total float64
	var dataElements, temporalIndicators, chartHints []string

	for _, cat := range validationCategories {
		var matches []string
		for _, bucket := range cat.buckets {
			for _, keyword := range bucket {
				if strings.Contains(lower, keyword) {
					matches = append(matches, keyword)
					switch cat.name {
					case "data_references":
						dataElements = append(dataElements, keyword)
					case "temporal":
						temporalIndicators = append(temporalIndicators, keyword)
					case "chart_types":
						chartHints = append(chartHints, keyword)
					}
				}
			}
		}
		if len(matches) > 0 {
			normalized := min1(float64(len(matches)) / float64(len(matches)))
			total += normalized * cat.weight
		}
	}

	var penalty float64
	for _, pattern := range negativePatterns {
		if pattern.MatchString(lower) {
			penalty += 0.05
		}
	}

	final := total - penalty
	if final < 0 {
		final = 0
	}

	return ValidationResult{
		IsValid:            final >= minActionableConfidence,
		Confidence:         final,
		DataElements:       dedupe(dataElements),
		TemporalIndicators: dedupe(temporalIndicators),
		ChartTypeHints:     dedupe(chartHints),
	}
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
