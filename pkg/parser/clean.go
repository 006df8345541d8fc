// Package parser is the input parser: it cleans a raw prompt, validates
// it carries enough signal to act on, retrieves the subset of the catalog
// relevant to it, maps user terms onto schema fields, and enriches the
// result into a ResolvedIntent.
package parser

import (
	"regexp"
	"strings"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

// intentKeywords name the visualization verbs the classifier and the
// cleaner both key off of.
var intentKeywords = map[string]bool{
	"show": true, "display": true, "chart": true, "graph": true, "plot": true,
	"visualization": true, "viz": true, "analyze": true, "analysis": true,
	"compare": true, "comparison": true, "trend": true, "trends": true,
	"breakdown": true, "break": true, "view": true, "see": true,
	"present": true, "examine": true,
}

var businessVocabulary = map[string]bool{
	"sales": true, "revenue": true, "income": true, "profit": true,
	"margin": true, "earnings": true, "customer": true, "client": true,
	"user": true, "buyer": true, "purchaser": true, "product": true,
	"item": true, "goods": true, "merchandise": true, "order": true,
	"purchase": true, "transaction": true, "buy": true, "performance": true,
	"metrics": true, "kpi": true, "results": true, "data": true,
}

var timeVocabulary = map[string]bool{
	"year": true, "yearly": true, "annual": true, "month": true, "monthly": true,
	"quarter": true, "quarterly": true, "day": true, "daily": true, "week": true,
	"weekly": true, "time": true, "period": true, "date": true,
	"q1": true, "q2": true, "q3": true, "q4": true,
	"jan": true, "feb": true, "mar": true, "apr": true, "may": true, "jun": true,
	"jul": true, "aug": true, "sep": true, "oct": true, "nov": true, "dec": true,
}

var noiseWords = map[string]bool{
	"can": true, "you": true, "please": true, "maybe": true, "could": true,
	"would": true, "should": true, "want": true, "need": true, "like": true,
	"i": true, "me": true, "we": true, "us": true, "my": true, "our": true,
	"give": true, "get": true, "find": true, "help": true, "make": true,
	"create": true, "generate": true, "a": true, "an": true, "the": true,
	"and": true, "or": true, "but": true, "in": true, "on": true, "at": true,
	"for": true, "of": true, "with": true, "some": true, "any": true,
	"all": true, "each": true, "every": true, "this": true, "that": true,
	"these": true, "those": true,
}

// typoCorrections is the fixed typo dictionary applied before tokenizing.
var typoCorrections = map[string]string{
	"reveue": "revenue", "revenu": "revenue", "revinue": "revenue",
	"salse": "sales", "sale": "sales", "seles": "sales",
	"custmer": "customer", "costumer": "customer", "cutomer": "customer",
	"mnoth": "month", "mont": "month", "monht": "month",
	"quater": "quarter", "quartly": "quarterly",
	"margens": "margins", "margns": "margins",
	"custmers": "customers", "costumers": "customers",
}

var punctuationPattern = regexp.MustCompile(`[^\w\s\-/]`)
var whitespacePattern = regexp.MustCompile(`\s+`)

// intentPriority maps each primary-intent tag to the keywords that count
// toward it, ordered highest-priority-first for tie-breaking.
var intentPriority = []struct {
	intent   models.Intent
	keywords map[string]bool
}{
	{models.IntentDistribution, boolSet("breakdown", "break")},
	{models.IntentCompare, boolSet("compare", "comparison", "vs", "versus")},
	{models.IntentTrend, boolSet("trend", "trends")},
	{models.IntentOther, boolSet("analyze", "analysis", "examine")},
	{models.IntentShow, boolSet("show", "display", "present", "view", "see", "chart", "graph", "plot", "visualization", "viz")},
}

func boolSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Clean normalizes raw prompt text and tags it with a primary intent and a
// confidence score.
func Clean(raw string) models.CleanedPrompt {
	normalized := normalizeText(raw)
	corrected := fixTypos(normalized)
	words := strings.Fields(corrected)

	var intentWords, entityWords, timeWords, kept []string
	for _, w := range words {
		switch {
		case intentKeywords[w]:
			intentWords = append(intentWords, w)
			kept = append(kept, w)
		case businessVocabulary[w]:
			entityWords = append(entityWords, w)
			kept = append(kept, w)
		case timeVocabulary[w]:
			timeWords = append(timeWords, w)
			kept = append(kept, w)
		case noiseWords[w]:
			// dropped
		case len(w) > 2:
			kept = append(kept, w)
		}
	}

	confidence := cleanConfidence(intentWords, entityWords, timeWords)
	primary := primaryIntent(intentWords, confidence)

	return models.CleanedPrompt{
		Original:   raw,
		Cleaned:    strings.Join(kept, " "),
		Confidence: confidence,
		Primary:    primary,
	}
}

func normalizeText(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = punctuationPattern.ReplaceAllString(text, " ")
	return whitespacePattern.ReplaceAllString(text, " ")
}

func fixTypos(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		if fix, ok := typoCorrections[w]; ok {
			words[i] = fix
		}
	}
	return strings.Join(words, " ")
}

// cleanConfidence weighs intent 0.4, entity 0.4, time 0.2, each normalized
// against a denominator of 2 (1 for time).
func cleanConfidence(intentWords, entityWords, timeWords []string) float64 {
	intentScore := min1(float64(len(intentWords)) / 2)
	entityScore := min1(float64(len(entityWords)) / 2)
	timeScore := min1(float64(len(timeWords)) / 1)
	return intentScore*0.4 + entityScore*0.4 + timeScore*0.2
}

func min1(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	return v
}

func primaryIntent(intentWords []string, confidence float64) models.Intent {
	if confidence < minActionableConfidence && len(intentWords) == 0 {
		return models.IntentInvalid
	}
	for _, candidate := range intentPriority {
		best := 0
		for _, w := range intentWords {
			if candidate.keywords[w] {
				best++
			}
		}
		if best > 0 {
			return candidate.intent
		}
	}
	return models.IntentOther
}
