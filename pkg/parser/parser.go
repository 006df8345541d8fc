package parser

import (
	"fmt"
	"time"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

// Result is everything the parser hands downstream: the resolved intent,
// the field mappings it was derived from, and the catalog subset judged
// relevant.
type Result struct {
	Cleaned  models.CleanedPrompt
	Mapping  MappingResult
	Relevant []*models.TableSchema
	Intent   models.ResolvedIntent
}

// ValidationError is returned when stage 2 (Validate) rejects the prompt;
// callers route it to the error handler as an input error.
type ValidationError struct {
	Cleaned    models.CleanedPrompt
	Confidence float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("parser: prompt confidence %.2f below the 0.3 validity threshold", e.Confidence)
}

// Parse runs the five stages (clean, validate, retrieve, map fields,
// enrich) in order, short-circuiting on validation failure. now is
// injected so enrichment's temporal-filter resolution stays deterministic
// in tests.
func Parse(prompt models.Prompt, catalog *models.Catalog, now time.Time) (Result, error) {
	cleaned := Clean(prompt.Text)

	validation := Validate(cleaned.Cleaned)
	if !validation.IsValid {
		return Result{Cleaned: cleaned}, &ValidationError{Cleaned: cleaned, Confidence: validation.Confidence}
	}

	relevant := RetrieveSchema(cleaned.Cleaned, catalog)
	mapping := MapFields(cleaned.Cleaned, catalog)
	intent := Enrich(cleaned, mapping, relevant, catalog, now)

	return Result{
		Cleaned:  cleaned,
		Mapping:  mapping,
		Relevant: relevant,
		Intent:   intent,
	}, nil
}
