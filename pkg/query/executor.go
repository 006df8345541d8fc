package query

import (
	"context"
	"fmt"

	"github.com/tarsy-labs/chartpilot/pkg/llmgateway"
	"github.com/tarsy-labs/chartpilot/pkg/models"
)

// Store is the read-only statement runner the engine executes validated
// SELECTs against. Satisfied by a pgx pool wrapper in pkg/database.
type Store interface {
	Query(ctx context.Context, sql string) (models.ExecutionResult, error)
}

// maxAttempts is up to three total attempts: original plus two repairs.
const maxAttempts = 3

// repairSystemPrompt grounds the LLM repair request in the same catalog
// context the builder used, so the repaired statement stays schema-valid.
const repairSystemPrompt = `You repair a failing SQL SELECT statement. You are given the
failed statement, the database error message, and a description of the available tables
and columns. Reply with a single JSON object: {"sql": "<repaired SELECT statement>"}.
The repaired statement must still be a single read-only SELECT.`

// ExecuteRaw runs sql through the store after safe-SELECT validation, with
// no repair attempt on failure.
func ExecuteRaw(ctx context.Context, store Store, sql string) (models.ExecutionResult, error) {
	if err := ValidateSelect(sql); err != nil {
		return models.ExecutionResult{SQL: sql, Error: err.Error()}, err
	}
	return store.Query(ctx, sql)
}

// Execute runs a ResolvedIntent through the builder, executes with
// retry-with-repair, and normalizes the result.
func Execute(ctx context.Context, store Store, gateway llmgateway.Gateway, catalogDescription string, intent models.ResolvedIntent, fromGraph string) (models.NormalizedDataset, error) {
	plan := BuildSQLPlan(intent, fromGraph)
	sql := Render(plan)

	result, err := executeWithRepair(ctx, store, gateway, catalogDescription, sql)
	if err != nil {
		return models.NormalizedDataset{}, err
	}

	dataset := Normalize(result, intent.ChartTypeHint)
	dataset.ChartConfig.LimitApplied = plan.Limit
	return dataset, nil
}

// executeWithRepair attempts sql, and on a failing or invalid result asks the
// gateway to repair the statement, re-validating each repair before
// re-attempting. No backoff between attempts: the failure is logical, not
// load-related.
func executeWithRepair(ctx context.Context, store Store, gateway llmgateway.Gateway, catalogDescription, sql string) (models.ExecutionResult, error) {
	var lastErr error
	current := sql

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ValidateSelect(current); err != nil {
			return models.ExecutionResult{}, err
		}

		result, err := store.Query(ctx, current)
		if err == nil && result.OK {
			return result, nil
		}

		if err == nil {
			err = fmt.Errorf("query: %s", result.Error)
		}
		if lastErr != nil && err.Error() == lastErr.Error() {
			return models.ExecutionResult{}, fmt.Errorf("query: repeated failure: %w", err)
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}

		repaired, repairErr := requestRepair(ctx, gateway, current, err.Error(), catalogDescription)
		if repairErr != nil {
			return models.ExecutionResult{}, fmt.Errorf("query: repair request failed: %w", repairErr)
		}
		current = repaired
	}

	return models.ExecutionResult{}, fmt.Errorf("query: exhausted %d attempts: %w", maxAttempts, lastErr)
}

func requestRepair(ctx context.Context, gateway llmgateway.Gateway, failedSQL, errMessage, catalogDescription string) (string, error) {
	user := fmt.Sprintf("Failed SQL:\n%s\n\nError:\n%s\n\nAvailable schema:\n%s",
		failedSQL, errMessage, catalogDescription)

	resp, err := gateway.Complete(ctx, llmgateway.Request{
		System:       repairSystemPrompt,
		User:         user,
		Temperature:  0,
		MaxTokens:    1024,
		RequiredKeys: []string{"sql"},
	})
	if err != nil {
		return "", err
	}
	if resp.Parsed == nil {
		return "", fmt.Errorf("query: repair response was not valid JSON: %s", resp.ParseError)
	}
	sql, ok := resp.Parsed["sql"].(string)
	if !ok || sql == "" {
		return "", fmt.Errorf("query: repair response missing sql field")
	}
	return sql, nil
}
