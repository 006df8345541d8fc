// Package artifact is the artifact synthesizer: it turns a
// NormalizedDataset and the original user prompt into a self-contained
// React+Recharts component, or a deterministic fallback when the LLM's
// output fails validation.
package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tarsy-labs/chartpilot/pkg/llmgateway"
	"github.com/tarsy-labs/chartpilot/pkg/models"
)

// sampleRows is the number of rows shown to the LLM: a small sample
// (≤5), not the full dataset.
const sampleRows = 5

const generationTemperature = 0.1
const maxGenerationTokens = 4000

const systemPrompt = `You are an expert React developer. Generate a complete, self-contained
React component for data visualization using Recharts.

STRICT REQUIREMENTS:
1. Generate a COMPLETE React functional component that works standalone.
2. Do NOT include any import statements - they are provided automatically.
3. Use only React hooks and Recharts components.
4. Embed the complete data array directly in the component.
5. Use Tailwind CSS classes for styling.
6. Choose the best chart type for the data and the user's request.
7. Generate an appropriate PascalCase component name matching the requested artifact_name.
8. Start the component with: const ComponentName = () => {
9. End with: }; (no export statement needed).

Reply with a single JSON object: {"artifact_code": "...", "artifact_name": "...", "chart_type": "bar|line|pie|scatter|table|area"}.
artifact_code must be the entire component as a string, ready to execute, with no import statements.`

// Synthesize sends the dataset sample and prompt to the LLM gateway, then
// validates and returns an Artifact. On any failure to produce a valid
// artifact_code, a deterministic fallback Artifact is returned instead,
// never an error — the caller always has something to render.
func Synthesize(ctx context.Context, gateway llmgateway.Gateway, dataset models.NormalizedDataset, userPrompt string) models.Artifact {
	resp, err := gateway.Complete(ctx, llmgateway.Request{
		System:       systemPrompt,
		User:         buildUserPrompt(dataset, userPrompt),
		Temperature:  generationTemperature,
		MaxTokens:    maxGenerationTokens,
		RequiredKeys: []string{"artifact_code", "artifact_name", "chart_type"},
	})
	if err != nil {
		return Fallback(dataset, fmt.Sprintf("artifact generation request failed: %v", err))
	}
	if resp.Parsed == nil {
		return Fallback(dataset, fmt.Sprintf("artifact generation returned invalid JSON: %s", resp.ParseError))
	}
	if len(resp.Missing) > 0 {
		return Fallback(dataset, fmt.Sprintf("artifact generation response missing fields: %s", strings.Join(resp.Missing, ", ")))
	}

	code, _ := resp.Parsed["artifact_code"].(string)
	name, _ := resp.Parsed["artifact_name"].(string)
	chartType, _ := resp.Parsed["chart_type"].(string)

	code = cleanComponentCode(code)

	if errs := Validate(code, name); len(errs) > 0 {
		return Fallback(dataset, fmt.Sprintf("generated artifact failed validation: %s", strings.Join(errs, "; ")))
	}

	return models.Artifact{
		Code:      code,
		Name:      name,
		ChartType: chartType,
		OK:        true,
	}
}

func buildUserPrompt(dataset models.NormalizedDataset, userPrompt string) string {
	rows := dataset.Rows
	if len(rows) > sampleRows {
		rows = rows[:sampleRows]
	}
	sample, _ := json.MarshalIndent(rows, "", "  ")

	return fmt.Sprintf(`USER REQUEST: %q

DATA SAMPLE (%d of %d total rows):
%s

CHART CONFIGURATION:
- Chart Type: %s
- X-Axis: %s
- Y-Axis: %s
- Title: %s

DATA SUMMARY:
- Columns: %s
- Rows: %d
- Has time axis: %v`,
		userPrompt,
		len(rows), dataset.Summary.RowCount,
		string(sample),
		orDefault(dataset.ChartConfig.ChartType, "auto-detect from data"),
		orDefault(dataset.ChartConfig.XAxis, "auto-detect"),
		orDefault(dataset.ChartConfig.YAxis, "auto-detect"),
		orDefault(dataset.ChartConfig.Title, "generate an appropriate title"),
		strings.Join(dataset.ColumnOrder, ", "),
		dataset.Summary.RowCount,
		dataset.Summary.HasTimeAxis,
	)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
