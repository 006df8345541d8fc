package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tarsy-labs/chartpilot/pkg/descindex"
	"github.com/tarsy-labs/chartpilot/pkg/models"
	"github.com/tarsy-labs/chartpilot/pkg/parser"
)

// runParseStage runs the input parser (parse + enrich). On validation
// failure or a failed schema resolution it reports to the error handler
// and applies its directive, retrying the stage at most once.
func (o *Orchestrator) runParseStage(ctx context.Context, jobID string, prompt models.Prompt) (models.ResolvedIntent, *models.Catalog, bool) {
	catalog, err := o.Catalog.GetCatalog(ctx)
	if err != nil {
		o.dispatchSystemError(jobID, "catalog", err)
		return models.ResolvedIntent{}, nil, false
	}

	for attempt := 0; ; attempt++ {
		result, err := parser.Parse(prompt, catalog, o.Clock.Now())
		if err != nil {
			handled := o.dispatchError(ctx, jobID, "input_parser", models.ErrorPayload{
				AgentID:   "input_parser",
				Timestamp: o.Clock.Now(),
				Status:    "error",
				Data: models.ErrorPayloadData{
					ErrorType: string(models.ErrorInput),
					ErrorCode: "E_LOW_CONFIDENCE",
					Message:   o.maskText(err.Error()),
					QueryID:   queryIDFor(jobID),
				},
			}, attempt)
			if handled.retry {
				continue
			}
			return models.ResolvedIntent{}, nil, false
		}

		if result.Intent.SchemaValidated {
			return result.Intent, catalog, true
		}

		available := flattenColumns(result.Relevant)
		missingField := "metric"
		if len(result.Mapping.UnmappedTerms) > 0 {
			missingField = result.Mapping.UnmappedTerms[0]
		}

		handled := o.dispatchError(ctx, jobID, "input_parser", models.ErrorPayload{
			AgentID:   "input_parser",
			Timestamp: o.Clock.Now(),
			Status:    "error",
			Data: models.ErrorPayloadData{
				ErrorType: string(models.ErrorSchema),
				ErrorCode: "E_SCHEMA_UNRESOLVED",
				Message:   fmt.Sprintf("could not resolve a metric field for %q", missingField),
				QueryID:   queryIDFor(jobID),
				Context: map[string]any{
					"field":            missingField,
					"available_fields": available,
				},
			},
		}, attempt)

		if handled.fieldMapping != nil {
			intent := result.Intent
			if resolved, ok := handled.fieldMapping[missingField]; ok {
				intent.Metric = resolved
				intent.MetricTable = tableOwningColumn(result.Relevant, resolved)
				intent.SchemaValidated = intent.Metric != "" && intent.MetricTable != ""
			}
			if intent.SchemaValidated {
				return intent, catalog, true
			}
		}
		if handled.retry {
			continue
		}
		return models.ResolvedIntent{}, nil, false
	}
}

// runQueryStage runs the query engine. On failure it reports to the
// error handler and either resumes with a cached dataset, retries once
// with backoff, or fails the job.
func (o *Orchestrator) runQueryStage(ctx context.Context, jobID string, prompt models.Prompt, intent models.ResolvedIntent, catalog *models.Catalog) (models.NormalizedDataset, bool) {
	description := o.enrichDescription(ctx, describeCatalog(catalog), prompt.Text)

	for attempt := 0; ; attempt++ {
		dataset, err := o.Query.Execute(ctx, intent, description)
		if err == nil {
			return dataset, true
		}

		handled := o.dispatchError(ctx, jobID, "query_engine", models.ErrorPayload{
			AgentID:   "query_engine",
			Timestamp: o.Clock.Now(),
			Status:    "error",
			Data: models.ErrorPayloadData{
				ErrorType: string(models.ErrorQuery),
				ErrorCode: "E_QUERY_FAILED",
				Message:   o.maskText(err.Error()),
				QueryID:   queryIDFor(jobID),
			},
		}, attempt)

		if handled.cachedDataset != nil {
			return *handled.cachedDataset, true
		}
		if handled.retry {
			continue
		}
		return models.NormalizedDataset{}, false
	}
}

// runValidateStage checks that the queried dataset has rows to chart: a
// dataset with no rows can't be charted, so it's reported to the error
// handler as a chart error rather than proceeding to artifact synthesis
// with nothing to show.
func (o *Orchestrator) runValidateStage(ctx context.Context, jobID string, prompt models.Prompt, dataset models.NormalizedDataset) (models.NormalizedDataset, bool) {
	if len(dataset.Rows) > 0 {
		return dataset, true
	}

	handled := o.dispatchError(ctx, jobID, "pipeline", models.ErrorPayload{
		AgentID:   "pipeline",
		Timestamp: o.Clock.Now(),
		Status:    "error",
		Data: models.ErrorPayloadData{
			ErrorType: string(models.ErrorChart),
			ErrorCode: "E_EMPTY_DATASET",
			Message:   "query returned no rows to chart",
			QueryID:   queryIDFor(jobID),
			Context: map[string]any{
				"chart":     dataset.ChartConfig.ChartType,
				"dimension": dataset.ChartConfig.XAxis,
			},
		},
	}, 0)

	if handled.cachedDataset != nil {
		return *handled.cachedDataset, true
	}
	return models.NormalizedDataset{}, false
}

// runArtifactStage runs artifact synthesis. Artifact synthesis never
// errors (it falls back internally), so the orchestrator always completes
// the job here rather than consulting the error handler: on
// artifact-validation failure, the orchestrator substitutes the fallback
// artifact instead.
func (o *Orchestrator) runArtifactStage(ctx context.Context, jobID string, prompt models.Prompt, dataset models.NormalizedDataset) {
	art := artifactSynthesize(ctx, o.Gateway, dataset, prompt.Text)
	o.completeWithArtifact(jobID, art, dataset.CacheHit)
}

// stageOutcome is what dispatchError decided after consulting the error
// handler.
type stageOutcome struct {
	retry         bool
	cachedDataset *models.NormalizedDataset
	fieldMapping  map[string]string
}

// dispatchError reports payload to the error handler and applies its
// recovery directive: resume (retrying the stage at most once, honoring
// any backoff or substitution the handler attached), await_user (fail the
// job with the user message/suggestions), or escalate (fail the job; ops
// notification already happened inside Handler.Handle via the router).
func (o *Orchestrator) dispatchError(ctx context.Context, jobID, sourceComponent string, payload models.ErrorPayload, attempt int) stageOutcome {
	record := o.ErrorHandler.Handle(sourceComponent, payload, attempt)
	recovery := record.Recovery

	switch recovery.NextAction {
	case models.ActionResume:
		if recovery.CachedDataset != nil {
			return stageOutcome{cachedDataset: recovery.CachedDataset}
		}
		if recovery.FieldMapping != nil {
			return stageOutcome{fieldMapping: recovery.FieldMapping}
		}
		if attempt >= maxStageRetries {
			o.failJob(jobID, record.UserMessage, recovery.Suggestions)
			return stageOutcome{}
		}
		if !sleepFor(ctx, o.Clock, backoffDelay(recovery.AutomatedActions)) {
			return stageOutcome{}
		}
		return stageOutcome{retry: true}

	default: // await_user, escalate
		o.failJob(jobID, record.UserMessage, recovery.Suggestions)
		return stageOutcome{}
	}
}

func (o *Orchestrator) dispatchSystemError(jobID, sourceComponent string, err error) {
	record := o.ErrorHandler.Handle(sourceComponent, models.ErrorPayload{
		AgentID:   sourceComponent,
		Timestamp: o.Clock.Now(),
		Status:    "error",
		Data: models.ErrorPayloadData{
			ErrorType: string(models.ErrorSystem),
			ErrorCode: "E_SYSTEM",
			Message:   o.maskText(err.Error()),
			QueryID:   queryIDFor(jobID),
		},
	}, 0)
	o.failJob(jobID, record.UserMessage, record.Recovery.Suggestions)
}

// queryIDFor derives a query_id satisfying errorhandler's ^[qQ]_\w+$
// validation pattern from a job's UUID.
func queryIDFor(jobID string) string {
	return "q_" + strings.ReplaceAll(jobID, "-", "")
}

// backoffDelay parses the "backoff:<n>s" automated-action token the error
// handler emits into a Duration; absent or unparsable, no delay.
func backoffDelay(actions []string) (d time.Duration) {
	for _, a := range actions {
		if rest, ok := strings.CutPrefix(a, "backoff:"); ok {
			rest = strings.TrimSuffix(rest, "s")
			if secs, err := strconv.Atoi(rest); err == nil {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return 0
}

// enrichDescription appends nearest-neighbor business-context prose from
// the descriptive index to base, when one is configured. Lookup failures
// or empty results leave base untouched rather than failing the query
// stage over an optional enrichment.
func (o *Orchestrator) enrichDescription(ctx context.Context, base, promptText string) string {
	if o.DescIndex == nil {
		return base
	}
	matches, err := o.DescIndex.Query(ctx, promptText, 3, descindex.DefaultDistanceThreshold)
	if err != nil || len(matches) == 0 {
		return base
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n-- business context --\n")
	for _, m := range matches {
		b.WriteString(m.Record.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func describeCatalog(catalog *models.Catalog) string {
	if catalog == nil {
		return ""
	}
	names := make([]string, 0, len(catalog.Tables))
	for name := range catalog.Tables {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		table := catalog.Tables[name]
		cols := make([]string, 0, len(table.Columns))
		for _, c := range table.Columns {
			cols = append(cols, c.Name)
		}
		fmt.Fprintf(&b, "%s(%s)\n", name, strings.Join(cols, ", "))
	}
	return b.String()
}

func flattenColumns(tables []*models.TableSchema) []string {
	var out []string
	for _, t := range tables {
		for _, c := range t.Columns {
			out = append(out, c.Name)
		}
	}
	return out
}

func tableOwningColumn(tables []*models.TableSchema, column string) string {
	for _, t := range tables {
		if _, ok := t.Column(column); ok {
			return t.TableName
		}
	}
	return ""
}
