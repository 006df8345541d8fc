package errorhandler

import (
	"fmt"
	"strings"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

// RecoveryPolicy decides and orchestrates recovery strategies per error
// kind.
type RecoveryPolicy struct {
	Cache    *DatasetCache
	Synonyms *SynonymMapper
}

// NewRecoveryPolicy builds a policy backed by cache and synonyms. Either
// may be nil, in which case the corresponding strategy branch is skipped.
func NewRecoveryPolicy(cache *DatasetCache, synonyms *SynonymMapper) *RecoveryPolicy {
	return &RecoveryPolicy{Cache: cache, Synonyms: synonyms}
}

// Determine produces a Recovery directive for payload/kind/analysis given
// the current retry_count for this query.
func (p *RecoveryPolicy) Determine(kind models.ErrorKind, payload models.ErrorPayload, analysis Analysis, retryCount int) models.Recovery {
	switch kind {
	case models.ErrorInput:
		return p.inputErrorStrategy(payload)
	case models.ErrorSchema:
		return p.schemaErrorStrategy(payload)
	case models.ErrorQuery:
		return p.queryErrorStrategy(payload, analysis, retryCount)
	case models.ErrorChart:
		return p.chartErrorStrategy(payload)
	case models.ErrorSystem:
		return p.systemErrorStrategy(payload)
	case models.ErrorValidation:
		return p.validationErrorStrategy()
	default:
		return p.defaultStrategy(payload)
	}
}

func (p *RecoveryPolicy) inputErrorStrategy(payload models.ErrorPayload) models.Recovery {
	missing := missingParams(payload.Data)
	if len(missing) == 0 {
		missing = []string{"time range", "metric"}
	}
	if len(missing) > 2 {
		missing = missing[:2]
	}
	suggestions := make([]string, 0, len(missing)+1)
	for _, param := range missing {
		suggestions = append(suggestions, "Please specify the "+param)
	}
	suggestions = append(suggestions, "Try: 'show revenue by month for last quarter'")

	return models.Recovery{
		Strategy:         "clarify",
		AutomatedActions: []string{"generate_clarifying_prompts"},
		Suggestions:      suggestions,
		NextAction:       models.ActionAwaitUser,
	}
}

func (p *RecoveryPolicy) schemaErrorStrategy(payload models.ErrorPayload) models.Recovery {
	missingField := contextString(payload.Data, "field")
	available := contextStringSlice(payload.Data, "available_fields")

	if missingField != "" && len(available) > 0 && p.Synonyms != nil {
		if mapping, ok := p.Synonyms.FindMapping(missingField, available); ok {
			return models.Recovery{
				Strategy:         "auto_remap_field",
				AutomatedActions: []string{"apply_field_mapping", fmt.Sprintf("map:%s->%s", missingField, mapping[missingField])},
				FieldMapping:     mapping,
				Suggestions:      []string{fmt.Sprintf("Using '%s' instead of '%s'", mapping[missingField], missingField)},
				NextAction:       models.ActionResume,
			}
		}
	}

	next := models.ActionEscalate
	suggestions := []string{"Schema information unavailable"}
	if len(available) > 0 {
		next = models.ActionAwaitUser
		suggestions = []string{
			"Available fields: " + strings.Join(firstN(available, 5), ", "),
			"Check field names for typos",
			"Use 'show schema' to see all fields",
		}
	}

	return models.Recovery{
		Strategy:         "suggest_alternatives",
		AutomatedActions: []string{"list_available_fields"},
		Suggestions:      suggestions,
		NextAction:       next,
	}
}

func (p *RecoveryPolicy) queryErrorStrategy(payload models.ErrorPayload, analysis Analysis, retryCount int) models.Recovery {
	queryID := payload.Data.QueryID

	if p.Cache != nil {
		if cached, ok := p.Cache.Get(queryID); ok {
			return models.Recovery{
				Strategy:         "use_cached_data",
				AutomatedActions: []string{"use_cache:true", fmt.Sprintf("cache_age:%ds", cached.AgeSeconds)},
				CachedDataset:    &cached.Dataset,
				Suggestions: []string{
					fmt.Sprintf("Using cached results from %d seconds ago", cached.AgeSeconds),
					"Fresh data temporarily unavailable",
				},
				NextAction: models.ActionResume,
			}
		}
	}

	if analysis.CanRetry && retryCount < MaxRetries {
		delay := RetryDelays[retryCount]
		return models.Recovery{
			Strategy: "retry_with_backoff",
			AutomatedActions: []string{
				fmt.Sprintf("retry:%d", retryCount+1),
				fmt.Sprintf("backoff:%ds", int(delay.Seconds())),
				"reduce_scope",
			},
			Suggestions: []string{
				"Retrying with optimized query",
				"Consider reducing date range",
				fmt.Sprintf("Attempt %d of %d", retryCount+1, MaxRetries),
			},
			NextAction: models.ActionResume,
		}
	}

	return models.Recovery{
		Strategy:         "escalate_query_issue",
		AutomatedActions: []string{"escalate:ops", "log_query_failure"},
		Suggestions: []string{
			"Query cannot be completed at this time",
			"Try a simpler query or smaller date range",
			"Technical team has been notified",
		},
		NextAction: models.ActionEscalate,
	}
}

func (p *RecoveryPolicy) chartErrorStrategy(payload models.ErrorPayload) models.Recovery {
	chartType := contextString(payload.Data, "chart")
	if chartType == "" {
		chartType = "unknown"
	}
	dimension := contextString(payload.Data, "dimension")

	alternatives, ok := chartCompatibility[chartKey{strings.ToLower(chartType), strings.ToLower(dimension)}]
	if !ok {
		alternatives = defaultChartAlternatives
	}

	return models.Recovery{
		Strategy:         "suggest_chart_alternatives",
		AutomatedActions: []string{"suggest_chart:" + alternatives[0]},
		Suggestions: []string{
			fmt.Sprintf("'%s' doesn't work with %s data", chartType, dimension),
			"Try: " + strings.Join(alternatives, ", ") + " chart instead",
			"Or change the grouping dimension",
		},
		NextAction: models.ActionAwaitUser,
	}
}

func (p *RecoveryPolicy) systemErrorStrategy(payload models.ErrorPayload) models.Recovery {
	actions := []string{"escalate:critical", "notify_ops"}
	suggestions := []string{"System temporarily unavailable"}

	var cachedDataset *models.NormalizedDataset
	if p.Cache != nil {
		if cached, ok := p.Cache.Get(payload.Data.QueryID); ok {
			actions = append(actions, "provide_cached_fallback")
			suggestions = append(suggestions, fmt.Sprintf("Showing last known results from %ds ago", cached.AgeSeconds))
			cachedDataset = &cached.Dataset
		}
	}
	suggestions = append(suggestions, "Please try again in 15 minutes")

	return models.Recovery{
		Strategy:         "system_failure_handling",
		AutomatedActions: actions,
		CachedDataset:    cachedDataset,
		Suggestions:      suggestions,
		NextAction:       models.ActionEscalate,
	}
}

func (p *RecoveryPolicy) validationErrorStrategy() models.Recovery {
	return models.Recovery{
		Strategy:         "provide_validation_help",
		AutomatedActions: []string{"show_format_examples", "list_constraints"},
		Suggestions: []string{
			"Check data format requirements",
			"Example: dates should be YYYY-MM-DD",
			"Ensure all required fields are provided",
		},
		NextAction: models.ActionAwaitUser,
	}
}

func (p *RecoveryPolicy) defaultStrategy(payload models.ErrorPayload) models.Recovery {
	return models.Recovery{
		Strategy:         "generic_recovery",
		AutomatedActions: []string{"log_unknown_error", "preserve_context"},
		Suggestions: []string{
			"An unexpected error occurred",
			"Please try rephrasing your request",
			"Contact support with error ID: " + payload.Data.QueryID,
		},
		NextAction: models.ActionAwaitUser,
	}
}
