package errorhandler

import (
	"fmt"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

// GenerateMessage synthesizes a short user-facing string from a per-kind
// template with slots for root_cause and the first suggestion. A field
// mapping or cached dataset on the record's Recovery takes priority over
// the template, since those recoveries have their own fixed phrasing.
func GenerateMessage(record models.ErrorRecord) string {
	if record.Recovery.FieldMapping != nil {
		return "I found a matching field. " + firstOrEmpty(record.Recovery.Suggestions)
	}
	if record.Recovery.CachedDataset != nil {
		return "Using cached results. " + firstOrEmpty(record.Recovery.Suggestions)
	}

	template, ok := messageTemplates[record.Kind]
	if !ok {
		template = defaultMessageTemplate
	}

	suggestion := firstOrEmpty(record.Recovery.Suggestions)
	if suggestion == "" {
		suggestion = "Please try again"
	}

	return fmt.Sprintf(template, record.RootCause, suggestion)
}

func firstOrEmpty(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[0]
}
