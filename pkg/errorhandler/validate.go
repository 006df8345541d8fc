package errorhandler

import (
	"regexp"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

var queryIDPattern = regexp.MustCompile(`^[qQ]_\w+$`)

var validKinds = map[string]bool{
	string(models.ErrorInput): true, string(models.ErrorSchema): true,
	string(models.ErrorQuery): true, string(models.ErrorChart): true,
	string(models.ErrorSystem): true, string(models.ErrorValidation): true,
}

// ValidatePayload checks payload against the required shape. Timestamp-
// format checking is unnecessary since models.ErrorPayload.Timestamp is
// already a parsed time.Time by the time it reaches this package.
func ValidatePayload(payload models.ErrorPayload) (bool, []string) {
	var errs []string

	if payload.AgentID == "" {
		errs = append(errs, "missing required field: agent_id")
	}
	if payload.Status == "" {
		errs = append(errs, "missing required field: status")
	}
	if payload.Data.ErrorCode == "" {
		errs = append(errs, "missing required data field: error_code")
	}
	if payload.Data.Message == "" {
		errs = append(errs, "missing required data field: message")
	}
	if payload.Data.QueryID == "" {
		errs = append(errs, "missing required data field: query_id")
	} else if !queryIDPattern.MatchString(payload.Data.QueryID) {
		errs = append(errs, "invalid query_id format: "+payload.Data.QueryID)
	}
	if payload.Data.ErrorType != "" && !validKinds[payload.Data.ErrorType] {
		errs = append(errs, "invalid error_type: "+payload.Data.ErrorType)
	}

	return len(errs) == 0, errs
}
