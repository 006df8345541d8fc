package errorhandler

import (
	"sort"
	"strings"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

// maxClassificationConfidence clamps pattern-matched classification
// confidence to [0, 0.95].
const maxClassificationConfidence = 0.95

// explicitTypeConfidence is returned when data.error_type already names a
// known kind.
const explicitTypeConfidence = 0.95

// Classify assigns a canonical ErrorKind and confidence to payload: 0.6
// weight for a message-text hit, 0.4 for a code-text hit, ties falling to
// validation via the sorted-kinds tiebreak below.
func Classify(payload models.ErrorPayload) (models.ErrorKind, float64) {
	if payload.Data.ErrorType != "" && validKinds[payload.Data.ErrorType] {
		return models.ErrorKind(payload.Data.ErrorType), explicitTypeConfidence
	}

	msg := strings.ToLower(payload.Data.Message)
	code := strings.ToLower(payload.Data.ErrorCode)

	kinds := make([]models.ErrorKind, 0, len(errorPatterns))
	for kind := range errorPatterns {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	scores := make(map[models.ErrorKind]float64, len(kinds))
	for _, kind := range kinds {
		for _, pattern := range errorPatterns[kind] {
			if strings.Contains(msg, pattern) {
				scores[kind] += 0.6
			}
			if strings.Contains(code, pattern) {
				scores[kind] += 0.4
			}
		}
	}

	var bestKind models.ErrorKind
	var bestScore float64
	tied := false
	found := false
	for _, kind := range kinds {
		score, ok := scores[kind]
		if !ok || score <= 0 {
			continue
		}
		switch {
		case !found || score > bestScore:
			bestKind, bestScore, found, tied = kind, score, true, false
		case score == bestScore:
			tied = true
		}
	}

	if found {
		if bestScore > maxClassificationConfidence {
			bestScore = maxClassificationConfidence
		}
		if tied {
			return models.ErrorValidation, bestScore
		}
		return bestKind, bestScore
	}

	return models.ErrorValidation, 0.5
}
