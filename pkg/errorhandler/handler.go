package errorhandler

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

// Handler runs the fixed nine-stage state machine over an incoming
// ErrorPayload, producing a stored, routed ErrorRecord.
type Handler struct {
	Idempotency *IdempotencyStore
	Recovery    *RecoveryPolicy
	Router      *Router
	Clock       clockwork.Clock
}

// NewHandler wires a Handler from its collaborators. A nil clock defaults
// to the real wall clock.
func NewHandler(idempotency *IdempotencyStore, recovery *RecoveryPolicy, router *Router, clock clockwork.Clock) *Handler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Handler{Idempotency: idempotency, Recovery: recovery, Router: router, Clock: clock}
}

// Handle runs payload through validate → idempotency check → ingress →
// classify → analyze → decide recovery → execute actions → message →
// route, returning the resulting ErrorRecord. retryCount is the caller-
// tracked (orchestrator-owned) retry count for this query, since the
// handler itself holds no cross-call retry state.
func (h *Handler) Handle(sourceComponent string, payload models.ErrorPayload, retryCount int) models.ErrorRecord {
	// Stage 1: Validate.
	if ok, errs := ValidatePayload(payload); !ok {
		return h.invalidPayloadRecord(sourceComponent, payload, errs)
	}

	// Stage 2: Idempotency check.
	if prior, found := h.Idempotency.CheckDuplicate(payload.Data.QueryID, payload.Data.ErrorCode); found {
		return prior
	}

	// Stage 3: Ingress.
	now := h.Clock.Now()
	errorID := generateErrorID(payload, now)

	// Stage 4: Classify.
	kind, confidence := Classify(payload)

	// Stage 5: Analyze.
	analysis := Analyze(kind, payload.Data)

	// Stage 6: Decide recovery.
	recovery := h.Recovery.Determine(kind, payload, analysis, retryCount)

	record := models.ErrorRecord{
		ErrorID:         errorID,
		SourceComponent: sourceComponent,
		RawPayload:      payload,
		Kind:            kind,
		Severity:        analysis.Severity,
		RootCause:       analysis.RootCause,
		Confidence:      confidence,
		Recovery:        recovery,
		IdempotencyKey:  payload.Data.QueryID + ":" + payload.Data.ErrorCode,
		CreatedAt:       now,
	}

	// Stage 7: Execute automated actions. Action interpretation (retry:N,
	// map:..., use_cache:true, escalate:...) belongs to the orchestrator
	// that owns the Job; this stage's only local effect is the
	// context-preserved guarantee, which here is structural: the full
	// RawPayload and Recovery are always carried on the returned record.

	// Stage 8: Message.
	record.UserMessage = GenerateMessage(record)

	// Stage 9: Route.
	h.Idempotency.Store(payload.Data.QueryID, payload.Data.ErrorCode, record)
	if h.Router != nil {
		h.Router.Route(record, recovery.NextAction)
	}

	return record
}

func (h *Handler) invalidPayloadRecord(sourceComponent string, payload models.ErrorPayload, errs []string) models.ErrorRecord {
	now := h.Clock.Now()
	record := models.ErrorRecord{
		ErrorID:         generateErrorID(payload, now),
		SourceComponent: sourceComponent,
		RawPayload:      payload,
		Kind:            models.ErrorValidation,
		Severity:        models.SeverityHigh,
		RootCause:       "Malformed error payload: " + joinErrors(errs),
		Confidence:      maxClassificationConfidence,
		Recovery: models.Recovery{
			Strategy:         "provide_validation_help",
			AutomatedActions: []string{"show_format_examples"},
			Suggestions:      errs,
			NextAction:       models.ActionAwaitUser,
		},
		CreatedAt: now,
	}
	record.UserMessage = GenerateMessage(record)
	if h.Router != nil {
		h.Router.Route(record, record.Recovery.NextAction)
	}
	return record
}

func joinErrors(errs []string) string {
	if len(errs) == 0 {
		return "unknown validation failure"
	}
	return errs[0]
}

// generateErrorID builds `err_YYYYMMDD_<hash8(payload+now)>`.
func generateErrorID(payload models.ErrorPayload, now time.Time) string {
	return fmt.Sprintf("err_%s_%s", now.Format("20060102"), hash8(payload))
}

func hash8(payload models.ErrorPayload) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s|%v", payload.AgentID, payload.Status,
		payload.Data.ErrorCode, payload.Data.QueryID, payload.Timestamp.UnixNano())))
	return hex.EncodeToString(sum[:])[:8]
}
