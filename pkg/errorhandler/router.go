package errorhandler

import (
	"log/slog"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

// feedbackQueueDepth bounds each consumer channel so a slow or wedged
// consumer cannot block Route's callers; a full channel drops the event
// (logged) rather than blocking.
const feedbackQueueDepth = 64

// Router fans a routed ErrorRecord out to the UI/pipeline/ops consumers:
// one buffered channel per consumer, non-blocking send, each consumer
// isolated from the others' failures.
type Router struct {
	UI       chan models.ErrorRecord
	Pipeline chan models.ErrorRecord
	Ops      chan models.ErrorRecord
}

// NewRouter builds a Router with buffered consumer channels. Callers drain
// UI/Pipeline/Ops in their own goroutines; Route itself never blocks.
func NewRouter() *Router {
	return &Router{
		UI:       make(chan models.ErrorRecord, feedbackQueueDepth),
		Pipeline: make(chan models.ErrorRecord, feedbackQueueDepth),
		Ops:      make(chan models.ErrorRecord, feedbackQueueDepth),
	}
}

// Route dispatches record to UI (always) and, depending on next, to
// Pipeline (resume) or Ops (escalate).
func (r *Router) Route(record models.ErrorRecord, next models.NextAction) {
	r.sendNonBlocking(r.UI, record, "ui")

	switch next {
	case models.ActionResume:
		r.sendNonBlocking(r.Pipeline, record, "pipeline")
	case models.ActionEscalate:
		r.sendNonBlocking(r.Ops, record, "ops")
	}

	slog.Info("feedback routed", "error_id", record.ErrorID, "next_action", next)
}

func (r *Router) sendNonBlocking(ch chan models.ErrorRecord, record models.ErrorRecord, name string) {
	select {
	case ch <- record:
	default:
		slog.Warn("feedback consumer queue full, dropping event", "consumer", name, "error_id", record.ErrorID)
	}
}
