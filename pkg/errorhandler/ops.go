package errorhandler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	goslack "github.com/slack-go/slack"

	"github.com/tarsy-labs/chartpilot/pkg/models"
	"github.com/tarsy-labs/chartpilot/pkg/slack"
)

// opsPostTimeout bounds each Slack post so a stalled escalation never
// wedges the ops consumer goroutine.
const opsPostTimeout = 10 * time.Second

// OpsConsumer drains a Router's Ops channel, posting each escalated
// ErrorRecord to Slack and, for system/critical severities, to Sentry.
type OpsConsumer struct {
	slack  *slack.Client
	logger *slog.Logger
}

// NewOpsConsumer builds an OpsConsumer posting through client. client may
// be nil, in which case escalations are logged but not posted (useful in
// environments without Slack configured).
func NewOpsConsumer(client *slack.Client) *OpsConsumer {
	return &OpsConsumer{slack: client, logger: slog.Default().With("component", "errorhandler-ops")}
}

// Run drains ch until it is closed, handling one record at a time with a
// recovered panic boundary so a single bad record never stops the
// consumer.
func (o *OpsConsumer) Run(ctx context.Context, ch <-chan models.ErrorRecord) {
	for record := range ch {
		o.handle(ctx, record)
	}
}

func (o *OpsConsumer) handle(ctx context.Context, record models.ErrorRecord) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("ops consumer recovered from panic", "error_id", record.ErrorID, "panic", r)
		}
	}()

	if record.Severity == models.SeverityCritical || record.Kind == models.ErrorSystem {
		sentry.CaptureException(fmt.Errorf("%s: %s", record.Kind, record.RootCause))
	}

	if o.slack == nil {
		o.logger.Warn("escalation (no slack client configured)", "error_id", record.ErrorID, "severity", record.Severity)
		return
	}

	blocks := buildEscalationBlocks(record)
	if _, err := o.slack.PostMessage(ctx, blocks, "", opsPostTimeout); err != nil {
		o.logger.Error("failed to post escalation to slack", "error_id", record.ErrorID, "error", err)
	}
}

func buildEscalationBlocks(record models.ErrorRecord) []goslack.Block {
	text := fmt.Sprintf(":rotating_light: *%s escalation* (%s)\n%s\n_query: %s_",
		record.Severity, record.Kind, record.UserMessage, record.RawPayload.Data.QueryID)

	return []goslack.Block{
		goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, text, false, false),
			nil, nil,
		),
	}
}
