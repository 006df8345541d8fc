// Package pipeline drives a Job through its parse -> query -> validate ->
// artifact stage sequence, keeping the job registry updated, and dispatches
// any stage failure to the error handler, honoring its resume/await_user/
// escalate directive.
//
// Concurrency model: one goroutine per in-flight job, with a registry of
// context.CancelFuncs keyed by job ID so a cancellation request can stop
// the right job cooperatively between stages.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tarsy-labs/chartpilot/pkg/artifact"
	"github.com/tarsy-labs/chartpilot/pkg/descindex"
	"github.com/tarsy-labs/chartpilot/pkg/errorhandler"
	"github.com/tarsy-labs/chartpilot/pkg/llmgateway"
	"github.com/tarsy-labs/chartpilot/pkg/models"
	"github.com/tarsy-labs/chartpilot/pkg/query"
	"github.com/tarsy-labs/chartpilot/pkg/registry"
	"github.com/tarsy-labs/chartpilot/pkg/slack"
)

// Stage progress percentages reported on the job as it advances.
const (
	progressRegistered = 0
	progressStarted    = 10
	progressParsed     = 25
	progressQueried    = 50
	progressValidated  = 75
	progressArtifact   = 100
)

// maxStageRetries caps a failing stage to at most one retry before it's
// treated as terminal.
const maxStageRetries = 1

// CatalogProvider is the subset of pkg/catalog.Introspector the
// orchestrator needs.
type CatalogProvider interface {
	GetCatalog(ctx context.Context) (*models.Catalog, error)
}

// Masker redacts secret-shaped substrings from text before it's stored in
// an ErrorRecord or surfaced to a user. Error messages bubbling up from the
// catalog or query stages can embed raw connection strings or literal
// column values, so they pass through a Masker, when one is configured,
// before reaching the error handler (pkg/masking.Service implements this).
type Masker interface {
	Mask(text string) string
}

// DescIndexQuerier is the subset of pkg/descindex.Index the orchestrator
// uses to enrich the catalog description handed to the query stage with
// LLM-authored business-context prose, when a descriptive index is
// configured.
type DescIndexQuerier interface {
	Query(ctx context.Context, queryText string, k int, threshold float64) ([]descindex.Match, error)
}

// Orchestrator owns every collaborator needed to drive a job end to end.
type Orchestrator struct {
	Registry     *registry.Registry
	Catalog      CatalogProvider
	Query        *query.Engine
	Gateway      llmgateway.Gateway
	ErrorHandler *errorhandler.Handler
	Clock        clockwork.Clock

	// Masker is optional; a nil Masker leaves error text unredacted.
	Masker Masker

	// DescIndex is optional; a nil DescIndex skips business-context
	// enrichment of the catalog description.
	DescIndex DescIndexQuerier

	// Notifier is optional; a nil *slack.Service leaves job submission and
	// completion unannounced (Service's own methods are nil-safe, so this
	// field never needs a guard at the call site).
	Notifier *slack.Service

	mu         sync.Mutex
	cancels    map[string]context.CancelFunc
	threadTS   map[string]string
	threadTSMu sync.Mutex
}

// maskText redacts s through Masker when one is configured, otherwise
// returns s unchanged.
func (o *Orchestrator) maskText(s string) string {
	if o.Masker == nil {
		return s
	}
	return o.Masker.Mask(s)
}

// New builds an Orchestrator from its collaborators.
func New(reg *registry.Registry, catalogProvider CatalogProvider, queryEngine *query.Engine, gateway llmgateway.Gateway, errHandler *errorhandler.Handler, clock clockwork.Clock) *Orchestrator {
	return &Orchestrator{
		Registry:     reg,
		Catalog:      catalogProvider,
		Query:        queryEngine,
		Gateway:      gateway,
		ErrorHandler: errHandler,
		Clock:        clock,
		cancels:      make(map[string]context.CancelFunc),
		threadTS:     make(map[string]string),
	}
}

// Submit registers a new job for prompt and starts driving it in its own
// goroutine, returning immediately with the registered Job.
func (o *Orchestrator) Submit(ctx context.Context, prompt models.Prompt) *models.Job {
	job := o.Registry.Create(prompt)
	if ts := o.Notifier.NotifyJobStarted(ctx, slack.JobStartedInput{JobID: job.ID, Prompt: prompt.Text}); ts != "" {
		o.threadTSMu.Lock()
		o.threadTS[job.ID] = ts
		o.threadTSMu.Unlock()
	}
	go o.Run(ctx, job.ID, prompt)
	return job
}

// Cancel requests cooperative cancellation of jobID. Returns true if a
// running job was found and signaled.
func (o *Orchestrator) Cancel(jobID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	cancel, ok := o.cancels[jobID]
	if !ok {
		return false
	}
	cancel()
	return true
}

func (o *Orchestrator) registerCancel(jobID string, cancel context.CancelFunc) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancels[jobID] = cancel
}

func (o *Orchestrator) unregisterCancel(jobID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.cancels, jobID)
}

// Run drives jobID through every stage to a terminal status. It blocks
// until the job finishes, so callers invoke it in its own goroutine (see
// Submit).
func (o *Orchestrator) Run(parent context.Context, jobID string, prompt models.Prompt) {
	ctx, cancel := context.WithCancel(parent)
	o.registerCancel(jobID, cancel)
	defer o.unregisterCancel(jobID)
	defer cancel()

	o.setProgress(jobID, progressStarted, models.JobProcessing)
	if o.checkCancelled(ctx, jobID) {
		return
	}

	intent, catalog, ok := o.runParseStage(ctx, jobID, prompt)
	if !ok {
		return
	}
	o.setProgress(jobID, progressParsed, models.JobProcessing)
	if o.checkCancelled(ctx, jobID) {
		return
	}

	dataset, ok := o.runQueryStage(ctx, jobID, prompt, intent, catalog)
	if !ok {
		return
	}
	o.setProgress(jobID, progressQueried, models.JobProcessing)
	if o.checkCancelled(ctx, jobID) {
		return
	}

	dataset, ok = o.runValidateStage(ctx, jobID, prompt, dataset)
	if !ok {
		return
	}
	o.setProgress(jobID, progressValidated, models.JobProcessing)
	if o.checkCancelled(ctx, jobID) {
		return
	}

	o.runArtifactStage(ctx, jobID, prompt, dataset)
}

// checkCancelled marks jobID cancelled and returns true if ctx was
// cancelled since the last stage boundary. A job may be cancelled while
// pending or processing; cancellation is cooperative, taking effect at the
// next stage boundary rather than interrupting one mid-flight.
func (o *Orchestrator) checkCancelled(ctx context.Context, jobID string) bool {
	select {
	case <-ctx.Done():
		now := o.Clock.Now()
		_, _ = o.Registry.Update(jobID, func(j *models.Job) {
			j.Status = models.JobCancelled
			j.CompletedAt = &now
		})
		o.notifyCompleted(context.Background(), jobID, slack.JobCompletedInput{
			JobID:  jobID,
			Status: string(models.JobCancelled),
		})
		return true
	default:
		return false
	}
}

// notifyCompleted posts a terminal notification through Notifier, threaded
// under the job's start notification when one was posted, then forgets
// the thread timestamp.
func (o *Orchestrator) notifyCompleted(ctx context.Context, jobID string, input slack.JobCompletedInput) {
	o.threadTSMu.Lock()
	input.ThreadTS = o.threadTS[jobID]
	delete(o.threadTS, jobID)
	o.threadTSMu.Unlock()

	o.Notifier.NotifyJobCompleted(ctx, input)
}

func (o *Orchestrator) setProgress(jobID string, progress int, status models.JobStatus) {
	_, _ = o.Registry.Update(jobID, func(j *models.Job) {
		j.Progress = progress
		j.Status = status
	})
}

func (o *Orchestrator) completeWithArtifact(jobID string, art models.Artifact, cacheHit bool) {
	now := o.Clock.Now()
	_, _ = o.Registry.Update(jobID, func(j *models.Job) {
		j.Status = models.JobCompleted
		j.Progress = progressArtifact
		j.CompletedAt = &now
		j.Result = &models.JobResult{
			ArtifactCode:  art.Code,
			ComponentName: art.Name,
			ChartType:     art.ChartType,
			CacheHit:      cacheHit,
		}
	})
	o.notifyCompleted(context.Background(), jobID, slack.JobCompletedInput{
		JobID:         jobID,
		Status:        string(models.JobCompleted),
		ComponentName: art.Name,
		ChartType:     art.ChartType,
	})
}

func (o *Orchestrator) failJob(jobID, userMessage string, suggestions []string) {
	now := o.Clock.Now()
	_, _ = o.Registry.Update(jobID, func(j *models.Job) {
		j.Status = models.JobFailed
		j.CompletedAt = &now
		j.ErrorMessage = userMessage
		j.Suggestions = suggestions
	})
	o.notifyCompleted(context.Background(), jobID, slack.JobCompletedInput{
		JobID:        jobID,
		Status:       string(models.JobFailed),
		ErrorMessage: userMessage,
	})
}

// sleepFor is a context-aware wait used for resume-with-backoff retries.
// Returns false if ctx was cancelled first.
func sleepFor(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-clock.After(d):
		return true
	}
}

func artifactSynthesize(ctx context.Context, gateway llmgateway.Gateway, dataset models.NormalizedDataset, prompt string) models.Artifact {
	return artifact.Synthesize(ctx, gateway, dataset, prompt)
}
