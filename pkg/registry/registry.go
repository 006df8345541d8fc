// Package registry is the job registry: an in-memory, UUID-keyed store of
// Job state, with background TTL eviction, built on a map+RWMutex shape.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/tarsy-labs/chartpilot/pkg/metrics"
	"github.com/tarsy-labs/chartpilot/pkg/models"
)

// ErrNotFound is returned when a job ID has no entry (never existed, or was
// already evicted/deleted).
var ErrNotFound = errors.New("registry: job not found")

// ErrNotTerminal is returned by Delete when the job is still pending or
// processing: jobs can only be deleted once terminal.
var ErrNotTerminal = errors.New("registry: job is not in a terminal status")

// DefaultTTL is how long a terminal job is retained before the sweep
// evicts it. Configurable.
const DefaultTTL = 24 * time.Hour

// Registry holds every in-flight and recently-finished Job.
type Registry struct {
	mu    sync.RWMutex
	jobs  map[string]*models.Job
	ttl   time.Duration
	clock clockwork.Clock
}

// New creates a Registry that evicts terminal jobs ttl after they
// finished. Pass clockwork.NewRealClock() in production.
func New(ttl time.Duration, clock clockwork.Clock) *Registry {
	return &Registry{
		jobs:  make(map[string]*models.Job),
		ttl:   ttl,
		clock: clock,
	}
}

// Create registers a new pending Job for prompt and returns it.
func (r *Registry) Create(prompt models.Prompt) *models.Job {
	job := &models.Job{
		ID:          uuid.New().String(),
		SubmittedAt: r.clock.Now(),
		Status:      models.JobPending,
		Progress:    0,
		Prompt:      prompt,
	}

	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()

	metrics.QueueDepth.Inc()

	return job.Clone()
}

// Get returns a deep-enough copy of the job, or false if it doesn't exist.
func (r *Registry) Get(id string) (*models.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, false
	}
	return job.Clone(), true
}

// Update mutates the job in place via fn and returns the updated copy.
// fn runs under the registry's write lock; it must not retain job beyond
// the call.
func (r *Registry) Update(id string, fn func(job *models.Job)) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	wasTerminal := job.Status.Terminal()
	fn(job)
	if !wasTerminal && job.Status.Terminal() {
		metrics.QueueDepth.Dec()
		metrics.JobsTotal.WithLabelValues(string(job.Status)).Inc()
	}

	return job.Clone(), nil
}

// List returns per-job summaries (prompts truncated to 50 characters),
// ordered by submission time, oldest first.
func (r *Registry) List() []models.Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Summary, 0, len(r.jobs))
	for _, job := range r.jobs {
		out = append(out, job.ToSummary())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out
}

// Delete removes a job. Rejected while the job is pending/processing.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !job.Status.Terminal() {
		return fmt.Errorf("%w: job %s is in status %q", ErrNotTerminal, id, job.Status)
	}
	delete(r.jobs, id)
	return nil
}

// Sweep evicts terminal jobs whose CompletedAt is older than the
// registry's TTL. Intended to run periodically from a background loop
// (see Service in sweep.go).
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	evicted := 0
	for id, job := range r.jobs {
		if !job.Status.Terminal() || job.CompletedAt == nil {
			continue
		}
		if now.Sub(*job.CompletedAt) >= r.ttl {
			delete(r.jobs, id)
			evicted++
		}
	}
	return evicted
}
