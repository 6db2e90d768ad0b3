// Package app composes the orchestration core into one explicitly
// constructed object owned by the process's composition root.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.trai.ch/loom/internal/adapters/contextcache"
	"go.trai.ch/loom/internal/adapters/queue"
	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/loom/internal/engine/validator"
	"go.trai.ch/loom/internal/engine/worker"
	"go.trai.ch/zerr"
)

// Queue names. Job ids produced by the enqueue helpers start with the queue
// name, letting a status lookup route to the right queue from the id alone.
const (
	QueueGeneration = "generation"
	QueueBatch      = "batch"
)

// App is the resource orchestration core: validator, cache, queues, and
// workers behind one surface. It holds no hidden shared state; everything is
// passed in at construction.
type App struct {
	catalog   ports.Catalog
	validator *validator.Validator
	store     ports.ResourceStore
	cache     ports.ContextCache
	builder   ports.ContextBuilder
	log       ports.Logger

	generation ports.Queue
	batch      ports.Queue
	workers    []*worker.Worker
}

// New wires the orchestrator. The queue factory has already fixed the
// backend choice; both queues share it.
func New(
	catalog ports.Catalog,
	val *validator.Validator,
	store ports.ResourceStore,
	cache ports.ContextCache,
	builder ports.ContextBuilder,
	factory *queue.Factory,
	handlers *worker.Handlers,
	log ports.Logger,
) *App {
	generation := factory.New(QueueGeneration, domain.GenerationQueueDefaults())
	batch := factory.New(QueueBatch, domain.BatchQueueDefaults())

	return &App{
		catalog:    catalog,
		validator:  val,
		store:      store,
		cache:      cache,
		builder:    builder,
		log:        log,
		generation: generation,
		batch:      batch,
		workers: []*worker.Worker{
			worker.New(generation, handlers.Generation, log),
			worker.New(batch, handlers.Batch, log),
		},
	}
}

// Start marks all workers ready to accept work.
func (a *App) Start() error {
	for _, w := range a.workers {
		if err := w.Run(); err != nil {
			return err
		}
	}
	return nil
}

// Close stops all workers. Jobs already handed to a handler run to
// completion.
func (a *App) Close() error {
	var firstErr error
	for _, w := range a.workers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// PlanGeneration reports whether the target can be generated for the user,
// with missing dependencies, suggested order, and cost totals.
func (a *App) PlanGeneration(ctx context.Context, userID, targetID string) domain.ValidationResult {
	return a.validator.Validate(ctx, userID, targetID)
}

// ValidateBatch validates each id independently and aggregates totals.
func (a *App) ValidateBatch(ctx context.Context, userID string, ids []string) domain.BatchResult {
	return a.validator.ValidateBatch(ctx, userID, ids)
}

// AvailableResources lists what the user could generate right now.
func (a *App) AvailableResources(ctx context.Context, userID string) ([]domain.AvailableResource, error) {
	return a.validator.AvailableResources(ctx, userID)
}

// RecommendNext ranks available resources and returns the top limit entries.
func (a *App) RecommendNext(ctx context.Context, userID string, limit int) ([]domain.Recommendation, error) {
	return a.validator.RecommendNext(ctx, userID, limit)
}

// EnqueueResource submits one generation job for the target resource without
// validating its dependencies. The job id follows the
// {queue}-{userId}-{epochMillis} convention.
func (a *App) EnqueueResource(ctx context.Context, userID, resourceID string) (*domain.Job, error) {
	return a.enqueueGeneration(ctx, userID, resourceID, conventionalID(QueueGeneration, userID))
}

// EnqueueGeneration validates the target and submits one job per entry of
// the suggested order, dependency-first. Submission is sequential but the
// queue does not enforce that a dependency job completes before its
// dependent runs; callers needing that must poll between submissions.
func (a *App) EnqueueGeneration(ctx context.Context, userID, targetID string) ([]*domain.Job, error) {
	plan := a.validator.Validate(ctx, userID, targetID)
	if plan.Err != "" {
		return nil, zerr.With(zerr.With(zerr.New(plan.Err), "user_id", userID), "resource_id", targetID)
	}

	jobs := make([]*domain.Job, 0, len(plan.SuggestedOrder))
	for _, id := range plan.SuggestedOrder {
		job, err := a.enqueueGeneration(ctx, userID, id, "")
		if err != nil {
			return jobs, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (a *App) enqueueGeneration(ctx context.Context, userID, resourceID, jobID string) (*domain.Job, error) {
	if _, err := a.catalog.Lookup(resourceID); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(worker.GenerationPayload{UserID: userID, ResourceID: resourceID})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode generation payload")
	}
	return a.generation.Add(ctx, payload, domain.JobOptions{JobID: jobID})
}

// EnqueueBatch submits one batch job covering all given resource ids.
// Per-item outcomes land in the job result; one failing item never discards
// the others.
func (a *App) EnqueueBatch(ctx context.Context, userID string, resourceIDs []string) (*domain.Job, error) {
	for _, id := range resourceIDs {
		if _, err := a.catalog.Lookup(id); err != nil {
			return nil, err
		}
	}
	payload, err := json.Marshal(worker.BatchPayload{UserID: userID, ResourceIDs: resourceIDs})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode batch payload")
	}
	return a.batch.Add(ctx, payload, domain.JobOptions{JobID: conventionalID(QueueBatch, userID)})
}

// RecordGenerated records a completed generation and invalidates the user's
// cached context, which the new resource has made stale. An invalidation
// failure is logged, not returned; the version hash already makes the stale
// entries unreachable.
func (a *App) RecordGenerated(ctx context.Context, rec domain.GeneratedResource) error {
	if _, err := a.catalog.Lookup(rec.ResourceID); err != nil {
		return err
	}
	if rec.GeneratedAt.IsZero() {
		rec.GeneratedAt = time.Now()
	}
	if err := a.store.RecordGenerated(ctx, rec); err != nil {
		return zerr.With(zerr.With(zerr.Wrap(err, "failed to record generated resource"),
			"user_id", rec.UserID), "resource_id", rec.ResourceID)
	}

	removed, err := a.cache.InvalidateForUser(ctx, rec.UserID)
	if err != nil {
		a.log.Warn("cache invalidation failed", "user_id", rec.UserID, "error", err)
		return nil
	}
	a.log.Info("recorded generated resource",
		"user_id", rec.UserID, "resource_id", rec.ResourceID, "cache_entries_removed", removed)
	return nil
}

// JobStatus returns a snapshot of the job with the given id. Ids following
// the {queue}- prefix convention route directly; anything else is looked up
// on every queue.
func (a *App) JobStatus(ctx context.Context, jobID string) (*domain.Job, error) {
	switch {
	case strings.HasPrefix(jobID, QueueBatch+"-"):
		return a.batch.GetJob(ctx, jobID)
	case strings.HasPrefix(jobID, QueueGeneration+"-"):
		return a.generation.GetJob(ctx, jobID)
	}

	for _, q := range []ports.Queue{a.generation, a.batch} {
		job, err := q.GetJob(ctx, jobID)
		if err == nil {
			return job, nil
		}
		if !errors.Is(err, domain.ErrJobNotFound) {
			return nil, err
		}
	}
	return nil, zerr.With(domain.ErrJobNotFound, "job_id", jobID)
}

// WarmPredicted pre-populates the context cache for the user's top
// recommended resources. Best effort; returns how many entries were written.
func (a *App) WarmPredicted(ctx context.Context, userID string, limit int) (int, error) {
	recs, err := a.validator.RecommendNext(ctx, userID, limit)
	if err != nil {
		return 0, err
	}
	if len(recs) == 0 {
		return 0, nil
	}

	ids, err := a.store.ListGeneratedIDs(ctx, userID)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to read generated resources"), "user_id", userID)
	}
	version := domain.ResourceVersion(ids)

	predicted := make([]string, 0, len(recs))
	for _, rec := range recs {
		predicted = append(predicted, rec.Definition.ID)
	}
	return contextcache.Warm(ctx, a.cache, a.builder, a.log, userID, predicted, version), nil
}

// CleanupCache sweeps expired context entries across all users.
func (a *App) CleanupCache(ctx context.Context) (int, error) {
	return a.cache.CleanupExpired(ctx, domain.MaxCacheAge)
}

// QueueHealth returns per-queue job counts.
func (a *App) QueueHealth(ctx context.Context) (map[string]domain.QueueCounts, error) {
	health := make(map[string]domain.QueueCounts, 2)
	for _, q := range []ports.Queue{a.generation, a.batch} {
		counts, err := q.Counts(ctx)
		if err != nil {
			return nil, err
		}
		health[q.Name()] = counts
	}
	return health, nil
}

func conventionalID(queueName, userID string) string {
	return fmt.Sprintf("%s-%s-%d", queueName, userID, time.Now().UnixMilli())
}
