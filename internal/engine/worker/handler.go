package worker

import (
	"context"
	"encoding/json"
	"time"

	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/zerr"
)

// GenerationPayload is the job payload for single-resource generation.
type GenerationPayload struct {
	UserID     string `json:"userId"`
	ResourceID string `json:"resourceId"`
}

// BatchPayload is the job payload for multi-resource generation.
type BatchPayload struct {
	UserID      string   `json:"userId"`
	ResourceIDs []string `json:"resourceIds"`
}

// BatchItemResult is the per-item outcome of a batch job. One failing item
// never discards already-completed items.
type BatchItemResult struct {
	ResourceID string `json:"resourceId"`
	Success    bool   `json:"success"`
	Output     string `json:"output,omitempty"`
	Error      string `json:"error,omitempty"`
}

// GenerationHandler produces one resource: it resolves the user's aggregated
// context through the cache and hands it to the generation backend. Handlers
// may run on concurrent workers, so the work is idempotent per (user,
// resource, version).
type GenerationHandler struct {
	store     ports.ResourceStore
	cache     ports.ContextCache
	builder   ports.ContextBuilder
	generator ports.Generator
	tracer    ports.Tracer
	log       ports.Logger
}

// NewGenerationHandler creates a handler over the given collaborators.
func NewGenerationHandler(
	store ports.ResourceStore,
	cache ports.ContextCache,
	builder ports.ContextBuilder,
	generator ports.Generator,
	tracer ports.Tracer,
	log ports.Logger,
) *GenerationHandler {
	return &GenerationHandler{
		store:     store,
		cache:     cache,
		builder:   builder,
		generator: generator,
		tracer:    tracer,
		log:       log,
	}
}

// Handle implements ports.Handler. A returned error feeds the queue's retry
// machinery.
func (h *GenerationHandler) Handle(ctx context.Context, job *domain.Job, progress ports.ProgressFunc) ([]byte, error) {
	ctx, span := h.tracer.Start(ctx, "worker.generate")
	defer span.End()

	var payload GenerationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		err = zerr.With(zerr.Wrap(err, "malformed generation payload"), "job_id", job.ID)
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("user_id", payload.UserID)
	span.SetAttribute("resource_id", payload.ResourceID)

	progress(5)
	out, err := h.generate(ctx, payload.UserID, payload.ResourceID, progress)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	progress(95)
	return out, nil
}

// generate runs one resource generation: version hash, cache lookup, context
// build on miss, then the backend call.
func (h *GenerationHandler) generate(ctx context.Context, userID, resourceID string, progress ports.ProgressFunc) ([]byte, error) {
	ids, err := h.store.ListGeneratedIDs(ctx, userID)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read generated resources"), "user_id", userID)
	}
	version := domain.ResourceVersion(ids)
	progress(20)

	aggregated, err := h.aggregatedContext(ctx, userID, resourceID, version)
	if err != nil {
		return nil, err
	}
	progress(50)

	out, err := h.generator.Generate(ctx, resourceID, aggregated)
	if err != nil {
		return nil, zerr.With(zerr.With(zerr.Wrap(err, "generation backend failed"),
			"user_id", userID), "resource_id", resourceID)
	}
	return out, nil
}

// aggregatedContext returns the cached context payload, building and caching
// it on a miss. Cache failures are logged and degrade to a rebuild; a cache
// write failure is never fatal.
func (h *GenerationHandler) aggregatedContext(ctx context.Context, userID, resourceID, version string) ([]byte, error) {
	entry, err := h.cache.Get(ctx, userID, resourceID, version)
	if err != nil {
		h.log.Warn("context cache read failed", "user_id", userID, "resource_id", resourceID, "error", err)
	}
	if entry != nil {
		h.log.Info("context cache hit", "user_id", userID, "resource_id", resourceID)
		return entry.Payload, nil
	}

	start := time.Now()
	payload, meta, err := h.builder.Build(ctx, userID, resourceID)
	if err != nil {
		return nil, zerr.With(zerr.With(zerr.Wrap(err, "failed to build aggregated context"),
			"user_id", userID), "resource_id", resourceID)
	}
	if meta.BuildTime == 0 {
		meta.BuildTime = time.Since(start)
	}

	if err := h.cache.Set(ctx, domain.ContextEntry{
		UserID:     userID,
		ResourceID: resourceID,
		Version:    version,
		Payload:    payload,
		Metadata:   meta,
	}); err != nil {
		h.log.Warn("context cache write failed", "user_id", userID, "resource_id", resourceID, "error", err)
	}
	return payload, nil
}

// BatchHandler generates several resources in one job, reporting per-item
// outcomes in the result instead of failing the job.
type BatchHandler struct {
	generation *GenerationHandler
	log        ports.Logger
}

// NewBatchHandler creates a batch handler delegating to the given
// single-resource handler.
func NewBatchHandler(generation *GenerationHandler, log ports.Logger) *BatchHandler {
	return &BatchHandler{generation: generation, log: log}
}

// Handle implements ports.Handler. The returned result is a per-item
// success/failure array; item failures never produce a job error, so the
// queue's retry machinery only sees malformed payloads.
func (b *BatchHandler) Handle(ctx context.Context, job *domain.Job, progress ports.ProgressFunc) ([]byte, error) {
	var payload BatchPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "malformed batch payload"), "job_id", job.ID)
	}

	results := make([]BatchItemResult, 0, len(payload.ResourceIDs))
	for i, resourceID := range payload.ResourceIDs {
		out, err := b.generation.generate(ctx, payload.UserID, resourceID, func(int) {})
		if err != nil {
			b.log.Warn("batch item failed", "user_id", payload.UserID, "resource_id", resourceID, "error", err)
			results = append(results, BatchItemResult{ResourceID: resourceID, Error: err.Error()})
		} else {
			results = append(results, BatchItemResult{ResourceID: resourceID, Success: true, Output: string(out)})
		}
		progress((i + 1) * 100 / len(payload.ResourceIDs))
	}

	encoded, err := json.Marshal(results)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode batch results")
	}
	return encoded, nil
}
