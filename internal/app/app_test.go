package app_test

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/loom/internal/adapters/catalog"
	"go.trai.ch/loom/internal/adapters/contextbuilder"
	"go.trai.ch/loom/internal/adapters/contextcache"
	"go.trai.ch/loom/internal/adapters/generator"
	"go.trai.ch/loom/internal/adapters/ident"
	"go.trai.ch/loom/internal/adapters/logger"
	"go.trai.ch/loom/internal/adapters/postgres"
	"go.trai.ch/loom/internal/adapters/queue"
	"go.trai.ch/loom/internal/adapters/resourcestore"
	"go.trai.ch/loom/internal/adapters/telemetry"
	"go.trai.ch/loom/internal/app"
	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/engine/validator"
	"go.trai.ch/loom/internal/engine/worker"
)

type fixture struct {
	app   *app.App
	store *resourcestore.Memory
	cache *contextcache.Memory
}

// newFixture wires a complete in-memory orchestrator over the a/b/c graph:
// a has no dependencies, b requires a, c requires a and b.
func newFixture(t *testing.T) fixture {
	t.Helper()

	cat, err := catalog.New([]domain.ResourceDefinition{
		{ID: "a", DisplayName: "A", Tier: 1, Category: domain.CategoryCore, EstimatedCost: 1},
		{ID: "b", DisplayName: "B", Tier: 2, RequiredDependencies: []string{"a"}, EstimatedCost: 2},
		{ID: "c", DisplayName: "C", Tier: 3, RequiredDependencies: []string{"a", "b"}, EstimatedCost: 4},
	})
	require.NoError(t, err)

	log := logger.NewWithWriter(io.Discard)
	store := resourcestore.NewMemory()
	cache := contextcache.NewMemory(domain.MaxCacheAge)
	builder := contextbuilder.New(cat, store)
	ids, err := ident.New(1)
	require.NoError(t, err)

	factory := queue.NewFactory(&postgres.Client{}, ids, log, 1, 10*time.Millisecond)

	generation := worker.NewGenerationHandler(
		store, cache, builder, generator.NewEcho(), telemetry.NewNoop(), log)
	handlers := &worker.Handlers{
		Generation: generation.Handle,
		Batch:      worker.NewBatchHandler(generation, log).Handle,
	}

	a := app.New(cat, validator.New(cat, store, log), store, cache, builder, factory, handlers, log)
	t.Cleanup(func() { _ = a.Close() })

	return fixture{app: a, store: store, cache: cache}
}

func (f fixture) generate(t *testing.T, userID string, resourceIDs ...string) {
	t.Helper()
	for _, id := range resourceIDs {
		require.NoError(t, f.store.RecordGenerated(context.Background(), domain.GeneratedResource{
			UserID:     userID,
			ResourceID: id,
		}))
	}
}

func TestPlanGeneration(t *testing.T) {
	f := newFixture(t)
	f.generate(t, "u1", "a")

	plan := f.app.PlanGeneration(context.Background(), "u1", "c")
	assert.False(t, plan.Valid)
	assert.Equal(t, []string{"b", "c"}, plan.SuggestedOrder)

	f.generate(t, "u1", "b")
	plan = f.app.PlanGeneration(context.Background(), "u1", "c")
	assert.True(t, plan.Valid)
}

func TestEnqueueGenerationDependencyFirst(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.app.Start())
		f.generate(t, "u1", "a")

		jobs, err := f.app.EnqueueGeneration(context.Background(), "u1", "c")
		require.NoError(t, err)
		require.Len(t, jobs, 2)

		synctest.Wait()

		for _, job := range jobs {
			got, err := f.app.JobStatus(context.Background(), job.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.JobCompleted, got.State)
			assert.NotEmpty(t, got.Result)
		}
	})
}

func TestEnqueueResourceConventionalID(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.app.Start())

		job, err := f.app.EnqueueResource(context.Background(), "u1", "a")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(job.ID, "generation-u1-"))

		synctest.Wait()

		got, err := f.app.JobStatus(context.Background(), job.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.JobCompleted, got.State)
		assert.Equal(t, 100, got.Progress)
	})
}

func TestEnqueueUnknownResource(t *testing.T) {
	f := newFixture(t)

	_, err := f.app.EnqueueResource(context.Background(), "u1", "ghost")
	require.ErrorIs(t, err, domain.ErrResourceNotFound)

	_, err = f.app.EnqueueBatch(context.Background(), "u1", []string{"a", "ghost"})
	require.ErrorIs(t, err, domain.ErrResourceNotFound)
}

func TestEnqueueBatchPerItemOutcomes(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.app.Start())
		f.generate(t, "u1", "a")

		job, err := f.app.EnqueueBatch(context.Background(), "u1", []string{"b", "c"})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(job.ID, "batch-u1-"))

		synctest.Wait()

		got, err := f.app.JobStatus(context.Background(), job.ID)
		require.NoError(t, err)
		require.Equal(t, domain.JobCompleted, got.State)

		var items []worker.BatchItemResult
		require.NoError(t, json.Unmarshal(got.Result, &items))
		require.Len(t, items, 2)
		assert.Equal(t, "b", items[0].ResourceID)
		assert.Equal(t, "c", items[1].ResourceID)
	})
}

func TestRecordGeneratedInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.cache.Set(ctx, domain.ContextEntry{
		UserID:     "u1",
		ResourceID: "b",
		Version:    "v1",
		Payload:    []byte("stale"),
	}))

	require.NoError(t, f.app.RecordGenerated(ctx, domain.GeneratedResource{
		UserID:     "u1",
		ResourceID: "a",
		Summary:    "foundation",
	}))

	ids, err := f.store.ListGeneratedIDs(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)

	cached, err := f.cache.Get(ctx, "u1", "b", "v1")
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestRecordGeneratedUnknownResource(t *testing.T) {
	f := newFixture(t)

	err := f.app.RecordGenerated(context.Background(), domain.GeneratedResource{
		UserID:     "u1",
		ResourceID: "ghost",
	})
	require.ErrorIs(t, err, domain.ErrResourceNotFound)
}

func TestJobStatusNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.app.JobStatus(context.Background(), "no-such-job")
	require.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestWarmPredicted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.generate(t, "u1", "a")

	warmed, err := f.app.WarmPredicted(ctx, "u1", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, warmed)

	// Only b is available; its context is now cached at the current version.
	version := domain.ResourceVersion([]string{"a"})
	cached, err := f.cache.Get(ctx, "u1", "b", version)
	require.NoError(t, err)
	assert.NotNil(t, cached)
}

func TestQueueHealth(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)

		// No workers started: submitted jobs stay waiting.
		_, err := f.app.EnqueueResource(context.Background(), "u1", "a")
		require.NoError(t, err)

		health, err := f.app.QueueHealth(context.Background())
		require.NoError(t, err)
		require.Contains(t, health, app.QueueGeneration)
		require.Contains(t, health, app.QueueBatch)
		assert.Equal(t, 1, health[app.QueueGeneration].Waiting)
		assert.Equal(t, 0, health[app.QueueBatch].Waiting)
	})
}

func TestCleanupCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.cache.Set(ctx, domain.ContextEntry{
		UserID:     "u1",
		ResourceID: "a",
		Version:    "v1",
		Payload:    []byte("old"),
		CachedAt:   time.Now().Add(-25 * time.Hour),
	}))

	removed, err := f.app.CleanupCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}
