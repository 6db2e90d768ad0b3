package commands_test

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/loom/cmd/loom/commands"
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

func newCLI(t *testing.T) (*commands.CLI, *bytes.Buffer) {
	t.Helper()

	cat, err := catalog.New([]domain.ResourceDefinition{
		{ID: "a", DisplayName: "A", Tier: 1, Category: domain.CategoryCore},
		{ID: "b", DisplayName: "B", Tier: 2, RequiredDependencies: []string{"a"}},
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

	cli := commands.New(a)
	var out bytes.Buffer
	cli.SetOut(&out)
	return cli, &out
}

func execute(t *testing.T, cli *commands.CLI, args ...string) {
	t.Helper()
	cli.SetArgs(args)
	require.NoError(t, cli.Execute(context.Background()))
}

func TestVersionCommand(t *testing.T) {
	cli, out := newCLI(t)
	execute(t, cli, "version")
	assert.Contains(t, out.String(), "loom version")
}

func TestValidateCommandBlocked(t *testing.T) {
	cli, out := newCLI(t)
	execute(t, cli, "validate", "u1", "b")
	assert.Contains(t, out.String(), "blocked")
	assert.Contains(t, out.String(), "a -> b")
}

func TestValidateCommandReady(t *testing.T) {
	cli, out := newCLI(t)
	execute(t, cli, "record", "u1", "a", "--summary", "done")
	execute(t, cli, "validate", "u1", "b")
	assert.Contains(t, out.String(), "b: ready")
}

func TestRecommendCommand(t *testing.T) {
	cli, out := newCLI(t)
	execute(t, cli, "recommend", "u1", "--limit", "1")
	assert.Contains(t, out.String(), "1. a")
}

func TestHealthCommand(t *testing.T) {
	cli, out := newCLI(t)
	execute(t, cli, "health")
	assert.Contains(t, out.String(), "generation:")
	assert.Contains(t, out.String(), "batch:")
}

func TestUnknownResourceFails(t *testing.T) {
	cli, _ := newCLI(t)
	cli.SetArgs([]string{"record", "u1", "ghost"})
	require.Error(t, cli.Execute(context.Background()))
}
