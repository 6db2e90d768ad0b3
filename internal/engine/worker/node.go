package worker

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/loom/internal/adapters/contextbuilder" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/loom/internal/adapters/contextcache"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/loom/internal/adapters/generator"      //nolint:depguard // Wired in engine wiring
	"go.trai.ch/loom/internal/adapters/logger"         //nolint:depguard // Wired in engine wiring
	"go.trai.ch/loom/internal/adapters/resourcestore"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/loom/internal/adapters/telemetry"      //nolint:depguard // Wired in engine wiring
	"go.trai.ch/loom/internal/core/ports"
)

// Handlers bundles the job handlers the orchestrator binds to its queues.
type Handlers struct {
	Generation ports.Handler
	Batch      ports.Handler
}

// NodeID is the unique identifier for the worker handlers Graft node.
const NodeID graft.ID = "engine.worker"

func init() {
	graft.Register(graft.Node[*Handlers]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			resourcestore.NodeID,
			contextcache.NodeID,
			contextbuilder.NodeID,
			generator.NodeID,
			telemetry.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Handlers, error) {
			store, err := graft.Dep[ports.ResourceStore](ctx)
			if err != nil {
				return nil, err
			}
			cache, err := graft.Dep[ports.ContextCache](ctx)
			if err != nil {
				return nil, err
			}
			builder, err := graft.Dep[ports.ContextBuilder](ctx)
			if err != nil {
				return nil, err
			}
			gen, err := graft.Dep[ports.Generator](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			generation := NewGenerationHandler(store, cache, builder, gen, tracer, log)
			batch := NewBatchHandler(generation, log)
			return &Handlers{
				Generation: generation.Handle,
				Batch:      batch.Handle,
			}, nil
		},
	})
}
