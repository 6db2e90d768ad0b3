package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/loom/internal/adapters/catalog"        //nolint:depguard // Wired in app layer
	"go.trai.ch/loom/internal/adapters/config"         //nolint:depguard // Wired in app layer
	"go.trai.ch/loom/internal/adapters/contextbuilder" //nolint:depguard // Wired in app layer
	"go.trai.ch/loom/internal/adapters/contextcache"   //nolint:depguard // Wired in app layer
	"go.trai.ch/loom/internal/adapters/logger"         //nolint:depguard // Wired in app layer
	"go.trai.ch/loom/internal/adapters/queue"          //nolint:depguard // Wired in app layer
	"go.trai.ch/loom/internal/adapters/resourcestore"  //nolint:depguard // Wired in app layer
	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/loom/internal/engine/validator"
	"go.trai.ch/loom/internal/engine/worker"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components bundles everything the process entry point needs.
type Components struct {
	App    *App
	Logger ports.Logger
	Config *config.Config
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			catalog.NodeID,
			validator.NodeID,
			resourcestore.NodeID,
			contextcache.NodeID,
			contextbuilder.NodeID,
			queue.NodeID,
			worker.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			config.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	cat, err := graft.Dep[ports.Catalog](ctx)
	if err != nil {
		return nil, err
	}
	val, err := graft.Dep[*validator.Validator](ctx)
	if err != nil {
		return nil, err
	}
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
	factory, err := graft.Dep[*queue.Factory](ctx)
	if err != nil {
		return nil, err
	}
	handlers, err := graft.Dep[*worker.Handlers](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	return New(cat, val, store, cache, builder, factory, handlers, log), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	application, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := graft.Dep[*config.Config](ctx)
	if err != nil {
		return nil, err
	}
	return &Components{
		App:    application,
		Logger: log,
		Config: cfg,
	}, nil
}
