package validator

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/loom/internal/adapters/catalog"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/loom/internal/adapters/logger"        //nolint:depguard // Wired in engine wiring
	"go.trai.ch/loom/internal/adapters/resourcestore" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/loom/internal/core/ports"
)

// NodeID is the unique identifier for the validator Graft node.
const NodeID graft.ID = "engine.validator"

func init() {
	graft.Register(graft.Node[*Validator]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			catalog.NodeID,
			resourcestore.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Validator, error) {
			cat, err := graft.Dep[ports.Catalog](ctx)
			if err != nil {
				return nil, err
			}
			store, err := graft.Dep[ports.ResourceStore](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(cat, store, log), nil
		},
	})
}
