package contextbuilder

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/loom/internal/adapters/catalog"       //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/loom/internal/adapters/resourcestore" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/loom/internal/core/ports"
)

// NodeID is the unique identifier for the context builder Graft node.
const NodeID graft.ID = "adapter.contextbuilder"

func init() {
	graft.Register(graft.Node[ports.ContextBuilder]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{catalog.NodeID, resourcestore.NodeID},
		Run: func(ctx context.Context) (ports.ContextBuilder, error) {
			cat, err := graft.Dep[ports.Catalog](ctx)
			if err != nil {
				return nil, err
			}
			store, err := graft.Dep[ports.ResourceStore](ctx)
			if err != nil {
				return nil, err
			}
			return New(cat, store), nil
		},
	})
}
