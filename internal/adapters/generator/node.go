package generator

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/loom/internal/core/ports"
)

// NodeID is the unique identifier for the generation backend Graft node.
const NodeID graft.ID = "adapter.generator"

func init() {
	graft.Register(graft.Node[ports.Generator]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.Generator, error) {
			return NewEcho(), nil
		},
	})
}
