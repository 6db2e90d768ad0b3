package ident

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the id generator Graft node.
const NodeID graft.ID = "adapter.ident"

func init() {
	graft.Register(graft.Node[*Generator]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (*Generator, error) {
			return NewFromEnv()
		},
	})
}
