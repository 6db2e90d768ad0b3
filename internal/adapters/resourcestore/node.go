package resourcestore

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/loom/internal/adapters/config"   //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/loom/internal/adapters/postgres" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/loom/internal/core/ports"
)

// NodeID is the unique identifier for the resource store Graft node.
const NodeID graft.ID = "adapter.resourcestore"

func init() {
	graft.Register(graft.Node[ports.ResourceStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, postgres.NodeID},
		Run: func(ctx context.Context) (ports.ResourceStore, error) {
			cfg, err := graft.Dep[*config.Config](ctx)
			if err != nil {
				return nil, err
			}
			if cfg.Queue.Backend == config.BackendPostgres {
				client, err := graft.Dep[*postgres.Client](ctx)
				if err != nil {
					return nil, err
				}
				return NewPostgres(client), nil
			}
			return NewMemory(), nil
		},
	})
}
