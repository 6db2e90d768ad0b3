package postgres

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/loom/internal/adapters/config" //nolint:depguard // Wired in adapter wiring
)

// NodeID is the unique identifier for the postgres client Graft node.
const NodeID graft.ID = "adapter.postgres"

func init() {
	graft.Register(graft.Node[*Client]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (*Client, error) {
			cfg, err := graft.Dep[*config.Config](ctx)
			if err != nil {
				return nil, err
			}
			if cfg.Queue.Backend != config.BackendPostgres {
				// Memory backend: no connection, dependents fall back.
				return &Client{}, nil
			}
			return Connect(ctx, cfg.Database.URL)
		},
	})
}
