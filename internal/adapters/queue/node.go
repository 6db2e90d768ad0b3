package queue

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/loom/internal/adapters/config" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/loom/internal/adapters/ident"
	"go.trai.ch/loom/internal/adapters/logger"
	"go.trai.ch/loom/internal/adapters/postgres" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/loom/internal/core/ports"
)

// NodeID is the unique identifier for the queue factory Graft node.
const NodeID graft.ID = "adapter.queue"

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, postgres.NodeID, ident.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Factory, error) {
			cfg, err := graft.Dep[*config.Config](ctx)
			if err != nil {
				return nil, err
			}
			client, err := graft.Dep[*postgres.Client](ctx)
			if err != nil {
				return nil, err
			}
			ids, err := graft.Dep[*ident.Generator](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(client, ids, log, cfg.Queue.Workers, cfg.Queue.PollInterval.Std()), nil
		},
	})
}
