package catalog

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/loom/internal/adapters/config" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/loom/internal/core/ports"
)

// NodeID is the unique identifier for the catalog Graft node.
const NodeID graft.ID = "adapter.catalog"

func init() {
	graft.Register(graft.Node[ports.Catalog]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.Catalog, error) {
			cfg, err := graft.Dep[*config.Config](ctx)
			if err != nil {
				return nil, err
			}
			return Load(cfg.Catalog.Path)
		},
	})
}
