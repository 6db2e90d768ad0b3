package config

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the config Graft node.
const NodeID graft.ID = "adapter.config"

func init() {
	graft.Register(graft.Node[*Config]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (*Config, error) {
			path := os.Getenv(EnvConfigPath)
			if path == "" {
				path = DefaultPath
			}
			return Load(path)
		},
	})
}
