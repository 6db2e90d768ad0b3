// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/loom/internal/adapters/catalog"
	_ "go.trai.ch/loom/internal/adapters/config"
	_ "go.trai.ch/loom/internal/adapters/contextbuilder"
	_ "go.trai.ch/loom/internal/adapters/contextcache"
	_ "go.trai.ch/loom/internal/adapters/generator"
	_ "go.trai.ch/loom/internal/adapters/ident"
	_ "go.trai.ch/loom/internal/adapters/logger"
	_ "go.trai.ch/loom/internal/adapters/postgres"
	_ "go.trai.ch/loom/internal/adapters/queue"
	_ "go.trai.ch/loom/internal/adapters/resourcestore"
	_ "go.trai.ch/loom/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/loom/internal/app"
	_ "go.trai.ch/loom/internal/engine/validator"
	_ "go.trai.ch/loom/internal/engine/worker"
)
