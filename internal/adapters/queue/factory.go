package queue

import (
	"time"

	"go.trai.ch/loom/internal/adapters/ident"
	"go.trai.ch/loom/internal/adapters/postgres"
	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
)

// Factory builds queues on the backend chosen at startup. The choice is
// made once; every queue the factory produces shares it.
type Factory struct {
	durable      bool
	client       *postgres.Client
	ids          *ident.Generator
	log          ports.Logger
	workers      int
	pollInterval time.Duration
}

// NewFactory creates a queue factory. When client has no connection the
// factory produces in-memory queues.
func NewFactory(client *postgres.Client, ids *ident.Generator, log ports.Logger, workers int, pollInterval time.Duration) *Factory {
	return &Factory{
		durable:      client.Enabled(),
		client:       client,
		ids:          ids,
		log:          log,
		workers:      workers,
		pollInterval: pollInterval,
	}
}

// New creates a queue with the given name and per-queue defaults.
func (f *Factory) New(name string, defaults domain.QueueDefaults) ports.Queue {
	if f.durable {
		return NewPostgres(f.client, name, defaults, f.ids, f.log, f.workers, f.pollInterval)
	}
	return NewMemory(name, defaults, f.ids, f.log)
}
