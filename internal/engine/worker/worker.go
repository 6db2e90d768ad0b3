// Package worker binds a queue to a domain handler and translates handler
// outcomes into job-state transitions and progress updates.
package worker

import (
	"sync"

	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/zerr"
)

// Worker binds exactly one queue to exactly one handler. On the in-memory
// backend Run is bookkeeping only, since the queue itself drives execution.
type Worker struct {
	queue   ports.Queue
	handler ports.Handler
	log     ports.Logger

	mu      sync.Mutex
	running bool
	closed  bool
}

// New creates a worker for the given queue and handler.
func New(queue ports.Queue, handler ports.Handler, log ports.Logger) *Worker {
	return &Worker{
		queue:   queue,
		handler: handler,
		log:     log,
	}
}

// Queue returns the bound queue.
func (w *Worker) Queue() ports.Queue {
	return w.queue
}

// Run registers the handler and marks the worker ready to accept work.
func (w *Worker) Run() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return zerr.With(domain.ErrQueueClosed, "queue", w.queue.Name())
	}
	if w.running {
		return zerr.With(domain.ErrHandlerRegistered, "queue", w.queue.Name())
	}
	if err := w.queue.Process(w.handler); err != nil {
		return err
	}
	w.running = true
	w.log.Info("worker started", "queue", w.queue.Name())
	return nil
}

// Close stops accepting new work and detaches from the queue. Jobs already
// handed to the handler run to completion.
func (w *Worker) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	w.running = false
	w.log.Info("worker stopped", "queue", w.queue.Name())
	return w.queue.Close()
}
