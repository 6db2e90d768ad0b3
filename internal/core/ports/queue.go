package ports

import (
	"context"

	"go.trai.ch/loom/internal/core/domain"
)

// ProgressFunc reports handler progress in the 0-100 range.
type ProgressFunc func(percent int)

// Handler processes one job attempt. A returned error feeds the queue's
// retry machinery; a returned value completes the job with that result.
type Handler func(ctx context.Context, job *domain.Job, progress ProgressFunc) ([]byte, error)

// Queue is the uniform contract over the durable and in-memory job queue
// backends. The backend is chosen once at startup and never mixed within a
// running process.
//
//go:generate go run go.uber.org/mock/mockgen -source=queue.go -destination=mocks/mock_queue.go -package=mocks
type Queue interface {
	// Name returns the queue name.
	Name() string

	// Add submits a job. Per-queue defaults are merged with the given
	// options; the returned job carries the generated or caller-supplied id.
	Add(ctx context.Context, payload []byte, opts domain.JobOptions) (*domain.Job, error)

	// Process registers the single handler for this queue instance and
	// starts consuming. Calling it twice returns domain.ErrHandlerRegistered.
	Process(h Handler) error

	// GetJob returns a snapshot of the job with the given id, or
	// domain.ErrJobNotFound.
	GetJob(ctx context.Context, id string) (*domain.Job, error)

	// Counts returns the number of jobs per state.
	Counts(ctx context.Context) (domain.QueueCounts, error)

	// Close stops accepting new work and detaches the handler.
	Close() error
}
