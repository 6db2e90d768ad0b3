package domain

import "go.trai.ch/zerr"

var (
	// ErrResourceNotFound is returned when a resource id is not in the catalog.
	ErrResourceNotFound = zerr.New("resource not found")

	// ErrDuplicateResource is returned when the catalog defines the same id twice.
	ErrDuplicateResource = zerr.New("duplicate resource definition")

	// ErrUnknownDependency is returned when a definition references a
	// dependency id that is not in the catalog.
	ErrUnknownDependency = zerr.New("unknown dependency")

	// ErrCycleDetected is returned when the catalog's required dependencies
	// form a cycle. Detected at load time so a cyclic catalog can never
	// silently truncate a generation order.
	ErrCycleDetected = zerr.New("dependency cycle detected")

	// ErrJobNotFound is returned when a job id is not known to the queue.
	ErrJobNotFound = zerr.New("job not found")

	// ErrHandlerRegistered is returned when Process is called twice on one queue.
	ErrHandlerRegistered = zerr.New("handler already registered")

	// ErrNoHandler is returned when work arrives on a queue with no handler.
	ErrNoHandler = zerr.New("no handler registered")

	// ErrQueueClosed is returned when submitting to a closed queue.
	ErrQueueClosed = zerr.New("queue closed")
)
