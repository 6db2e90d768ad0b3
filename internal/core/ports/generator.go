package ports

import "context"

// Generator is the external generation backend consumed by the worker.
// Implementations wrap whatever produces the actual resource content; this
// core only routes context in and output through.
//
//go:generate go run go.uber.org/mock/mockgen -source=generator.go -destination=mocks/mock_generator.go -package=mocks
type Generator interface {
	// Generate produces the resource output from the aggregated context.
	Generate(ctx context.Context, resourceID string, aggregated []byte) ([]byte, error)
}
