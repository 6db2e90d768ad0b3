package ports

import (
	"context"

	"go.trai.ch/loom/internal/core/domain"
)

// ContextBuilder performs the expensive aggregated-context computation whose
// results the context cache stores.
//
//go:generate go run go.uber.org/mock/mockgen -source=builder.go -destination=mocks/mock_builder.go -package=mocks
type ContextBuilder interface {
	// Build aggregates the user's generated material into a context payload
	// for generating the target resource.
	Build(ctx context.Context, userID, targetID string) ([]byte, domain.ContextMetadata, error)
}
