package ports

import (
	"context"

	"go.trai.ch/loom/internal/core/domain"
)

// ResourceStore is the collaborator that records which resources a user has
// generated. The validator and cache depend on it for dependency checks and
// version hashing.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ResourceStore interface {
	// ListGeneratedIDs returns the user's generated resource ids ordered by
	// generation time.
	ListGeneratedIDs(ctx context.Context, userID string) ([]string, error)

	// ListGenerated returns the user's generated resources with timestamps
	// and summaries, ordered by generation time.
	ListGenerated(ctx context.Context, userID string) ([]domain.GeneratedResource, error)

	// RecordGenerated records a newly generated resource. Recording the same
	// (user, resource) pair again overwrites the prior record.
	RecordGenerated(ctx context.Context, rec domain.GeneratedResource) error
}
