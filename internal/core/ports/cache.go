package ports

import (
	"context"
	"time"

	"go.trai.ch/loom/internal/core/domain"
)

// ContextCache stores aggregated-context payloads keyed by
// (user, target resource, resource version).
//
//go:generate go run go.uber.org/mock/mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type ContextCache interface {
	// Get returns the entry for the composite key, or nil on a miss. A
	// version mismatch is a miss; an entry past domain.MaxCacheAge is
	// deleted and reported as a miss.
	Get(ctx context.Context, userID, resourceID, version string) (*domain.ContextEntry, error)

	// Set upserts the entry for its composite key, overwriting any prior
	// entry for that key.
	Set(ctx context.Context, entry domain.ContextEntry) error

	// InvalidateForUser deletes all of a user's entries and returns how
	// many were removed. Callers must invoke this whenever a new resource
	// is recorded as generated.
	InvalidateForUser(ctx context.Context, userID string) (int, error)

	// CleanupExpired removes entries older than maxAge across all users.
	// Intended for periodic background execution.
	CleanupExpired(ctx context.Context, maxAge time.Duration) (int, error)
}
