package contextcache

import (
	"context"

	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/zerr"
)

// Warm best-effort pre-populates entries for predicted next resources. A
// failure on one predicted id is logged and skipped; the remaining batch
// always proceeds. Returns the number of entries written.
func Warm(
	ctx context.Context,
	cache ports.ContextCache,
	builder ports.ContextBuilder,
	log ports.Logger,
	userID string,
	predictedIDs []string,
	version string,
) int {
	warmed := 0
	for _, resourceID := range predictedIDs {
		existing, err := cache.Get(ctx, userID, resourceID, version)
		if err != nil {
			log.Warn("cache read failed during warm", "user_id", userID, "resource_id", resourceID, "error", err)
			continue
		}
		if existing != nil {
			continue
		}

		payload, meta, err := builder.Build(ctx, userID, resourceID)
		if err != nil {
			log.Warn("context build failed during warm", "user_id", userID, "resource_id", resourceID, "error", err)
			continue
		}

		entry := domain.ContextEntry{
			UserID:     userID,
			ResourceID: resourceID,
			Version:    version,
			Payload:    payload,
			Metadata:   meta,
		}
		if err := cache.Set(ctx, entry); err != nil {
			// Cache writes are never fatal.
			log.Error(zerr.Wrap(err, "cache write failed during warm"),
				"user_id", userID, "resource_id", resourceID)
			continue
		}
		warmed++
	}
	return warmed
}
