package contextcache

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.trai.ch/loom/internal/adapters/postgres"
	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ContextCache = (*Postgres)(nil)

// Postgres is the durable context cache.
type Postgres struct {
	client *postgres.Client
	maxAge time.Duration
}

// NewPostgres creates a context cache over the shared postgres client.
func NewPostgres(client *postgres.Client, maxAge time.Duration) *Postgres {
	if maxAge <= 0 {
		maxAge = domain.MaxCacheAge
	}
	return &Postgres{client: client, maxAge: maxAge}
}

// Get returns the entry for the composite key, or nil on a miss. A stale row
// is deleted as part of returning the miss.
func (p *Postgres) Get(ctx context.Context, userID, resourceID, version string) (*domain.ContextEntry, error) {
	var (
		entry   domain.ContextEntry
		buildMS int64
	)
	err := p.client.Pool.QueryRow(ctx,
		`SELECT user_id, resource_id, resource_version, payload,
		        token_count, source_count, build_ms, cached_at
		 FROM loom_context_cache
		 WHERE user_id = $1 AND resource_id = $2 AND resource_version = $3`,
		userID, resourceID, version,
	).Scan(&entry.UserID, &entry.ResourceID, &entry.Version, &entry.Payload,
		&entry.Metadata.TokenCount, &entry.Metadata.SourceCount, &buildMS, &entry.CachedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, zerr.Wrap(err, "failed to read cache entry")
	}
	entry.Metadata.BuildTime = time.Duration(buildMS) * time.Millisecond

	if entry.Expired(time.Now(), p.maxAge) {
		_, err := p.client.Pool.Exec(ctx,
			`DELETE FROM loom_context_cache
			 WHERE user_id = $1 AND resource_id = $2 AND resource_version = $3`,
			userID, resourceID, version)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to delete stale cache entry")
		}
		return nil, nil
	}
	return &entry, nil
}

// Set upserts the entry by its composite key.
func (p *Postgres) Set(ctx context.Context, entry domain.ContextEntry) error {
	if entry.CachedAt.IsZero() {
		entry.CachedAt = time.Now()
	}
	_, err := p.client.Pool.Exec(ctx,
		`INSERT INTO loom_context_cache
		   (user_id, resource_id, resource_version, payload,
		    token_count, source_count, build_ms, cached_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id, resource_id, resource_version)
		 DO UPDATE SET payload = EXCLUDED.payload,
		               token_count = EXCLUDED.token_count,
		               source_count = EXCLUDED.source_count,
		               build_ms = EXCLUDED.build_ms,
		               cached_at = EXCLUDED.cached_at`,
		entry.UserID, entry.ResourceID, entry.Version, entry.Payload,
		entry.Metadata.TokenCount, entry.Metadata.SourceCount,
		entry.Metadata.BuildTime.Milliseconds(), entry.CachedAt)
	if err != nil {
		return zerr.With(zerr.With(zerr.Wrap(err, "failed to write cache entry"),
			"user_id", entry.UserID), "resource_id", entry.ResourceID)
	}
	return nil
}

// InvalidateForUser deletes all of a user's entries.
func (p *Postgres) InvalidateForUser(ctx context.Context, userID string) (int, error) {
	tag, err := p.client.Pool.Exec(ctx,
		`DELETE FROM loom_context_cache WHERE user_id = $1`, userID)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to invalidate cache"), "user_id", userID)
	}
	return int(tag.RowsAffected()), nil
}

// CleanupExpired removes entries older than maxAge across all users.
func (p *Postgres) CleanupExpired(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		maxAge = p.maxAge
	}
	tag, err := p.client.Pool.Exec(ctx,
		`DELETE FROM loom_context_cache WHERE cached_at < now() - make_interval(secs => $1)`,
		maxAge.Seconds())
	if err != nil {
		return 0, zerr.Wrap(err, "failed to sweep expired cache entries")
	}
	return int(tag.RowsAffected()), nil
}
