// Package postgres manages the shared connection pool and schema for the
// durable backend.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.trai.ch/zerr"
)

// Client wraps the shared pgx pool. A zero Client (nil pool) is returned
// when the process runs on the in-memory backend so dependents can still be
// constructed; they must not touch the pool in that mode.
type Client struct {
	Pool *pgxpool.Pool
}

// Enabled reports whether a database connection is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.Pool != nil
}

// Connect opens a pool against the given URL and ensures the schema exists.
func Connect(ctx context.Context, url string) (*Client, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, zerr.Wrap(err, "failed to reach database")
	}

	c := &Client{Pool: pool}
	if err := c.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return c, nil
}

// Close releases the pool.
func (c *Client) Close() {
	if c.Enabled() {
		c.Pool.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS loom_generated_resources (
	user_id      TEXT        NOT NULL,
	resource_id  TEXT        NOT NULL,
	summary      TEXT        NOT NULL DEFAULT '',
	generated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, resource_id)
);

CREATE TABLE IF NOT EXISTS loom_context_cache (
	user_id          TEXT        NOT NULL,
	resource_id      TEXT        NOT NULL,
	resource_version TEXT        NOT NULL,
	payload          BYTEA       NOT NULL,
	token_count      INTEGER     NOT NULL DEFAULT 0,
	source_count     INTEGER     NOT NULL DEFAULT 0,
	build_ms         BIGINT      NOT NULL DEFAULT 0,
	cached_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, resource_id, resource_version)
);

CREATE TABLE IF NOT EXISTS loom_jobs (
	id                   TEXT        PRIMARY KEY,
	queue                TEXT        NOT NULL,
	payload              BYTEA,
	state                TEXT        NOT NULL DEFAULT 'waiting',
	progress             INTEGER     NOT NULL DEFAULT 0,
	attempts_made        INTEGER     NOT NULL DEFAULT 0,
	max_attempts         INTEGER     NOT NULL DEFAULT 1,
	backoff_base_ms      BIGINT      NOT NULL DEFAULT 2000,
	completed_retention_ms BIGINT    NOT NULL DEFAULT 3600000,
	failed_retention_ms  BIGINT      NOT NULL DEFAULT 86400000,
	result               BYTEA,
	failed_reason        TEXT        NOT NULL DEFAULT '',
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	processed_at         TIMESTAMPTZ,
	finished_at          TIMESTAMPTZ,
	run_at               TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS loom_jobs_claim_idx
	ON loom_jobs (queue, state, run_at, created_at);
`

func (c *Client) ensureSchema(ctx context.Context) error {
	if _, err := c.Pool.Exec(ctx, schema); err != nil {
		return zerr.Wrap(err, "failed to ensure schema")
	}
	return nil
}
