package resourcestore

import (
	"context"

	"go.trai.ch/loom/internal/adapters/postgres"
	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ResourceStore = (*Postgres)(nil)

// Postgres is the durable resource store.
type Postgres struct {
	client *postgres.Client
}

// NewPostgres creates a resource store over the shared postgres client.
func NewPostgres(client *postgres.Client) *Postgres {
	return &Postgres{client: client}
}

// ListGeneratedIDs returns the user's generated resource ids in generation order.
func (s *Postgres) ListGeneratedIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.client.Pool.Query(ctx,
		`SELECT resource_id FROM loom_generated_resources
		 WHERE user_id = $1 ORDER BY generated_at, resource_id`, userID)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to list generated resource ids")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, zerr.Wrap(err, "failed to scan resource id")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListGenerated returns the user's generated resources in generation order.
func (s *Postgres) ListGenerated(ctx context.Context, userID string) ([]domain.GeneratedResource, error) {
	rows, err := s.client.Pool.Query(ctx,
		`SELECT user_id, resource_id, summary, generated_at
		 FROM loom_generated_resources
		 WHERE user_id = $1 ORDER BY generated_at, resource_id`, userID)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to list generated resources")
	}
	defer rows.Close()

	var out []domain.GeneratedResource
	for rows.Next() {
		var rec domain.GeneratedResource
		if err := rows.Scan(&rec.UserID, &rec.ResourceID, &rec.Summary, &rec.GeneratedAt); err != nil {
			return nil, zerr.Wrap(err, "failed to scan generated resource")
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// RecordGenerated upserts a generated resource record.
func (s *Postgres) RecordGenerated(ctx context.Context, rec domain.GeneratedResource) error {
	_, err := s.client.Pool.Exec(ctx,
		`INSERT INTO loom_generated_resources (user_id, resource_id, summary)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, resource_id)
		 DO UPDATE SET summary = EXCLUDED.summary, generated_at = now()`,
		rec.UserID, rec.ResourceID, rec.Summary)
	if err != nil {
		return zerr.With(zerr.With(zerr.Wrap(err, "failed to record generated resource"),
			"user_id", rec.UserID), "resource_id", rec.ResourceID)
	}
	return nil
}
