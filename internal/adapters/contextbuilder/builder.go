// Package contextbuilder assembles the aggregated-context payload a
// generation call consumes, from the user's previously generated material.
package contextbuilder

import (
	"context"
	"encoding/json"
	"time"

	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ContextBuilder = (*Aggregating)(nil)

// Aggregating builds context by collecting the summaries of the target's
// generated dependencies, most relevant first.
type Aggregating struct {
	catalog ports.Catalog
	store   ports.ResourceStore
}

// New creates a builder over the given catalog and store.
func New(catalog ports.Catalog, store ports.ResourceStore) *Aggregating {
	return &Aggregating{catalog: catalog, store: store}
}

// source is one generated resource folded into the payload.
type source struct {
	ResourceID  string    `json:"resourceId"`
	DisplayName string    `json:"displayName"`
	Required    bool      `json:"required"`
	Summary     string    `json:"summary"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type payload struct {
	TargetID string   `json:"targetId"`
	Sources  []source `json:"sources"`
}

// Build aggregates the target's generated dependencies into a JSON payload.
// Required dependencies come first, then optional ones, each in the
// definition's listed order. Dependencies the user has not generated are
// omitted.
func (a *Aggregating) Build(ctx context.Context, userID, targetID string) ([]byte, domain.ContextMetadata, error) {
	def, err := a.catalog.Lookup(targetID)
	if err != nil {
		return nil, domain.ContextMetadata{}, err
	}

	generated, err := a.store.ListGenerated(ctx, userID)
	if err != nil {
		return nil, domain.ContextMetadata{}, zerr.With(
			zerr.Wrap(err, "failed to read generated resources"), "user_id", userID)
	}
	byID := make(map[string]domain.GeneratedResource, len(generated))
	for _, rec := range generated {
		byID[rec.ResourceID] = rec
	}

	start := time.Now()
	body := payload{TargetID: targetID, Sources: []source{}}
	appendSources := func(ids []string, required bool) {
		for _, id := range ids {
			rec, ok := byID[id]
			if !ok {
				continue
			}
			name := id
			if dep, err := a.catalog.Lookup(id); err == nil {
				name = dep.DisplayName
			}
			body.Sources = append(body.Sources, source{
				ResourceID:  id,
				DisplayName: name,
				Required:    required,
				Summary:     rec.Summary,
				GeneratedAt: rec.GeneratedAt,
			})
		}
	}
	appendSources(def.RequiredDependencies, true)
	appendSources(def.OptionalDependencies, false)

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, domain.ContextMetadata{}, zerr.Wrap(err, "failed to encode context payload")
	}

	meta := domain.ContextMetadata{
		TokenCount:  estimateTokens(encoded),
		SourceCount: len(body.Sources),
		BuildTime:   time.Since(start),
	}
	return encoded, meta, nil
}

// estimateTokens approximates the token count at four bytes per token.
func estimateTokens(payload []byte) int {
	return (len(payload) + 3) / 4
}
