// Package resourcestore implements the generated-resource projection store.
package resourcestore

import (
	"context"
	"sync"
	"time"

	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
)

var _ ports.ResourceStore = (*Memory)(nil)

// Memory is a process-local resource store. State is lost on restart; it
// backs the in-memory regime and tests.
type Memory struct {
	mu      sync.RWMutex
	byUser  map[string][]domain.GeneratedResource
	nowFunc func() time.Time
}

// NewMemory creates an empty in-memory resource store.
func NewMemory() *Memory {
	return &Memory{
		byUser:  make(map[string][]domain.GeneratedResource),
		nowFunc: time.Now,
	}
}

// ListGeneratedIDs returns the user's generated resource ids in generation order.
func (m *Memory) ListGeneratedIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := m.byUser[userID]
	ids := make([]string, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ResourceID
	}
	return ids, nil
}

// ListGenerated returns the user's generated resources in generation order.
func (m *Memory) ListGenerated(_ context.Context, userID string) ([]domain.GeneratedResource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := m.byUser[userID]
	out := make([]domain.GeneratedResource, len(recs))
	copy(out, recs)
	return out, nil
}

// RecordGenerated records a generated resource, overwriting any prior record
// for the same (user, resource) pair.
func (m *Memory) RecordGenerated(_ context.Context, rec domain.GeneratedResource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.GeneratedAt.IsZero() {
		rec.GeneratedAt = m.nowFunc()
	}

	recs := m.byUser[rec.UserID]
	for i, existing := range recs {
		if existing.ResourceID == rec.ResourceID {
			recs[i] = rec
			return nil
		}
	}
	m.byUser[rec.UserID] = append(recs, rec)
	return nil
}
