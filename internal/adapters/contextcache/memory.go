// Package contextcache implements the version-keyed aggregated-context cache.
package contextcache

import (
	"context"
	"sync"
	"time"

	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
)

var _ ports.ContextCache = (*Memory)(nil)

// entryKey is the per-user portion of the composite cache key. The user id
// is the outer map key so InvalidateForUser is a single map delete.
type entryKey struct {
	resourceID string
	version    string
}

// Memory is a process-local context cache.
type Memory struct {
	mu      sync.RWMutex
	byUser  map[string]map[entryKey]domain.ContextEntry
	maxAge  time.Duration
	nowFunc func() time.Time
}

// NewMemory creates an in-memory cache with the given max entry age.
func NewMemory(maxAge time.Duration) *Memory {
	if maxAge <= 0 {
		maxAge = domain.MaxCacheAge
	}
	return &Memory{
		byUser:  make(map[string]map[entryKey]domain.ContextEntry),
		maxAge:  maxAge,
		nowFunc: time.Now,
	}
}

// Get returns the entry for the composite key, or nil on a miss. An entry
// past the max age is deleted as part of returning the miss, so repeated
// reads of a stale key behave identically.
func (m *Memory) Get(_ context.Context, userID, resourceID, version string) (*domain.ContextEntry, error) {
	key := entryKey{resourceID: resourceID, version: version}

	m.mu.Lock()
	defer m.mu.Unlock()

	entries, ok := m.byUser[userID]
	if !ok {
		return nil, nil
	}
	entry, ok := entries[key]
	if !ok {
		return nil, nil
	}
	if entry.Expired(m.nowFunc(), m.maxAge) {
		delete(entries, key)
		if len(entries) == 0 {
			delete(m.byUser, userID)
		}
		return nil, nil
	}
	return &entry, nil
}

// Set upserts the entry by its composite key.
func (m *Memory) Set(_ context.Context, entry domain.ContextEntry) error {
	if entry.CachedAt.IsZero() {
		entry.CachedAt = m.nowFunc()
	}
	key := entryKey{resourceID: entry.ResourceID, version: entry.Version}

	m.mu.Lock()
	defer m.mu.Unlock()

	entries, ok := m.byUser[entry.UserID]
	if !ok {
		entries = make(map[entryKey]domain.ContextEntry)
		m.byUser[entry.UserID] = entries
	}
	entries[key] = entry
	return nil
}

// InvalidateForUser deletes all of a user's entries.
func (m *Memory) InvalidateForUser(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.byUser[userID])
	delete(m.byUser, userID)
	return n, nil
}

// CleanupExpired sweeps entries older than maxAge across all users.
func (m *Memory) CleanupExpired(_ context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		maxAge = m.maxAge
	}
	now := m.nowFunc()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for userID, entries := range m.byUser {
		for key, entry := range entries {
			if entry.Expired(now, maxAge) {
				delete(entries, key)
				removed++
			}
		}
		if len(entries) == 0 {
			delete(m.byUser, userID)
		}
	}
	return removed, nil
}

// setNow overrides the clock. Test hook.
func (m *Memory) setNow(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nowFunc = now
}
