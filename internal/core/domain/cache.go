package domain

import "time"

// MaxCacheAge is the hard expiry for aggregated context entries. Entries
// older than this are never returned and are deleted by the first read that
// observes them.
const MaxCacheAge = 24 * time.Hour

// ContextMetadata describes how a cached context payload was built.
type ContextMetadata struct {
	TokenCount  int
	SourceCount int
	BuildTime   time.Duration
}

// ContextEntry is one cached aggregated-context computation, keyed by
// (user, target resource, resource version).
type ContextEntry struct {
	UserID     string
	ResourceID string

	// Version is the resource version hash the payload was built against.
	// A version mismatch on read is an implicit invalidation.
	Version string

	Payload  []byte
	Metadata ContextMetadata
	CachedAt time.Time
}

// Expired reports whether the entry is older than maxAge at the given time.
func (e *ContextEntry) Expired(now time.Time, maxAge time.Duration) bool {
	return now.Sub(e.CachedAt) >= maxAge
}
