// Package domain contains the core domain models for resource orchestration.
package domain

import "time"

// CategoryCore marks foundational resources that the recommender favors.
const CategoryCore = "core"

// ResourceDefinition describes one generatable resource in the catalog.
// Definitions are immutable after catalog load.
type ResourceDefinition struct {
	ID          string
	DisplayName string

	// Tier is a coarse foundational-ness ranking. Lower tiers are more
	// foundational. It is a recommendation hint, not an ordering constraint.
	Tier     int
	Category string

	// RequiredDependencies block generation until present. The listed order
	// is preserved and drives the suggested generation order.
	RequiredDependencies []string

	// OptionalDependencies enhance generation quality but never block it.
	OptionalDependencies []string

	EstimatedTokens int
	EstimatedCost   float64
	Impact          string
}

// GeneratedResource records that a user has generated a resource.
// The authoritative copy lives in the resource store; the validator and
// cache only read the id projection.
type GeneratedResource struct {
	UserID      string
	ResourceID  string
	GeneratedAt time.Time
	Summary     string
}

// GeneratedSet is the projection of a user's generated resource ids.
type GeneratedSet map[string]struct{}

// NewGeneratedSet builds a set from a list of resource ids.
func NewGeneratedSet(ids ...string) GeneratedSet {
	s := make(GeneratedSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether the set contains the given resource id.
func (s GeneratedSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}
