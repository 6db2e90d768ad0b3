// Package ports defines the interfaces between the orchestration core and
// its adapters and collaborators.
package ports

import "go.trai.ch/loom/internal/core/domain"

// Catalog is the static, read-only map of resource definitions. Safe for
// unsynchronized concurrent reads.
//
//go:generate go run go.uber.org/mock/mockgen -source=catalog.go -destination=mocks/mock_catalog.go -package=mocks
type Catalog interface {
	// Lookup returns the definition for the given id, or
	// domain.ErrResourceNotFound.
	Lookup(id string) (*domain.ResourceDefinition, error)

	// ListByTier returns all definitions with the given tier, in id order.
	ListByTier(tier int) []domain.ResourceDefinition

	// ListByCategory returns all definitions in the given category, in id order.
	ListByCategory(category string) []domain.ResourceDefinition

	// All returns every definition in id order.
	All() []domain.ResourceDefinition
}
