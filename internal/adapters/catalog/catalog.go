// Package catalog implements the static, read-only resource catalog.
package catalog

import (
	"slices"

	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Catalog = (*Static)(nil)

// Static is an immutable catalog built once at load time. All fields are
// written during construction and only read afterwards, so lookups need no
// synchronization.
type Static struct {
	byID    map[string]domain.ResourceDefinition
	ordered []domain.ResourceDefinition
}

// New builds a Static catalog from the given definitions. It rejects
// duplicate ids, references to unknown dependency ids, and cycles in the
// required-dependency graph, so a cyclic catalog fails at startup instead of
// silently truncating generation orders later.
func New(defs []domain.ResourceDefinition) (*Static, error) {
	byID := make(map[string]domain.ResourceDefinition, len(defs))
	for _, def := range defs {
		if _, exists := byID[def.ID]; exists {
			return nil, zerr.With(domain.ErrDuplicateResource, "resource_id", def.ID)
		}
		byID[def.ID] = def
	}

	for _, def := range defs {
		for _, dep := range def.RequiredDependencies {
			if _, ok := byID[dep]; !ok {
				return nil, zerr.With(zerr.With(domain.ErrUnknownDependency,
					"resource_id", def.ID), "dependency", dep)
			}
		}
		for _, dep := range def.OptionalDependencies {
			if _, ok := byID[dep]; !ok {
				return nil, zerr.With(zerr.With(domain.ErrUnknownDependency,
					"resource_id", def.ID), "dependency", dep)
			}
		}
	}

	if err := validateAcyclic(byID); err != nil {
		return nil, err
	}

	ordered := make([]domain.ResourceDefinition, 0, len(byID))
	for _, def := range byID {
		ordered = append(ordered, def)
	}
	slices.SortFunc(ordered, func(a, b domain.ResourceDefinition) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})

	return &Static{byID: byID, ordered: ordered}, nil
}

// validateAcyclic runs a three-color DFS over the required-dependency graph.
func validateAcyclic(byID map[string]domain.ResourceDefinition) error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(byID))
	var path []string

	var visit func(id string) error
	visit = func(id string) error {
		state[id] = visiting
		path = append(path, id)

		for _, dep := range byID[id].RequiredDependencies {
			switch state[dep] {
			case visiting:
				return cycleError(path, dep)
			case unvisited:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		state[id] = done
		path = path[:len(path)-1]
		return nil
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		if state[id] == unvisited {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// cycleError constructs an error carrying the cycle path metadata.
func cycleError(path []string, dep string) error {
	start := slices.Index(path, dep)
	cycle := ""
	for _, node := range path[start:] {
		cycle += node + " -> "
	}
	cycle += dep
	return zerr.With(domain.ErrCycleDetected, "cycle", cycle)
}

// Lookup returns the definition for the given id.
func (c *Static) Lookup(id string) (*domain.ResourceDefinition, error) {
	def, ok := c.byID[id]
	if !ok {
		return nil, zerr.With(domain.ErrResourceNotFound, "resource_id", id)
	}
	return &def, nil
}

// ListByTier returns all definitions with the given tier, in id order.
func (c *Static) ListByTier(tier int) []domain.ResourceDefinition {
	var out []domain.ResourceDefinition
	for _, def := range c.ordered {
		if def.Tier == tier {
			out = append(out, def)
		}
	}
	return out
}

// ListByCategory returns all definitions in the given category, in id order.
func (c *Static) ListByCategory(category string) []domain.ResourceDefinition {
	var out []domain.ResourceDefinition
	for _, def := range c.ordered {
		if def.Category == category {
			out = append(out, def)
		}
	}
	return out
}

// All returns every definition in id order.
func (c *Static) All() []domain.ResourceDefinition {
	out := make([]domain.ResourceDefinition, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Len returns the number of definitions.
func (c *Static) Len() int {
	return len(c.ordered)
}
