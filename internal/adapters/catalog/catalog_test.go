package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/loom/internal/adapters/catalog"
	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/zerr"
)

func def(id string, tier int, requires ...string) domain.ResourceDefinition {
	return domain.ResourceDefinition{
		ID:                   id,
		DisplayName:          id,
		Tier:                 tier,
		Category:             "analysis",
		RequiredDependencies: requires,
	}
}

func TestNewRejectsDuplicateIDs(t *testing.T) {
	_, err := catalog.New([]domain.ResourceDefinition{
		def("a", 1),
		def("a", 2),
	})
	require.ErrorIs(t, err, domain.ErrDuplicateResource)
}

func TestNewRejectsUnknownRequiredDependency(t *testing.T) {
	_, err := catalog.New([]domain.ResourceDefinition{
		def("a", 1, "ghost"),
	})
	require.ErrorIs(t, err, domain.ErrUnknownDependency)
}

func TestNewRejectsUnknownOptionalDependency(t *testing.T) {
	d := def("a", 1)
	d.OptionalDependencies = []string{"ghost"}
	_, err := catalog.New([]domain.ResourceDefinition{d})
	require.ErrorIs(t, err, domain.ErrUnknownDependency)
}

func TestNewRejectsCycle(t *testing.T) {
	_, err := catalog.New([]domain.ResourceDefinition{
		def("a", 1, "b"),
		def("b", 1, "c"),
		def("c", 1, "a"),
	})
	require.ErrorIs(t, err, domain.ErrCycleDetected)

	// The error metadata names the cycle path.
	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, "a -> b -> c -> a", zErr.Metadata()["cycle"])
}

func TestNewAcceptsSelfReferenceAsCycle(t *testing.T) {
	_, err := catalog.New([]domain.ResourceDefinition{
		def("a", 1, "a"),
	})
	require.ErrorIs(t, err, domain.ErrCycleDetected)
}

func TestLookup(t *testing.T) {
	c, err := catalog.New([]domain.ResourceDefinition{
		def("a", 1),
		def("b", 2, "a"),
	})
	require.NoError(t, err)

	got, err := c.Lookup("b")
	require.NoError(t, err)
	assert.Equal(t, "b", got.ID)
	assert.Equal(t, []string{"a"}, got.RequiredDependencies)

	_, err = c.Lookup("missing")
	require.ErrorIs(t, err, domain.ErrResourceNotFound)
}

func TestListings(t *testing.T) {
	defs := []domain.ResourceDefinition{
		def("c", 2, "a"),
		def("a", 1),
		def("b", 1),
	}
	defs[1].Category = domain.CategoryCore

	c, err := catalog.New(defs)
	require.NoError(t, err)

	tier1 := c.ListByTier(1)
	require.Len(t, tier1, 2)
	assert.Equal(t, "a", tier1[0].ID)
	assert.Equal(t, "b", tier1[1].ID)

	core := c.ListByCategory(domain.CategoryCore)
	require.Len(t, core, 1)
	assert.Equal(t, "a", core[0].ID)

	all := c.All()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, 3, c.Len())
}

func TestParseSortsAndValidates(t *testing.T) {
	data := []byte(`
version: "1"
resources:
  two:
    displayName: Two
    tier: 2
    category: analysis
    requires: [one]
    estimatedCost: 0.5
  one:
    displayName: One
    tier: 1
    category: core
    estimatedTokens: 1200
`)
	c, err := catalog.Parse(data)
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	one, err := c.Lookup("one")
	require.NoError(t, err)
	assert.Equal(t, "One", one.DisplayName)
	assert.Equal(t, 1200, one.EstimatedTokens)
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := catalog.Parse([]byte("resources: ["))
	require.Error(t, err)
}

func TestLoadEmbeddedDefault(t *testing.T) {
	c, err := catalog.Load("")
	require.NoError(t, err)
	require.Positive(t, c.Len())

	// Every definition's dependencies resolve and the graph is acyclic, or
	// Load would have failed.
	for _, d := range c.All() {
		for _, dep := range d.RequiredDependencies {
			_, err := c.Lookup(dep)
			require.NoError(t, err)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := catalog.Load("does-not-exist.yaml")
	require.Error(t, err)
}
