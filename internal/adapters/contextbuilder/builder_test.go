package contextbuilder_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/loom/internal/adapters/catalog"
	"go.trai.ch/loom/internal/adapters/contextbuilder"
	"go.trai.ch/loom/internal/adapters/resourcestore"
	"go.trai.ch/loom/internal/core/domain"
)

func TestBuildAggregatesGeneratedDependencies(t *testing.T) {
	cat, err := catalog.New([]domain.ResourceDefinition{
		{ID: "brand", DisplayName: "Brand Identity"},
		{ID: "audience", DisplayName: "Target Audience"},
		{ID: "persona", DisplayName: "Customer Persona",
			RequiredDependencies: []string{"audience"},
			OptionalDependencies: []string{"brand"}},
	})
	require.NoError(t, err)

	store := resourcestore.NewMemory()
	ctx := context.Background()
	require.NoError(t, store.RecordGenerated(ctx, domain.GeneratedResource{
		UserID: "u1", ResourceID: "audience", Summary: "b2b developers",
	}))
	require.NoError(t, store.RecordGenerated(ctx, domain.GeneratedResource{
		UserID: "u1", ResourceID: "brand", Summary: "friendly, technical",
	}))

	payload, meta, err := contextbuilder.New(cat, store).Build(ctx, "u1", "persona")
	require.NoError(t, err)
	assert.Equal(t, 2, meta.SourceCount)
	assert.Positive(t, meta.TokenCount)

	var decoded struct {
		TargetID string `json:"targetId"`
		Sources  []struct {
			ResourceID string `json:"resourceId"`
			Required   bool   `json:"required"`
			Summary    string `json:"summary"`
		} `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "persona", decoded.TargetID)
	require.Len(t, decoded.Sources, 2)

	// Required dependencies come before optional ones.
	assert.Equal(t, "audience", decoded.Sources[0].ResourceID)
	assert.True(t, decoded.Sources[0].Required)
	assert.Equal(t, "b2b developers", decoded.Sources[0].Summary)
	assert.Equal(t, "brand", decoded.Sources[1].ResourceID)
	assert.False(t, decoded.Sources[1].Required)
}

func TestBuildOmitsUngeneratedDependencies(t *testing.T) {
	cat, err := catalog.New([]domain.ResourceDefinition{
		{ID: "audience"},
		{ID: "persona", RequiredDependencies: []string{"audience"}},
	})
	require.NoError(t, err)

	payload, meta, err := contextbuilder.New(cat, resourcestore.NewMemory()).Build(context.Background(), "u1", "persona")
	require.NoError(t, err)
	assert.Equal(t, 0, meta.SourceCount)

	var decoded struct {
		Sources []any `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Empty(t, decoded.Sources)
}

func TestBuildUnknownTarget(t *testing.T) {
	cat, err := catalog.New(nil)
	require.NoError(t, err)

	_, _, err = contextbuilder.New(cat, resourcestore.NewMemory()).Build(context.Background(), "u1", "ghost")
	require.ErrorIs(t, err, domain.ErrResourceNotFound)
}
