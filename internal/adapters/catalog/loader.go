package catalog

import (
	_ "embed"
	"os"
	"slices"

	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Load reads a catalog file from the given path. An empty path loads the
// embedded default catalog.
func Load(path string) (*Static, error) {
	if path == "" {
		return Parse(defaultCatalog)
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by operator config
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read catalog file")
	}
	return Parse(data)
}

// Parse builds a validated catalog from YAML bytes.
func Parse(data []byte) (*Static, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.Wrap(err, "failed to parse catalog file")
	}

	ids := make([]string, 0, len(file.Resources))
	for id := range file.Resources {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	defs := make([]domain.ResourceDefinition, 0, len(ids))
	for _, id := range ids {
		dto := file.Resources[id]
		defs = append(defs, domain.ResourceDefinition{
			ID:                   id,
			DisplayName:          dto.DisplayName,
			Tier:                 dto.Tier,
			Category:             dto.Category,
			RequiredDependencies: dto.Requires,
			OptionalDependencies: dto.Optional,
			EstimatedTokens:      dto.EstimatedTokens,
			EstimatedCost:        dto.EstimatedCost,
			Impact:               dto.Impact,
		})
	}

	return New(defs)
}
