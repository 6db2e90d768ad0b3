package catalog

// File represents the structure of a resource catalog YAML file.
type File struct {
	Version   string                 `yaml:"version"`
	Resources map[string]ResourceDTO `yaml:"resources"`
}

// ResourceDTO represents one resource definition in the catalog file.
type ResourceDTO struct {
	DisplayName     string   `yaml:"displayName"`
	Tier            int      `yaml:"tier"`
	Category        string   `yaml:"category"`
	Requires        []string `yaml:"requires"`
	Optional        []string `yaml:"optional"`
	EstimatedTokens int      `yaml:"estimatedTokens"`
	EstimatedCost   float64  `yaml:"estimatedCost"`
	Impact          string   `yaml:"impact"`
}
