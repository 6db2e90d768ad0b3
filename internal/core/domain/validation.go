package domain

// MissingDependency is one unmet dependency, annotated with its cost estimate
// so callers can present the price of catching up.
type MissingDependency struct {
	ID              string
	DisplayName     string
	EstimatedCost   float64
	EstimatedTokens int
}

// ValidationResult is the outcome of checking whether a resource can be
// generated for a user. Expected conditions (unknown id, unmet dependencies)
// are ordinary field values; only genuinely unexpected failures populate Err.
type ValidationResult struct {
	ResourceID      string
	Valid           bool
	MissingRequired []MissingDependency
	MissingOptional []MissingDependency

	// SuggestedOrder lists resource ids dependency-first, ending with the
	// target. It is advisory; the queue layer does not enforce it.
	SuggestedOrder []string

	// TotalCost and TotalTokens cover the target plus every missing
	// required dependency. Optional dependencies are reported but excluded.
	TotalCost   float64
	TotalTokens int

	// CanProceedWithWarning is set when the resource is valid but optional
	// dependencies are missing.
	CanProceedWithWarning bool

	// Err carries an upstream failure description (e.g. resource store
	// unreachable). Never set for domain conditions.
	Err string
}

// CostEstimate breaks down the cost of generating a target including its
// missing required dependencies.
type CostEstimate struct {
	TargetID            string
	TargetCost          float64
	MissingDependencies []MissingDependency
	TotalCost           float64
	TotalTokens         int
	ResourceCount       int
}

// BatchSummary aggregates a batch validation run.
type BatchSummary struct {
	Total       int
	Valid       int
	Invalid     int
	TotalCost   float64
	TotalTokens int
}

// BatchResult holds per-id validation results plus aggregate totals.
type BatchResult struct {
	Results []ValidationResult
	Summary BatchSummary
}

// AvailableResource is a catalog entry the user has not generated yet whose
// required dependencies are all satisfied.
type AvailableResource struct {
	Definition ResourceDefinition

	// OptionalSatisfied reports whether the optional dependencies are also
	// fully generated.
	OptionalSatisfied bool
}

// Recommendation is an available resource ranked by priority score.
type Recommendation struct {
	AvailableResource
	Score int
}
