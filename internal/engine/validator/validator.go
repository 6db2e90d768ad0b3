// Package validator implements the dependency graph validator.
package validator

import (
	"context"
	"errors"
	"slices"

	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
)

// Validator decides whether a resource can be generated for a user and in
// what order its missing prerequisites must be produced.
//
// All expected conditions (unknown id, unmet dependencies) are ordinary
// result values. Only genuinely unexpected failures, such as the resource
// store being unreachable, populate the Err field; nothing here panics or
// returns an error for domain conditions.
type Validator struct {
	catalog ports.Catalog
	store   ports.ResourceStore
	log     ports.Logger
}

// New creates a Validator over the given catalog and resource store.
func New(catalog ports.Catalog, store ports.ResourceStore, log ports.Logger) *Validator {
	return &Validator{catalog: catalog, store: store, log: log}
}

// Validate reports whether the target resource can be generated for the
// user, with missing dependencies, suggested order, and cost totals.
func (v *Validator) Validate(ctx context.Context, userID, targetID string) domain.ValidationResult {
	def, err := v.catalog.Lookup(targetID)
	if err != nil {
		return domain.ValidationResult{
			ResourceID: targetID,
			Valid:      false,
			Err:        "unknown resource: " + targetID,
		}
	}

	generated, err := v.generatedSet(ctx, userID)
	if err != nil {
		v.log.Error(err, "user_id", userID, "resource_id", targetID)
		return domain.ValidationResult{
			ResourceID: targetID,
			Valid:      false,
			Err:        "resource store unavailable: " + err.Error(),
		}
	}

	return v.validateAgainst(def, generated)
}

func (v *Validator) validateAgainst(def *domain.ResourceDefinition, generated domain.GeneratedSet) domain.ValidationResult {
	missingRequired := v.annotate(missingFrom(def.RequiredDependencies, generated))
	missingOptional := v.annotate(missingFrom(def.OptionalDependencies, generated))

	totalCost := def.EstimatedCost
	totalTokens := def.EstimatedTokens
	for _, dep := range missingRequired {
		totalCost += dep.EstimatedCost
		totalTokens += dep.EstimatedTokens
	}

	valid := len(missingRequired) == 0
	return domain.ValidationResult{
		ResourceID:            def.ID,
		Valid:                 valid,
		MissingRequired:       missingRequired,
		MissingOptional:       missingOptional,
		SuggestedOrder:        v.SuggestOrder(def.ID, generated),
		TotalCost:             totalCost,
		TotalTokens:           totalTokens,
		CanProceedWithWarning: valid && len(missingOptional) > 0,
	}
}

// SuggestOrder returns the ids to generate, dependency-first, ending with
// the target. Resources already generated are omitted. The traversal
// recurses into required dependencies in their listed order; nodes already
// emitted or already on the recursion path are not re-entered. The catalog
// is validated acyclic at load time, so the path check never truncates a
// real order.
func (v *Validator) SuggestOrder(targetID string, generated domain.GeneratedSet) []string {
	emitted := make(map[string]struct{})
	onPath := make(map[string]struct{})
	var order []string

	var visit func(id string)
	visit = func(id string) {
		if _, ok := emitted[id]; ok {
			return
		}
		if _, ok := onPath[id]; ok {
			return
		}
		def, err := v.catalog.Lookup(id)
		if err != nil {
			return
		}

		onPath[id] = struct{}{}
		for _, dep := range def.RequiredDependencies {
			if generated.Has(dep) {
				continue
			}
			visit(dep)
		}
		delete(onPath, id)

		emitted[id] = struct{}{}
		order = append(order, id)
	}

	visit(targetID)
	return order
}

// EstimateCost sums generation cost over the target plus every missing
// required dependency. Optional dependencies are excluded from the total.
func (v *Validator) EstimateCost(targetID string, generated domain.GeneratedSet) (domain.CostEstimate, error) {
	def, err := v.catalog.Lookup(targetID)
	if err != nil {
		return domain.CostEstimate{}, err
	}

	missing := v.annotate(missingFrom(def.RequiredDependencies, generated))

	est := domain.CostEstimate{
		TargetID:            targetID,
		TargetCost:          def.EstimatedCost,
		MissingDependencies: missing,
		TotalCost:           def.EstimatedCost,
		TotalTokens:         def.EstimatedTokens,
		ResourceCount:       1 + len(missing),
	}
	for _, dep := range missing {
		est.TotalCost += dep.EstimatedCost
		est.TotalTokens += dep.EstimatedTokens
	}
	return est, nil
}

// ValidateBatch validates each id independently. Dependencies shared across
// ids are not de-duplicated; each result prices its own missing set.
func (v *Validator) ValidateBatch(ctx context.Context, userID string, ids []string) domain.BatchResult {
	batch := domain.BatchResult{
		Results: make([]domain.ValidationResult, 0, len(ids)),
	}
	for _, id := range ids {
		res := v.Validate(ctx, userID, id)
		batch.Results = append(batch.Results, res)

		batch.Summary.Total++
		if res.Valid {
			batch.Summary.Valid++
		} else {
			batch.Summary.Invalid++
		}
		batch.Summary.TotalCost += res.TotalCost
		batch.Summary.TotalTokens += res.TotalTokens
	}
	return batch
}

// AvailableResources returns every catalog entry the user has not generated
// whose required dependencies are fully satisfied.
func (v *Validator) AvailableResources(ctx context.Context, userID string) ([]domain.AvailableResource, error) {
	generated, err := v.generatedSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	var out []domain.AvailableResource
	for _, def := range v.catalog.All() {
		if generated.Has(def.ID) {
			continue
		}
		if len(missingFrom(def.RequiredDependencies, generated)) > 0 {
			continue
		}
		out = append(out, domain.AvailableResource{
			Definition:        def,
			OptionalSatisfied: len(missingFrom(def.OptionalDependencies, generated)) == 0,
		})
	}
	return out, nil
}

// RecommendNext ranks available resources by priority score and returns the
// top limit entries. The score favors lower tiers, fully satisfied optional
// dependencies, and the core category.
func (v *Validator) RecommendNext(ctx context.Context, userID string, limit int) ([]domain.Recommendation, error) {
	available, err := v.AvailableResources(ctx, userID)
	if err != nil {
		return nil, err
	}

	recs := make([]domain.Recommendation, 0, len(available))
	for _, a := range available {
		recs = append(recs, domain.Recommendation{
			AvailableResource: a,
			Score:             priorityScore(a),
		})
	}

	slices.SortStableFunc(recs, func(a, b domain.Recommendation) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		// Stable tie-break on id keeps the ranking deterministic.
		if a.Definition.ID < b.Definition.ID {
			return -1
		}
		return 1
	})

	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func priorityScore(a domain.AvailableResource) int {
	score := 100 - 10*a.Definition.Tier
	if a.OptionalSatisfied {
		score += 15
	}
	if a.Definition.Category == domain.CategoryCore {
		score += 20
	}
	return score
}

func (v *Validator) generatedSet(ctx context.Context, userID string) (domain.GeneratedSet, error) {
	ids, err := v.store.ListGeneratedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.NewGeneratedSet(ids...), nil
}

// annotate attaches display names and cost estimates to missing ids.
func (v *Validator) annotate(ids []string) []domain.MissingDependency {
	if len(ids) == 0 {
		return nil
	}
	out := make([]domain.MissingDependency, 0, len(ids))
	for _, id := range ids {
		dep := domain.MissingDependency{ID: id}
		def, err := v.catalog.Lookup(id)
		if err == nil {
			dep.DisplayName = def.DisplayName
			dep.EstimatedCost = def.EstimatedCost
			dep.EstimatedTokens = def.EstimatedTokens
		} else if !errors.Is(err, domain.ErrResourceNotFound) {
			v.log.Error(err, "dependency", id)
		}
		out = append(out, dep)
	}
	return out
}

func missingFrom(deps []string, generated domain.GeneratedSet) []string {
	var missing []string
	for _, dep := range deps {
		if !generated.Has(dep) {
			missing = append(missing, dep)
		}
	}
	return missing
}
