package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/loom/internal/core/domain"
)

func (c *CLI) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <user-id> <resource-id...>",
		Short: "Check whether resources can be generated for a user",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, ids := args[0], args[1:]

			if len(ids) == 1 {
				printResult(cmd, c.app.PlanGeneration(cmd.Context(), userID, ids[0]))
				return nil
			}

			batch := c.app.ValidateBatch(cmd.Context(), userID, ids)
			for _, res := range batch.Results {
				printResult(cmd, res)
			}
			cmd.Printf("summary: %d total, %d valid, %d invalid, cost %.2f, tokens %d\n",
				batch.Summary.Total, batch.Summary.Valid, batch.Summary.Invalid,
				batch.Summary.TotalCost, batch.Summary.TotalTokens)
			return nil
		},
	}
}

func printResult(cmd *cobra.Command, res domain.ValidationResult) {
	if res.Err != "" {
		cmd.Printf("%s: error: %s\n", res.ResourceID, res.Err)
		return
	}
	if res.Valid {
		cmd.Printf("%s: ready (cost %.2f, tokens %d)\n", res.ResourceID, res.TotalCost, res.TotalTokens)
		if res.CanProceedWithWarning {
			cmd.Printf("  optional missing: %s\n", joinMissing(res.MissingOptional))
		}
		return
	}
	cmd.Printf("%s: blocked, missing %s\n", res.ResourceID, joinMissing(res.MissingRequired))
	cmd.Printf("  suggested order: %s\n", strings.Join(res.SuggestedOrder, " -> "))
	cmd.Printf("  total cost %.2f, tokens %d\n", res.TotalCost, res.TotalTokens)
}

func joinMissing(deps []domain.MissingDependency) string {
	ids := make([]string, 0, len(deps))
	for _, dep := range deps {
		ids = append(ids, dep.ID)
	}
	return strings.Join(ids, ", ")
}

func (c *CLI) newAvailableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "available <user-id>",
		Short: "List resources the user can generate right now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			available, err := c.app.AvailableResources(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, a := range available {
				marker := ""
				if !a.OptionalSatisfied {
					marker = " (optional deps missing)"
				}
				cmd.Printf("%s  tier %d  %s%s\n", a.Definition.ID, a.Definition.Tier, a.Definition.Category, marker)
			}
			return nil
		},
	}
}

func (c *CLI) newRecommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend <user-id>",
		Short: "Rank what the user should generate next",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			recs, err := c.app.RecommendNext(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			for i, rec := range recs {
				cmd.Printf("%d. %s (score %d)\n", i+1, rec.Definition.ID, rec.Score)
			}
			return nil
		},
	}
	cmd.Flags().IntP("limit", "l", 3, "Maximum number of recommendations")
	return cmd
}
