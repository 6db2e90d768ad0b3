package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/loom/internal/core/domain"
)

func (c *CLI) newRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record <user-id> <resource-id>",
		Short: "Record a generated resource and invalidate the user's context cache",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, _ := cmd.Flags().GetString("summary")
			err := c.app.RecordGenerated(cmd.Context(), domain.GeneratedResource{
				UserID:     args[0],
				ResourceID: args[1],
				Summary:    summary,
			})
			if err != nil {
				return err
			}
			cmd.Printf("recorded %s for %s\n", args[1], args[0])
			return nil
		},
	}
	cmd.Flags().StringP("summary", "s", "", "Short summary of the generated resource")
	return cmd
}

func (c *CLI) newWarmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "warm <user-id>",
		Short: "Pre-populate the context cache for the user's recommended next resources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			warmed, err := c.app.WarmPredicted(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			cmd.Printf("warmed %d cache entries\n", warmed)
			return nil
		},
	}
	cmd.Flags().IntP("limit", "l", 3, "Maximum number of predicted resources to warm")
	return cmd
}

func (c *CLI) newCacheCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cache-cleanup",
		Short: "Remove expired context cache entries across all users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			removed, err := c.app.CleanupCache(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("removed %d expired entries\n", removed)
			return nil
		},
	}
}
