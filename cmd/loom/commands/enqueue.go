package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newEnqueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enqueue <user-id> <resource-id...>",
		Short: "Submit generation jobs",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, ids := args[0], args[1:]
			withDeps, _ := cmd.Flags().GetBool("with-deps")
			asBatch, _ := cmd.Flags().GetBool("batch")

			switch {
			case asBatch:
				job, err := c.app.EnqueueBatch(cmd.Context(), userID, ids)
				if err != nil {
					return err
				}
				cmd.Printf("batch job %s queued (%d resources)\n", job.ID, len(ids))
			case withDeps:
				for _, id := range ids {
					jobs, err := c.app.EnqueueGeneration(cmd.Context(), userID, id)
					if err != nil {
						return err
					}
					for _, job := range jobs {
						cmd.Printf("job %s queued\n", job.ID)
					}
				}
			default:
				for _, id := range ids {
					job, err := c.app.EnqueueResource(cmd.Context(), userID, id)
					if err != nil {
						return err
					}
					cmd.Printf("job %s queued\n", job.ID)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolP("with-deps", "d", false, "Also queue missing required dependencies, dependency-first")
	cmd.Flags().BoolP("batch", "b", false, "Submit all resources as one batch job with per-item outcomes")
	return cmd
}

func (c *CLI) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the state of a queued job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := c.app.JobStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cmd.Printf("job %s: %s (%d%%, attempt %d/%d)\n",
				job.ID, job.State, job.Progress, job.AttemptsMade, job.MaxAttempts)
			if job.FailedReason != "" {
				cmd.Printf("  failed reason: %s\n", job.FailedReason)
			}
			if len(job.Result) > 0 {
				cmd.Printf("  result: %s\n", job.Result)
			}
			return nil
		},
	}
}

func (c *CLI) newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show per-queue job counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			health, err := c.app.QueueHealth(cmd.Context())
			if err != nil {
				return err
			}
			for name, counts := range health {
				cmd.Printf("%s: waiting %d, active %d, delayed %d, completed %d, failed %d\n",
					name, counts.Waiting, counts.Active, counts.Delayed, counts.Completed, counts.Failed)
			}
			return nil
		},
	}
}
