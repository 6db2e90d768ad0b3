package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the generation workers until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Start(); err != nil {
				return err
			}
			cmd.Println("workers running, press ctrl-c to stop")
			<-cmd.Context().Done()
			return c.app.Close()
		},
	}
}
