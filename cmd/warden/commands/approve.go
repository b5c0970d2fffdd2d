package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <identity>...",
		Short: "Approve paths locally and commit the validation cache",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Approve(cmd.Context(), args, cmd.OutOrStdout())
		},
	}
}
