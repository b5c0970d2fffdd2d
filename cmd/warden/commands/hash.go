package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <passage-file>...",
		Short: "Derive the identity of the path through the given passages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Hash(args, cmd.OutOrStdout())
		},
	}
}
