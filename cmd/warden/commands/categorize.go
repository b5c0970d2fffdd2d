package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newCategorizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categorize",
		Short: "Print the category of every cached path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Categorize(cmd.Context(), cmd.OutOrStdout())
		},
	}
}
