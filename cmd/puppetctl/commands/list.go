package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/puppetctl/cmd/puppetctl/handlers"
)

// List returns the list command.
func List(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List puppet masters and their slaves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.List(cmd.Context(), *opts)
		},
	}
}
