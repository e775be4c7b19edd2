package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/puppetctl/cmd/puppetctl/handlers"
)

// CreateMaster returns the create-master command.
func CreateMaster(opts *handlers.Options) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create-master",
		Short: "Launch a new EC2 instance and install the puppet master on it",
		Long: `Launch a new EC2 instance and install the puppet master on it.

The instance is started from the configured master image and instance type,
placed in the puppet security group (created on first use) and tagged as a
puppet master. Once SSH answers, the puppetmaster package is installed.

Without --name you are asked for one after the instance boots.

Example:
  puppetctl create-master --name web`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.CreateMaster(cmd.Context(), *opts, name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name tag for the master")

	return cmd
}

// InstallMaster returns the install-master command.
func InstallMaster(opts *handlers.Options) *cobra.Command {
	var host string

	cmd := &cobra.Command{
		Use:   "install-master",
		Short: "Install the puppet master on an existing host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.InstallMaster(cmd.Context(), *opts, host)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Address of the host (required)")
	_ = cmd.MarkFlagRequired("host")

	return cmd
}
