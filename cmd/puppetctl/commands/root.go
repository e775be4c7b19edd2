// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/puppetctl/cmd/puppetctl/handlers"
)

// Root returns the root command for the puppetctl CLI.
//
// Global flags are bound once here and shared with every subcommand.
func Root() *cobra.Command {
	opts := &handlers.Options{}

	cmd := &cobra.Command{
		Use:           "puppetctl",
		Short:         "Provision puppet masters and slaves on EC2",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default ./puppetctl.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Region, "region", "", "EC2 region, overrides the configuration")
	cmd.PersistentFlags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write provisioning metrics to this file in Prometheus text format")

	// Provisioning
	cmd.AddCommand(CreateMaster(opts))
	cmd.AddCommand(CreateSlaves(opts))
	cmd.AddCommand(InstallMaster(opts))
	cmd.AddCommand(InstallSlave(opts))

	// Utility
	cmd.AddCommand(List(opts))
	cmd.AddCommand(Init(opts))
	cmd.AddCommand(Version())

	return cmd
}
