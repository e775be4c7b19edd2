package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/imamik/puppetctl/cmd/puppetctl/handlers"
)

// CreateSlaves returns the create-slaves command.
func CreateSlaves(opts *handlers.Options) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create-slaves [count] [master]",
		Short: "Launch puppet slaves attached to a master",
		Long: `Launch puppet slaves attached to a master.

Slaves are created one at a time. Each is tagged with the master's instance
ID, waited on until SSH answers and then gets the puppet agent installed.
The first failure stops the run.

master may be an instance ID or a name tag. An ID match always wins; a name
must match exactly one master. Without master you pick one from a list.

Examples:
  puppetctl create-slaves
  puppetctl create-slaves 3 web
  puppetctl create-slaves 2 i-0abc123 --name worker`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, master, err := parseSlaveArgs(args)
			if err != nil {
				return err
			}
			return handlers.CreateSlaves(cmd.Context(), *opts, count, master, name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name tag shared by the new slaves (default \"<master>-slave\")")

	return cmd
}

// InstallSlave returns the install-slave command.
func InstallSlave(opts *handlers.Options) *cobra.Command {
	var host string

	cmd := &cobra.Command{
		Use:   "install-slave [master]",
		Short: "Install the puppet agent on an existing host",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var master string
			if len(args) > 0 {
				master = args[0]
			}
			return handlers.InstallSlave(cmd.Context(), *opts, master, host)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Address of the host (required)")
	_ = cmd.MarkFlagRequired("host")

	return cmd
}

func parseSlaveArgs(args []string) (count int, master string, err error) {
	count = 1
	if len(args) > 0 {
		count, err = strconv.Atoi(args[0])
		if err != nil {
			return 0, "", fmt.Errorf("invalid slave count %q: %w", args[0], err)
		}
		if count < 1 {
			return 0, "", fmt.Errorf("slave count must be at least 1, got %d", count)
		}
	}
	if len(args) > 1 {
		master = args[1]
	}
	return count, master, nil
}
