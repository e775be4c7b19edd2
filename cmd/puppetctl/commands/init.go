package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/puppetctl/cmd/puppetctl/handlers"
)

// Init returns the command that writes a starter configuration file.
//
// Flags:
//
//	--output, -o: Path to output file (default "puppetctl.yaml")
//	--force, -f: Overwrite an existing file
//	--generate-key: Create an SSH key and import it as the EC2 key pair
func Init(opts *handlers.Options) *cobra.Command {
	var initOpts handlers.InitOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write a default configuration file.

The file holds the region, key pair, security group, images, instance types
and install commands used by the other commands. Edit it afterwards to taste.

With --generate-key a new RSA key is written to the configured key file and
its public half is imported into EC2 under the configured key pair name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), *opts, initOpts)
		},
	}

	cmd.Flags().StringVarP(&initOpts.Output, "output", "o", "puppetctl.yaml", "Output file path")
	cmd.Flags().BoolVarP(&initOpts.Force, "force", "f", false, "Overwrite an existing file")
	cmd.Flags().BoolVar(&initOpts.GenerateKey, "generate-key", false, "Generate an SSH key and import it into EC2")

	return cmd
}
