package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/imamik/puppetctl/internal/config"
	"github.com/imamik/puppetctl/internal/platform/ec2"
	"github.com/imamik/puppetctl/internal/platform/ssh"
	"github.com/imamik/puppetctl/internal/provisioning"
	"github.com/imamik/puppetctl/internal/ui/prompt"
	"github.com/imamik/puppetctl/internal/ui/style"
)

// Options holds the global flags shared by all commands.
type Options struct {
	ConfigPath  string
	Region      string
	MetricsFile string
}

// Provisioner is the subset of provisioning.Provisioner used by handlers.
type Provisioner interface {
	CreateMaster(ctx *provisioning.Context, req provisioning.MasterRequest) (*ec2.Instance, error)
	CreateSlaves(ctx *provisioning.Context, req provisioning.SlaveRequest) ([]*ec2.Instance, error)
	InstallMaster(ctx *provisioning.Context, host string) error
	InstallSlave(ctx *provisioning.Context, ref provisioning.MasterRef, host string) (*ec2.Instance, error)
}

// Factory function variables - can be replaced in tests.
var (
	loadConfig      = config.Load
	loadCredentials = config.LoadCredentials

	newInfraClient = func(ctx context.Context, region string, creds config.Credentials) (ec2.InfrastructureManager, error) {
		return ec2.NewClient(ctx, region, creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken)
	}

	newRemoteRunner = func(cfg *config.Config, timeouts *config.Timeouts) (provisioning.RemoteRunner, error) {
		keyFile, err := cfg.ExpandedKeyFile()
		if err != nil {
			return nil, err
		}
		return ssh.NewRunnerFromFile(cfg.SSHUser, keyFile, timeouts.SSHDial)
	}

	newPrompter = func() provisioning.Prompter {
		return prompt.NewTerminal()
	}

	newProvisioner = func() Provisioner {
		return provisioning.NewProvisioner()
	}

	newProvisioningContext = provisioning.NewContext

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// loadSettings loads the configuration and applies the --region flag on top.
func loadSettings(opts Options) (*config.Config, error) {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Region != "" {
		cfg.Region = opts.Region
	}
	return cfg, nil
}

// setup builds the provisioning context for a command. The SSH runner is
// only created when withRemote is set, so read-only commands work without
// a key file.
func setup(ctx context.Context, opts Options, withRemote bool) (*provisioning.Context, error) {
	cfg, err := loadSettings(opts)
	if err != nil {
		return nil, err
	}

	creds, err := loadCredentials()
	if err != nil {
		return nil, err
	}

	infra, err := newInfraClient(ctx, cfg.Region, creds)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Region, err)
	}

	pCtx := newProvisioningContext(ctx, cfg, infra, nil, newPrompter())

	if withRemote {
		remote, err := newRemoteRunner(cfg, pCtx.Timeouts)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare ssh: %w", err)
		}
		pCtx.Remote = remote
	}

	return pCtx, nil
}

// writeMetrics dumps the run's metrics when --metrics-file is set. A write
// failure is reported but never fails the command.
func writeMetrics(pCtx *provisioning.Context, opts Options) {
	if pCtx == nil || opts.MetricsFile == "" {
		return
	}
	if err := pCtx.Metrics.WriteTextfile(opts.MetricsFile); err != nil {
		style.Fprintln(stderr, style.Warning, "%v", err)
	}
}
