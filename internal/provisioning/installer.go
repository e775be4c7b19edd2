package provisioning

import (
	"fmt"

	"github.com/imamik/puppetctl/internal/util/tags"
)

const phaseInstall = "install"

// Installer installs the Puppet packages on a host. Install commands always
// run with elevated privileges and are never retried.
type Installer struct{}

// NewInstaller creates an installer.
func NewInstaller() *Installer {
	return &Installer{}
}

// InstallMaster installs the puppet master package on host.
func (i *Installer) InstallMaster(ctx *Context, host string) error {
	ctx.Observer.Printf("[%s] Installing puppetmaster on %s...", phaseInstall, host)
	return i.install(ctx, tags.RoleMaster, host, ctx.Config.Puppet.MasterInstallCommand)
}

// InstallSlave installs the puppet agent package on host.
func (i *Installer) InstallSlave(ctx *Context, host string) error {
	ctx.Observer.Printf("[%s] Installing puppet on %s...", phaseInstall, host)
	return i.install(ctx, tags.RoleSlave, host, ctx.Config.Puppet.SlaveInstallCommand)
}

func (i *Installer) install(ctx *Context, role, host, command string) error {
	_, err := ctx.Remote.Sudo(ctx, host, command)
	ctx.Metrics.recordInstall(role, err)
	if err != nil {
		return fmt.Errorf("failed to install %s on %s: %w", role, host, err)
	}
	LogPuppetInstalled(ctx.Observer, phaseInstall, role, host)
	return nil
}
