package provisioning

import (
	"fmt"
	"time"

	"github.com/imamik/puppetctl/internal/config"
	"github.com/imamik/puppetctl/internal/platform/ec2"
	"github.com/imamik/puppetctl/internal/util/tags"
)

const (
	phaseMaster = "master"
	phaseSlaves = "slaves"
)

// MasterRequest configures CreateMaster.
type MasterRequest struct {
	// Name of the master. Asked for when empty.
	Name string
}

// SlaveRequest configures CreateSlaves.
type SlaveRequest struct {
	Master MasterRef

	// Count is the number of slaves to create, at least 1.
	Count int

	// Name is shared by every slave of the batch. Asked for when empty,
	// defaulting to "<master name>-slave".
	Name string
}

// Provisioner runs the master and slave flows.
type Provisioner struct {
	launcher  *Launcher
	waiter    *Waiter
	registry  *Registry
	installer *Installer
}

// NewProvisioner creates a provisioner with default components.
func NewProvisioner() *Provisioner {
	return &Provisioner{
		launcher:  NewLauncher(),
		waiter:    NewWaiter(),
		registry:  NewRegistry(),
		installer: NewInstaller(),
	}
}

// CreateMaster launches a new instance, tags it as a master, waits for SSH,
// installs the puppet master and records it as the session's working master.
func (p *Provisioner) CreateMaster(ctx *Context, req MasterRequest) (*ec2.Instance, error) {
	start := time.Now()
	LogPhaseStart(ctx.Observer, phaseMaster)
	ctx.Observer.Printf("[%s] Spinning up a new puppet master server...", phaseMaster)

	master, err := p.provisionNode(ctx, nodeSpec{
		role:    tags.RoleMaster,
		node:    ctx.Config.Master,
		name:    req.Name,
		tags:    tags.NewTagBuilder(tags.RoleMaster).Build(),
		install: p.installer.InstallMaster,
	})
	if err != nil {
		LogPhaseFailed(ctx.Observer, phaseMaster, err)
		return nil, err
	}

	ctx.Session.WorkingMaster = master
	LogPhaseComplete(ctx.Observer, phaseMaster, time.Since(start))
	return master, nil
}

// CreateSlaves provisions req.Count slaves for the referenced master, one
// after the other. The first failure stops the batch; slaves finished
// before it are returned with the error and stay in Session.WorkingSlaves.
func (p *Provisioner) CreateSlaves(ctx *Context, req SlaveRequest) ([]*ec2.Instance, error) {
	if req.Count < 1 {
		return nil, fmt.Errorf("slave count must be at least 1, got %d", req.Count)
	}

	master, err := p.registry.ResolveMaster(ctx, req.Master)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	LogPhaseStart(ctx.Observer, phaseSlaves)
	ctx.Observer.Printf("[%s] Creating %d slaves under master \"%s\" (%s)...",
		phaseSlaves, req.Count, tags.NameOf(master.Tags), master.ID)

	name, err := p.slaveName(ctx, master, req.Name)
	if err != nil {
		return nil, err
	}

	ctx.Session.WorkingSlaves = nil
	for i := 1; i <= req.Count; i++ {
		ctx.Observer.Printf("[%s] Slave #%d coming up.", phaseSlaves, i)

		slave, err := p.provisionNode(ctx, nodeSpec{
			role:    tags.RoleSlave,
			node:    ctx.Config.Slave,
			name:    name,
			tags:    tags.NewTagBuilder(tags.RoleSlave).WithMaster(master.ID).Build(),
			install: p.installer.InstallSlave,
		})
		if err != nil {
			LogPhaseFailed(ctx.Observer, phaseSlaves, err)
			return ctx.Session.WorkingSlaves, fmt.Errorf("slave %d of %d: %w", i, req.Count, err)
		}

		ctx.Session.WorkingSlaves = append(ctx.Session.WorkingSlaves, slave)
		ctx.Observer.Progress(phaseSlaves, i, req.Count)
	}

	LogPhaseComplete(ctx.Observer, phaseSlaves, time.Since(start))
	return ctx.Session.WorkingSlaves, nil
}

// InstallMaster installs the puppet master on an existing host.
func (p *Provisioner) InstallMaster(ctx *Context, host string) error {
	return p.installer.InstallMaster(ctx, host)
}

// InstallSlave installs puppet on an existing host after making sure the
// referenced master exists. It returns the master.
func (p *Provisioner) InstallSlave(ctx *Context, ref MasterRef, host string) (*ec2.Instance, error) {
	master, err := p.registry.ResolveMaster(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := p.installer.InstallSlave(ctx, host); err != nil {
		return nil, err
	}
	return master, nil
}

// slaveName returns name, or asks for one with "<master name>-slave" as the
// default.
func (p *Provisioner) slaveName(ctx *Context, master *ec2.Instance, name string) (string, error) {
	if name != "" {
		return name, tags.ValidateName(name)
	}

	base := master.Tags[tags.KeyName]
	if base == "" {
		base = master.ID
	}
	name, err := ctx.Prompter.Input(ctx, "What should we call this/these slave(s)?", base+"-slave", tags.ValidateName)
	if err != nil {
		return "", fmt.Errorf("failed to name slaves: %w", err)
	}
	return name, nil
}

// nodeSpec describes one node of either role.
type nodeSpec struct {
	role    string
	node    config.NodeConfig
	name    string
	tags    map[string]string
	install func(ctx *Context, host string) error
}

// provisionNode launches, tags, waits for SSH and installs one node.
func (p *Provisioner) provisionNode(ctx *Context, spec nodeSpec) (*ec2.Instance, error) {
	inst, err := p.launcher.Launch(ctx, LaunchRequest{
		ImageID:      spec.node.Image,
		InstanceType: spec.node.InstanceType,
		Name:         spec.name,
		Role:         spec.role,
	})
	if err != nil {
		return nil, err
	}

	if err := setTags(ctx, inst, spec.tags); err != nil {
		return nil, err
	}

	host := inst.Address()
	if err := p.waiter.WaitForSSH(ctx, host); err != nil {
		return nil, err
	}
	if err := spec.install(ctx, host); err != nil {
		return nil, err
	}
	return inst, nil
}
