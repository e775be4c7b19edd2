package provisioning

import (
	"fmt"

	"github.com/imamik/puppetctl/internal/platform/ec2"
	"github.com/imamik/puppetctl/internal/util/tags"
)

const phaseLaunch = "launch"

// LaunchRequest describes one instance to launch.
type LaunchRequest struct {
	ImageID      string
	InstanceType string

	// Name is written as the puppet:name tag. When empty the operator is
	// asked once the instance is running.
	Name string

	// Role is only used to label logs and metrics.
	Role string
}

// Launcher starts instances and waits until they run.
type Launcher struct {
	waiter *Waiter
}

// NewLauncher creates a launcher.
func NewLauncher() *Launcher {
	return &Launcher{waiter: NewWaiter()}
}

// Launch resolves the image, makes sure the security group exists, runs one
// instance, waits for it to leave pending and names it.
//
// Any status other than running after pending yields *UnexpectedStatusError.
func (l *Launcher) Launch(ctx *Context, req LaunchRequest) (*ec2.Instance, error) {
	if req.ImageID == "" {
		return nil, fmt.Errorf("image ID cannot be empty")
	}
	if req.InstanceType == "" {
		return nil, fmt.Errorf("instance type cannot be empty")
	}
	if req.Name != "" {
		if err := tags.ValidateName(req.Name); err != nil {
			return nil, err
		}
	}

	img, err := ctx.Infra.GetImage(ctx, req.ImageID)
	if err != nil {
		return nil, err
	}

	group, origin, err := EnsureSecurityGroup(ctx)
	if err != nil {
		return nil, err
	}

	ctx.Observer.Printf("[%s] Creating a new EC2 instance with the following parameters...", phaseLaunch)
	ctx.Observer.Printf("[%s] Image: %s (%s)", phaseLaunch, img.Name, img.ID)
	ctx.Observer.Printf("[%s] Size: %s", phaseLaunch, req.InstanceType)
	ctx.Observer.Printf("[%s] Key Pair: %s", phaseLaunch, ctx.Config.KeyPairName)
	ctx.Observer.Printf("[%s] Security Group: %s (%s)", phaseLaunch, group.Name, origin)

	inst, err := ctx.Infra.RunInstance(ctx, ec2.RunInstanceOpts{
		ImageID:          req.ImageID,
		InstanceType:     req.InstanceType,
		KeyName:          ctx.Config.KeyPairName,
		SecurityGroupIDs: []string{group.ID},
	})
	if err != nil {
		return nil, err
	}
	LogInstanceLaunched(ctx.Observer, phaseLaunch, req.Role, inst)

	inst, err = l.waiter.WaitUntilNotPending(ctx, inst.ID)
	if err != nil {
		ctx.Metrics.recordLaunchFailure(req.Role, "wait")
		return nil, err
	}
	if inst.Status != ec2.StatusRunning {
		ctx.Metrics.recordLaunchFailure(req.Role, string(inst.Status))
		return nil, &UnexpectedStatusError{InstanceID: inst.ID, Status: inst.Status}
	}

	ctx.Observer.Printf("[%s] Server is booting!", phaseLaunch)
	ctx.Observer.Printf("[%s] IP: %s", phaseLaunch, inst.PublicIP)
	ctx.Observer.Printf("[%s] DNS: %s", phaseLaunch, inst.PublicDNS)

	name := req.Name
	if name == "" {
		name, err = ctx.Prompter.Input(ctx, "Give this server a unique name", "", tags.ValidateName)
		if err != nil {
			return nil, fmt.Errorf("failed to name instance %s: %w", inst.ID, err)
		}
	}

	if err := setTags(ctx, inst, map[string]string{tags.KeyName: name}); err != nil {
		return nil, err
	}
	ctx.Metrics.recordLaunch(req.Role)

	return inst, nil
}

// setTags writes each tag with its own call, in tags.Keys order, and mirrors
// it on inst.
func setTags(ctx *Context, inst *ec2.Instance, t map[string]string) error {
	if inst.Tags == nil {
		inst.Tags = make(map[string]string, len(t))
	}
	for _, key := range tags.Keys(t) {
		if err := ctx.Infra.AddTag(ctx, inst.ID, key, t[key]); err != nil {
			return err
		}
		inst.Tags[key] = t[key]
		LogInstanceTagged(ctx.Observer, phaseLaunch, inst.ID, key, t[key])
	}
	return nil
}
