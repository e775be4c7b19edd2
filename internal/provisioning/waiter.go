package provisioning

import (
	"context"
	"fmt"
	"time"

	"github.com/imamik/puppetctl/internal/platform/ec2"
	"github.com/imamik/puppetctl/internal/util/retry"
)

const (
	phaseWait = "wait"

	stageInstanceRunning = "instance_running"
	stageSSHReady        = "ssh_ready"
)

// Waiter blocks until instances are usable.
type Waiter struct{}

// NewWaiter creates a new waiter.
func NewWaiter() *Waiter {
	return &Waiter{}
}

// WaitUntilNotPending polls the instance until its status is anything but
// pending and returns the last observed state.
//
// A not-found answer right after launch is expected and retried. Any other
// API error stops the wait. The wait is bounded by Timeouts.InstanceRunning;
// running out of time yields an error matching retry.ErrTimeout.
func (w *Waiter) WaitUntilNotPending(ctx *Context, instanceID string) (*ec2.Instance, error) {
	ctx.Observer.Printf("[%s] Waiting for server %s to start booting...", phaseWait, instanceID)
	start := time.Now()

	var current *ec2.Instance
	err := retry.WithExponentialBackoffContext(ctx, func(attemptCtx context.Context) error {
		inst, err := ctx.Infra.GetInstance(attemptCtx, instanceID)
		if err != nil {
			if ec2.IsInstanceNotFound(err) {
				return err
			}
			return retry.Fatal(err)
		}
		current = inst
		if inst.Status == ec2.StatusPending {
			return fmt.Errorf("instance %s is %s", instanceID, inst.Status)
		}
		return nil
	}, w.pollOptions(ctx, ctx.Timeouts.InstanceRunning)...)

	ctx.Metrics.recordWait(stageInstanceRunning, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed waiting for instance %s: %w", instanceID, err)
	}
	return current, nil
}

// WaitForSSH runs the probe command on host until it succeeds. Probe output
// is discarded. The wait is bounded by Timeouts.SSHReady, including a probe
// that hangs mid-handshake; running out of time yields an error matching
// retry.ErrTimeout.
func (w *Waiter) WaitForSSH(ctx *Context, host string) error {
	ctx.Observer.Printf("[%s] Waiting for ssh to come up on %s...", phaseWait, host)
	start := time.Now()

	probe := ctx.Config.Puppet.ProbeCommand
	err := retry.WithExponentialBackoffContext(ctx, func(attemptCtx context.Context) error {
		_, err := ctx.Remote.Run(attemptCtx, host, probe)
		return err
	}, w.pollOptions(ctx, ctx.Timeouts.SSHReady)...)

	ctx.Metrics.recordWait(stageSSHReady, time.Since(start))
	if err != nil {
		return fmt.Errorf("ssh on %s never came up: %w", host, err)
	}

	ctx.Observer.Printf("[%s] It's up!", phaseWait)
	return nil
}

func (w *Waiter) pollOptions(ctx *Context, timeout time.Duration) []retry.Option {
	t := ctx.Timeouts
	return []retry.Option{
		retry.WithMaxRetries(retry.Unlimited),
		retry.WithInitialDelay(t.PollInterval),
		retry.WithMultiplier(t.PollMultiplier),
		retry.WithMaxDelay(t.PollMaxDelay),
		retry.WithTimeout(timeout),
	}
}
