package provisioning

import (
	"context"

	"github.com/imamik/puppetctl/internal/config"
	"github.com/imamik/puppetctl/internal/platform/ec2"
)

// Context wraps all dependencies and state needed by a provisioning flow.
type Context struct {
	context.Context
	Config   *config.Config
	Session  *Session
	Infra    ec2.InfrastructureManager
	Remote   RemoteRunner
	Prompter Prompter
	Observer Observer
	Timeouts *config.Timeouts
	Metrics  *Metrics
}

// NewContext creates a new provisioning context with a fresh session, a
// console observer, timeouts from the environment and an empty metrics set.
func NewContext(
	ctx context.Context,
	cfg *config.Config,
	infra ec2.InfrastructureManager,
	remote RemoteRunner,
	prompter Prompter,
) *Context {
	return &Context{
		Context:  ctx,
		Config:   cfg,
		Session:  NewSession(),
		Infra:    infra,
		Remote:   remote,
		Prompter: prompter,
		Observer: NewConsoleObserver(),
		Timeouts: config.LoadTimeouts(),
		Metrics:  NewMetrics(),
	}
}
