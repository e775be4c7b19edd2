package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/puppetctl/internal/provisioning"
	"github.com/imamik/puppetctl/internal/ui/style"
	"github.com/imamik/puppetctl/internal/util/tags"
)

// CreateSlaves launches count slaves under the master identified by master
// (an instance ID or name). An empty master asks the operator to pick one.
func CreateSlaves(ctx context.Context, opts Options, count int, master, name string) error {
	if count < 1 {
		return fmt.Errorf("slave count must be at least 1, got %d", count)
	}

	pCtx, err := setup(ctx, opts, true)
	if err != nil {
		return err
	}
	defer writeMetrics(pCtx, opts)

	slaves, err := newProvisioner().CreateSlaves(pCtx, provisioning.SlaveRequest{
		Master: provisioning.MasterSelector(master),
		Count:  count,
		Name:   name,
	})
	for _, s := range slaves {
		style.Fprintln(stdout, style.Success, "Puppet slave \"%s\" (%s) is ready at %s",
			tags.NameOf(s.Tags), s.ID, s.Address())
	}
	if err != nil {
		if len(slaves) > 0 {
			style.Fprintln(stderr, style.Warning, "%d of %d slaves were created before the failure", len(slaves), count)
		}
		return fmt.Errorf("create slaves failed: %w", err)
	}
	return nil
}

// InstallSlave installs the puppet agent on an existing host. master is only
// resolved and validated; the agent's server setting is left untouched.
func InstallSlave(ctx context.Context, opts Options, master, host string) error {
	if host == "" {
		return fmt.Errorf("a host is required")
	}

	pCtx, err := setup(ctx, opts, true)
	if err != nil {
		return err
	}
	defer writeMetrics(pCtx, opts)

	m, err := newProvisioner().InstallSlave(pCtx, provisioning.MasterSelector(master), host)
	if err != nil {
		return err
	}

	style.Fprintln(stdout, style.Success, "Puppet slave installed on %s (master \"%s\", %s)",
		host, tags.NameOf(m.Tags), m.ID)
	return nil
}
