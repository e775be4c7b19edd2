package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/puppetctl/internal/provisioning"
	"github.com/imamik/puppetctl/internal/ui/style"
	"github.com/imamik/puppetctl/internal/util/tags"
)

// CreateMaster launches a new puppet master and installs it.
func CreateMaster(ctx context.Context, opts Options, name string) error {
	pCtx, err := setup(ctx, opts, true)
	if err != nil {
		return err
	}
	defer writeMetrics(pCtx, opts)

	master, err := newProvisioner().CreateMaster(pCtx, provisioning.MasterRequest{Name: name})
	if err != nil {
		return fmt.Errorf("create master failed: %w", err)
	}

	style.Fprintln(stdout, style.Success, "Puppet master \"%s\" (%s) is ready at %s",
		tags.NameOf(master.Tags), master.ID, master.Address())
	return nil
}

// InstallMaster installs the puppet master package on an existing host.
func InstallMaster(ctx context.Context, opts Options, host string) error {
	if host == "" {
		return fmt.Errorf("a host is required")
	}

	pCtx, err := setup(ctx, opts, true)
	if err != nil {
		return err
	}
	defer writeMetrics(pCtx, opts)

	if err := newProvisioner().InstallMaster(pCtx, host); err != nil {
		return err
	}

	style.Fprintln(stdout, style.Success, "Puppet master installed on %s", host)
	return nil
}
