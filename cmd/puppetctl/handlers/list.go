package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/puppetctl/internal/platform/ec2"
	"github.com/imamik/puppetctl/internal/provisioning"
	"github.com/imamik/puppetctl/internal/ui/style"
	"github.com/imamik/puppetctl/internal/util/tags"
)

// List prints every puppet master in the region followed by its slaves.
func List(ctx context.Context, opts Options) error {
	pCtx, err := setup(ctx, opts, false)
	if err != nil {
		return err
	}
	defer writeMetrics(pCtx, opts)

	topo, err := provisioning.NewRegistry().Topology(pCtx)
	if err != nil {
		return err
	}
	if len(topo.Masters) == 0 {
		style.Fprintln(stdout, style.Note, "No puppet masters found in %s.", pCtx.Config.Region)
		return nil
	}

	for _, m := range topo.Masters {
		fmt.Fprintln(stdout, style.Title(describe(m)))

		slaves := topo.Slaves[m.ID]
		if len(slaves) == 0 {
			fmt.Fprintln(stdout, "  "+style.Note("no slaves"))
			continue
		}
		for _, s := range slaves {
			fmt.Fprintln(stdout, "  "+describe(s))
		}
	}
	return nil
}

func describe(inst *ec2.Instance) string {
	line := fmt.Sprintf("%s \"%s\" [%s]", inst.ID, tags.NameOf(inst.Tags), inst.Status)
	if addr := inst.Address(); addr != "" {
		line += " " + addr
	}
	return line
}
