package provisioning

import (
	"fmt"

	"github.com/imamik/puppetctl/internal/platform/ec2"
	"github.com/imamik/puppetctl/internal/util/tags"
)

const phaseRegistry = "registry"

// statusUnknown is shown when a master's live status could not be fetched.
const statusUnknown = "unknown"

// Registry finds puppet instances through their tags. Every lookup lists all
// instances in the region and filters locally.
type Registry struct{}

// NewRegistry creates a registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// ListMasters returns all instances tagged as puppet masters.
func (r *Registry) ListMasters(ctx *Context) ([]*ec2.Instance, error) {
	return r.listByRole(ctx, func(inst *ec2.Instance) bool {
		return tags.HasRole(inst.Tags, tags.RoleMaster)
	})
}

// Topology is a single snapshot of the region's puppet instances.
type Topology struct {
	Masters []*ec2.Instance
	// Slaves maps a master ID to the slaves tagged with it. Slaves whose
	// master is gone are keyed by that stale ID.
	Slaves map[string][]*ec2.Instance
}

// Topology lists the region once and groups slaves under their master.
func (r *Registry) Topology(ctx *Context) (*Topology, error) {
	all, err := ctx.Infra.ListInstances(ctx)
	if err != nil {
		return nil, err
	}
	topo := &Topology{Slaves: make(map[string][]*ec2.Instance)}
	for _, inst := range all {
		switch {
		case tags.HasRole(inst.Tags, tags.RoleMaster):
			topo.Masters = append(topo.Masters, inst)
		case tags.HasRole(inst.Tags, tags.RoleSlave):
			masterID := inst.Tags[tags.KeyMasterID]
			topo.Slaves[masterID] = append(topo.Slaves[masterID], inst)
		}
	}
	return topo, nil
}

func (r *Registry) listByRole(ctx *Context, keep func(*ec2.Instance) bool) ([]*ec2.Instance, error) {
	all, err := ctx.Infra.ListInstances(ctx)
	if err != nil {
		return nil, err
	}
	var matched []*ec2.Instance
	for _, inst := range all {
		if keep(inst) {
			matched = append(matched, inst)
		}
	}
	return matched, nil
}

// FindMaster returns the single master whose instance ID is token, or failing
// that the single master whose puppet:name is token. Anything else yields
// *AmbiguousMasterError.
func (r *Registry) FindMaster(ctx *Context, token string) (*ec2.Instance, error) {
	masters, err := r.ListMasters(ctx)
	if err != nil {
		return nil, err
	}

	var byID, byName []*ec2.Instance
	for _, m := range masters {
		if m.ID == token {
			byID = append(byID, m)
		}
	}
	if len(byID) == 1 {
		return byID[0], nil
	}

	for _, m := range masters {
		if m.Tags[tags.KeyName] == token {
			byName = append(byName, m)
		}
	}
	if len(byName) == 1 {
		return byName[0], nil
	}

	return nil, &AmbiguousMasterError{Token: token, IDMatches: len(byID), NameMatches: len(byName)}
}

// ResolveMaster turns ref into an instance. A resolved reference is returned
// as is. A selector is searched with FindMaster. An unspecified reference
// uses the session's working master, or asks the operator to pick one.
func (r *Registry) ResolveMaster(ctx *Context, ref MasterRef) (*ec2.Instance, error) {
	switch ref.Kind() {
	case RefResolved:
		ctx.Metrics.recordLookup("resolved")
		return ref.Instance(), nil
	case RefSelector:
		ctx.Metrics.recordLookup("selector")
		return r.FindMaster(ctx, ref.Token())
	case RefUnspecified:
		if ctx.Session != nil && ctx.Session.WorkingMaster != nil {
			ctx.Metrics.recordLookup("session")
			return ctx.Session.WorkingMaster, nil
		}
		ctx.Metrics.recordLookup("prompt")
		return r.SelectMaster(ctx)
	default:
		return nil, fmt.Errorf("unknown master reference kind %d", ref.Kind())
	}
}

// SelectMaster lists the masters with their live status and asks the
// operator to choose one.
func (r *Registry) SelectMaster(ctx *Context) (*ec2.Instance, error) {
	masters, err := r.ListMasters(ctx)
	if err != nil {
		return nil, err
	}
	if len(masters) == 0 {
		return nil, ErrNoMasters
	}

	options := make([]string, len(masters))
	for i, m := range masters {
		options[i] = fmt.Sprintf("%d: %s \"%s\" [%s]", i, m.ID, tags.NameOf(m.Tags), r.liveStatus(ctx, m))
	}

	ctx.Observer.Printf("[%s] Pick one of the following puppet masters.", phaseRegistry)
	idx, err := ctx.Prompter.Select(ctx, "Which master should the slave(s) be added to?", options)
	if err != nil {
		return nil, fmt.Errorf("failed to select master: %w", err)
	}
	if idx < 0 || idx >= len(masters) {
		return nil, fmt.Errorf("master selection %d out of range [0, %d]", idx, len(masters)-1)
	}
	return masters[idx], nil
}

// liveStatus refreshes one instance. Failures are not fatal.
func (r *Registry) liveStatus(ctx *Context, inst *ec2.Instance) string {
	fresh, err := ctx.Infra.GetInstance(ctx, inst.ID)
	if err != nil {
		ctx.Observer.Printf("[%s] Could not refresh %s: %v", phaseRegistry, inst.ID, err)
		return statusUnknown
	}
	return string(fresh.Status)
}
