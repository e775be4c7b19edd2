package testing

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/imamik/puppetctl/internal/platform/ec2"
)

// CloudFixture is an in-memory EC2 region behind a MockCloud.
//
// Launched instances start pending, answer not-found for the first
// NotFoundPolls GetInstance calls, stay pending for PendingPolls more
// calls and then move to FinalStatus.
type CloudFixture struct {
	mu   sync.Mutex
	mock *MockCloud

	NotFoundPolls int
	PendingPolls  int
	FinalStatus   ec2.Status

	instances map[string]*fixtureInstance
	groups    []*ec2.SecurityGroup
	nextIP    int
}

type fixtureInstance struct {
	inst  *ec2.Instance
	polls int
}

// NewCloudFixture creates an empty region in which instances reach
// running on the first poll.
func NewCloudFixture() *CloudFixture {
	f := &CloudFixture{
		mock:        &MockCloud{},
		FinalStatus: ec2.StatusRunning,
		instances:   make(map[string]*fixtureInstance),
		nextIP:      10,
	}
	f.wire()
	return f
}

// Mock returns the underlying MockCloud for call assertions or overrides.
func (f *CloudFixture) Mock() *MockCloud {
	return f.mock
}

// AddInstance seeds an existing instance.
func (f *CloudFixture) AddInstance(inst *ec2.Instance) *CloudFixture {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.instances[inst.ID] = &fixtureInstance{inst: cloneInstance(inst), polls: -1}
	return f
}

// AddSecurityGroup seeds an existing security group.
func (f *CloudFixture) AddSecurityGroup(group *ec2.SecurityGroup) *CloudFixture {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups = append(f.groups, group)
	return f
}

// Instance returns a copy of the stored instance, or nil.
func (f *CloudFixture) Instance(id string) *ec2.Instance {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fi, ok := f.instances[id]; ok {
		return cloneInstance(fi.inst)
	}
	return nil
}

func (f *CloudFixture) wire() {
	f.mock.RunInstanceFunc = func(_ context.Context, opts ec2.RunInstanceOpts) (*ec2.Instance, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id := fmt.Sprintf("i-%04d", len(f.instances)+1)
		f.nextIP++
		inst := &ec2.Instance{
			ID:           id,
			ImageID:      opts.ImageID,
			InstanceType: opts.InstanceType,
			PublicIP:     fmt.Sprintf("203.0.113.%d", f.nextIP),
			PublicDNS:    fmt.Sprintf("ec2-203-0-113-%d.compute.amazonaws.com", f.nextIP),
			Status:       ec2.StatusPending,
			Tags:         map[string]string{},
		}
		f.instances[id] = &fixtureInstance{inst: inst}
		return cloneInstance(inst), nil
	}

	f.mock.GetInstanceFunc = func(_ context.Context, id string) (*ec2.Instance, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		fi, ok := f.instances[id]
		if !ok {
			return nil, &ec2.InstanceNotFoundError{InstanceID: id}
		}
		if fi.polls >= 0 {
			fi.polls++
			switch {
			case fi.polls <= f.NotFoundPolls:
				return nil, &ec2.InstanceNotFoundError{InstanceID: id}
			case fi.polls <= f.NotFoundPolls+f.PendingPolls:
				fi.inst.Status = ec2.StatusPending
			default:
				fi.inst.Status = f.FinalStatus
			}
		}
		return cloneInstance(fi.inst), nil
	}

	f.mock.ListInstancesFunc = func(_ context.Context) ([]*ec2.Instance, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		ids := make([]string, 0, len(f.instances))
		for id := range f.instances {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		out := make([]*ec2.Instance, 0, len(ids))
		for _, id := range ids {
			out = append(out, cloneInstance(f.instances[id].inst))
		}
		return out, nil
	}

	f.mock.AddTagFunc = func(_ context.Context, id, key, value string) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		fi, ok := f.instances[id]
		if !ok {
			return &ec2.InstanceNotFoundError{InstanceID: id}
		}
		fi.inst.Tags[key] = value
		return nil
	}

	f.mock.ListSecurityGroupsFunc = func(_ context.Context) ([]*ec2.SecurityGroup, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		out := make([]*ec2.SecurityGroup, len(f.groups))
		copy(out, f.groups)
		return out, nil
	}

	f.mock.CreateSecurityGroupFunc = func(_ context.Context, name, description string) (*ec2.SecurityGroup, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		group := &ec2.SecurityGroup{
			ID:          fmt.Sprintf("sg-%04d", len(f.groups)+1),
			Name:        name,
			Description: description,
		}
		f.groups = append(f.groups, group)
		return group, nil
	}
}

func cloneInstance(inst *ec2.Instance) *ec2.Instance {
	c := *inst
	c.Tags = maps.Clone(inst.Tags)
	if c.Tags == nil {
		c.Tags = map[string]string{}
	}
	return &c
}
