package provisioning

import (
	"fmt"

	"github.com/imamik/puppetctl/internal/platform/ec2"
)

const (
	phaseSecurityGroup = "security-group"

	securityGroupDescription = "Group created for puppet."
)

// Security group origins reported by EnsureSecurityGroup.
const (
	GroupExisting = "existing"
	GroupCreated  = "created"
)

// EnsureSecurityGroup returns the configured security group, creating it with
// a single SSH rule when it does not exist. The second return value is
// GroupExisting or GroupCreated.
func EnsureSecurityGroup(ctx *Context) (*ec2.SecurityGroup, string, error) {
	name := ctx.Config.SecurityGroup

	groups, err := ctx.Infra.ListSecurityGroups(ctx)
	if err != nil {
		return nil, "", err
	}
	for _, g := range groups {
		if g.Name == name {
			LogSecurityGroup(ctx.Observer, phaseSecurityGroup, g, GroupExisting)
			return g, GroupExisting, nil
		}
	}

	group, err := ctx.Infra.CreateSecurityGroup(ctx, name, securityGroupDescription)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create security group %s: %w", name, err)
	}
	if err := ctx.Infra.AuthorizeIngress(ctx, group.ID, ec2.SSHFromAnywhere); err != nil {
		return nil, "", fmt.Errorf("failed to open SSH on security group %s: %w", name, err)
	}
	group.Ingress = append(group.Ingress, ec2.SSHFromAnywhere)
	LogSecurityGroup(ctx.Observer, phaseSecurityGroup, group, GroupCreated)

	return group, GroupCreated, nil
}
