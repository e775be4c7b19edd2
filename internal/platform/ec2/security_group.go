package ec2

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// SecurityGroup is a named ingress policy.
type SecurityGroup struct {
	ID          string
	Name        string
	Description string
	Ingress     []IngressRule
}

// IngressRule allows inbound traffic on a port range from a CIDR.
type IngressRule struct {
	Protocol string
	FromPort int32
	ToPort   int32
	CIDR     string
}

// SSHFromAnywhere is the only rule puppetctl ever writes.
var SSHFromAnywhere = IngressRule{Protocol: "tcp", FromPort: 22, ToPort: 22, CIDR: "0.0.0.0/0"}

// ListSecurityGroups returns every security group in the region.
func (c *RealClient) ListSecurityGroups(ctx context.Context) ([]*SecurityGroup, error) {
	var groups []*SecurityGroup
	paginator := ec2.NewDescribeSecurityGroupsPaginator(c.api, &ec2.DescribeSecurityGroupsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list security groups: %w", err)
		}
		for _, g := range page.SecurityGroups {
			groups = append(groups, toSecurityGroup(g))
		}
	}
	return groups, nil
}

// CreateSecurityGroup creates an empty security group.
func (c *RealClient) CreateSecurityGroup(ctx context.Context, name, description string) (*SecurityGroup, error) {
	out, err := c.api.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:   aws.String(name),
		Description: aws.String(description),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create security group %s: %w", name, err)
	}
	return &SecurityGroup{
		ID:          aws.ToString(out.GroupId),
		Name:        name,
		Description: description,
	}, nil
}

// AuthorizeIngress adds an inbound rule. A rule that already exists is not
// an error.
func (c *RealClient) AuthorizeIngress(ctx context.Context, groupID string, rule IngressRule) error {
	_, err := c.api.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId: aws.String(groupID),
		IpPermissions: []types.IpPermission{{
			IpProtocol: aws.String(rule.Protocol),
			FromPort:   aws.Int32(rule.FromPort),
			ToPort:     aws.Int32(rule.ToPort),
			IpRanges:   []types.IpRange{{CidrIp: aws.String(rule.CIDR)}},
		}},
	})
	if err != nil {
		if isDuplicatePermission(err) {
			return nil
		}
		return fmt.Errorf("failed to authorize %s/%d-%d from %s on %s: %w",
			rule.Protocol, rule.FromPort, rule.ToPort, rule.CIDR, groupID, err)
	}
	return nil
}

func toSecurityGroup(g types.SecurityGroup) *SecurityGroup {
	sg := &SecurityGroup{
		ID:          aws.ToString(g.GroupId),
		Name:        aws.ToString(g.GroupName),
		Description: aws.ToString(g.Description),
	}
	for _, perm := range g.IpPermissions {
		for _, r := range perm.IpRanges {
			sg.Ingress = append(sg.Ingress, IngressRule{
				Protocol: aws.ToString(perm.IpProtocol),
				FromPort: aws.ToInt32(perm.FromPort),
				ToPort:   aws.ToInt32(perm.ToPort),
				CIDR:     aws.ToString(r.CidrIp),
			})
		}
	}
	return sg
}
