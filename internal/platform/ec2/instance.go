package ec2

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// Status is the lifecycle state reported for an instance.
type Status string

// Known instance states. Any other value reported by the API is kept as is.
const (
	StatusPending      Status = "pending"
	StatusRunning      Status = "running"
	StatusShuttingDown Status = "shutting-down"
	StatusTerminated   Status = "terminated"
	StatusStopping     Status = "stopping"
	StatusStopped      Status = "stopped"
)

// Instance is a provisioned virtual machine.
type Instance struct {
	ID           string
	ImageID      string
	InstanceType string
	PublicIP     string
	PublicDNS    string
	Status       Status
	Tags         map[string]string
}

// Address returns the host used to reach the instance: its public IP, or
// its public DNS name when no IP is assigned yet.
func (i *Instance) Address() string {
	if i.PublicIP != "" {
		return i.PublicIP
	}
	return i.PublicDNS
}

// Image is a machine image.
type Image struct {
	ID   string
	Name string
}

// RunInstanceOpts holds all parameters for launching an instance.
type RunInstanceOpts struct {
	ImageID          string
	InstanceType     string
	KeyName          string
	SecurityGroupIDs []string
}

// RunInstance launches exactly one instance.
func (c *RealClient) RunInstance(ctx context.Context, opts RunInstanceOpts) (*Instance, error) {
	out, err := c.api.RunInstances(ctx, &ec2.RunInstancesInput{
		ImageId:          aws.String(opts.ImageID),
		InstanceType:     types.InstanceType(opts.InstanceType),
		KeyName:          aws.String(opts.KeyName),
		SecurityGroupIds: opts.SecurityGroupIDs,
		MinCount:         aws.Int32(1),
		MaxCount:         aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to run instance: %w", err)
	}
	if len(out.Instances) == 0 {
		return nil, fmt.Errorf("run instance returned no instances")
	}
	return toInstance(out.Instances[0]), nil
}

// GetInstance refreshes one instance by ID.
func (c *RealClient) GetInstance(ctx context.Context, instanceID string) (*Instance, error) {
	out, err := c.api.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get instance %s: %w", instanceID, err)
	}
	for _, r := range out.Reservations {
		for _, inst := range r.Instances {
			if aws.ToString(inst.InstanceId) == instanceID {
				return toInstance(inst), nil
			}
		}
	}
	return nil, &InstanceNotFoundError{InstanceID: instanceID}
}

// ListInstances returns every instance in the region, across all pages.
func (c *RealClient) ListInstances(ctx context.Context) ([]*Instance, error) {
	var instances []*Instance
	paginator := ec2.NewDescribeInstancesPaginator(c.api, &ec2.DescribeInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list instances: %w", err)
		}
		for _, r := range page.Reservations {
			for _, inst := range r.Instances {
				instances = append(instances, toInstance(inst))
			}
		}
	}
	return instances, nil
}

// AddTag writes a single tag on an instance.
func (c *RealClient) AddTag(ctx context.Context, instanceID, key, value string) error {
	_, err := c.api.CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{instanceID},
		Tags: []types.Tag{{
			Key:   aws.String(key),
			Value: aws.String(value),
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to tag instance %s with %s: %w", instanceID, key, err)
	}
	return nil
}

// toInstance converts an SDK instance into an Instance.
func toInstance(inst types.Instance) *Instance {
	result := &Instance{
		ID:           aws.ToString(inst.InstanceId),
		ImageID:      aws.ToString(inst.ImageId),
		InstanceType: string(inst.InstanceType),
		PublicIP:     aws.ToString(inst.PublicIpAddress),
		PublicDNS:    aws.ToString(inst.PublicDnsName),
		Tags:         make(map[string]string, len(inst.Tags)),
	}
	if inst.State != nil {
		result.Status = Status(inst.State.Name)
	}
	for _, tag := range inst.Tags {
		result.Tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return result
}
