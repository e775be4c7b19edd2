// Package ec2 provides a wrapper around the AWS EC2 API.
//
// It exposes only the calls the puppet provisioning flow needs and converts
// SDK types into small value types (Instance, SecurityGroup, Image) so the
// rest of the code never touches pointer-heavy SDK structs.
package ec2

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
)

// InstanceManager defines the instance operations of the cloud API.
type InstanceManager interface {
	// GetImage resolves an image ID. It fails when the image does not exist.
	GetImage(ctx context.Context, imageID string) (*Image, error)

	// RunInstance requests a single instance. The returned instance is
	// usually still pending and may not be visible to GetInstance yet.
	RunInstance(ctx context.Context, opts RunInstanceOpts) (*Instance, error)

	// GetInstance refreshes one instance. An unknown ID yields an error for
	// which IsInstanceNotFound reports true.
	GetInstance(ctx context.Context, instanceID string) (*Instance, error)

	// ListInstances returns every instance in the region.
	ListInstances(ctx context.Context) ([]*Instance, error)

	// AddTag writes one tag on an instance.
	AddTag(ctx context.Context, instanceID, key, value string) error
}

// SecurityGroupManager defines the security group operations of the cloud API.
type SecurityGroupManager interface {
	ListSecurityGroups(ctx context.Context) ([]*SecurityGroup, error)
	CreateSecurityGroup(ctx context.Context, name, description string) (*SecurityGroup, error)
	AuthorizeIngress(ctx context.Context, groupID string, rule IngressRule) error
}

// KeyPairManager registers SSH public keys.
type KeyPairManager interface {
	ImportKeyPair(ctx context.Context, name string, publicKey []byte) (*KeyPair, error)
}

// InfrastructureManager combines all cloud interfaces.
type InfrastructureManager interface {
	InstanceManager
	SecurityGroupManager
	KeyPairManager
}

// ec2API is the subset of *ec2.Client used by RealClient.
type ec2API interface {
	ec2.DescribeInstancesAPIClient
	ec2.DescribeSecurityGroupsAPIClient
	DescribeImages(ctx context.Context, params *ec2.DescribeImagesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error)
	RunInstances(ctx context.Context, params *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error)
	CreateTags(ctx context.Context, params *ec2.CreateTagsInput, optFns ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error)
	CreateSecurityGroup(ctx context.Context, params *ec2.CreateSecurityGroupInput, optFns ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error)
	AuthorizeSecurityGroupIngress(ctx context.Context, params *ec2.AuthorizeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error)
	ImportKeyPair(ctx context.Context, params *ec2.ImportKeyPairInput, optFns ...func(*ec2.Options)) (*ec2.ImportKeyPairOutput, error)
}

var _ InfrastructureManager = (*RealClient)(nil)

// RealClient implements InfrastructureManager using the AWS SDK.
type RealClient struct {
	api ec2API
}

// NewClient connects to the given region with a static access key.
// sessionToken may be empty.
func NewClient(ctx context.Context, region, accessKey, secretKey, sessionToken string) (*RealClient, error) {
	if region == "" {
		return nil, fmt.Errorf("region cannot be empty")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, sessionToken)),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newClientWithAPI(ec2.NewFromConfig(cfg)), nil
}

func newClientWithAPI(api ec2API) *RealClient {
	return &RealClient{api: api}
}

// GetImage resolves an image ID.
func (c *RealClient) GetImage(ctx context.Context, imageID string) (*Image, error) {
	out, err := c.api.DescribeImages(ctx, &ec2.DescribeImagesInput{
		ImageIds: []string{imageID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get image %s: %w", imageID, err)
	}
	if len(out.Images) == 0 {
		return nil, fmt.Errorf("image not found: %s", imageID)
	}

	img := out.Images[0]
	return &Image{
		ID:   aws.ToString(img.ImageId),
		Name: aws.ToString(img.Name),
	}, nil
}
