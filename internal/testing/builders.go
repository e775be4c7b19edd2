package testing

import (
	"github.com/imamik/puppetctl/internal/config"
	"github.com/imamik/puppetctl/internal/platform/ec2"
	"github.com/imamik/puppetctl/internal/util/tags"
)

// ConfigBuilder provides a fluent interface for constructing test configs.
// Each method returns a new builder (immutable) for chaining.
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfigBuilder creates a builder seeded with the compiled-in defaults.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{cfg: *config.Default()}
}

// WithRegion sets the region.
func (b *ConfigBuilder) WithRegion(region string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Region = region
	return nb
}

// WithMaster sets the master image and instance type.
func (b *ConfigBuilder) WithMaster(image, instanceType string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Master = config.NodeConfig{Image: image, InstanceType: instanceType}
	return nb
}

// WithSlave sets the slave image and instance type.
func (b *ConfigBuilder) WithSlave(image, instanceType string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Slave = config.NodeConfig{Image: image, InstanceType: instanceType}
	return nb
}

// WithSecurityGroup sets the security group name.
func (b *ConfigBuilder) WithSecurityGroup(name string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.SecurityGroup = name
	return nb
}

// WithSSHUser sets the login user.
func (b *ConfigBuilder) WithSSHUser(user string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.SSHUser = user
	return nb
}

// Build returns the constructed config.
func (b *ConfigBuilder) Build() *config.Config {
	cfg := b.cfg
	return &cfg
}

// clone copies the builder. Config holds only value fields.
func (b *ConfigBuilder) clone() *ConfigBuilder {
	return &ConfigBuilder{cfg: b.cfg}
}

// MinimalConfig returns the default config.
func MinimalConfig() *config.Config {
	return NewConfigBuilder().Build()
}

// Master returns a running master instance with the given name.
func Master(id, name string) *ec2.Instance {
	return &ec2.Instance{
		ID:       id,
		PublicIP: "198.51.100.1",
		Status:   ec2.StatusRunning,
		Tags:     tags.NewTagBuilder(tags.RoleMaster).WithName(name).Build(),
	}
}

// Slave returns a running slave instance attached to masterID.
func Slave(id, name, masterID string) *ec2.Instance {
	return &ec2.Instance{
		ID:       id,
		PublicIP: "198.51.100.2",
		Status:   ec2.StatusRunning,
		Tags:     tags.NewTagBuilder(tags.RoleSlave).WithName(name).WithMaster(masterID).Build(),
	}
}
