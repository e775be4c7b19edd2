// Package config holds the static settings puppetctl needs to launch and
// reach instances: region, key pair, security group, images and sizes per
// role, and the Puppet install commands.
//
// Values come from compiled-in defaults, then an optional YAML file, then
// PUPPETCTL_* environment variables. Command-line flags are applied last by
// the CLI handlers.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Compiled-in defaults.
const (
	DefaultRegion        = "us-west-1"
	DefaultKeyPairName   = "puppet"
	DefaultKeyFile       = "~/.ssh/ec2-puppet.pem"
	DefaultSecurityGroup = "puppet"
	DefaultSSHUser       = "ubuntu"

	// DefaultImage is Ubuntu 11.04 64bit EBS boot in us-west-1.
	DefaultImage              = "ami-136f3c56"
	DefaultMasterInstanceType = "t1.micro"
	DefaultSlaveInstanceType  = "m1.large"

	DefaultMasterInstallCommand = "aptitude install -q -y puppetmaster"
	DefaultSlaveInstallCommand  = "aptitude install -q -y puppet"
	DefaultProbeCommand         = "ls"
)

// Config is the full puppetctl configuration.
type Config struct {
	// Region is the EC2 region all calls are made against.
	Region string `yaml:"region"`

	// KeyPairName is the EC2 key pair injected into new instances.
	KeyPairName string `yaml:"key_pair"`

	// KeyFile is the local private key matching KeyPairName.
	KeyFile string `yaml:"key_file"`

	// SecurityGroup is created on first use with a single tcp/22 rule.
	SecurityGroup string `yaml:"security_group"`

	// SSHUser is the login user baked into the image.
	SSHUser string `yaml:"ssh_user"`

	Master NodeConfig   `yaml:"master"`
	Slave  NodeConfig   `yaml:"slave"`
	Puppet PuppetConfig `yaml:"puppet"`
}

// NodeConfig selects the machine image and size for a role.
type NodeConfig struct {
	Image        string `yaml:"image"`
	InstanceType string `yaml:"instance_type"`
}

// PuppetConfig holds the remote commands run on new instances.
// Install commands are always run with elevated privileges.
type PuppetConfig struct {
	MasterInstallCommand string `yaml:"master_install_command"`
	SlaveInstallCommand  string `yaml:"slave_install_command"`
	ProbeCommand         string `yaml:"probe_command"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Region:        DefaultRegion,
		KeyPairName:   DefaultKeyPairName,
		KeyFile:       DefaultKeyFile,
		SecurityGroup: DefaultSecurityGroup,
		SSHUser:       DefaultSSHUser,
		Master: NodeConfig{
			Image:        DefaultImage,
			InstanceType: DefaultMasterInstanceType,
		},
		Slave: NodeConfig{
			Image:        DefaultImage,
			InstanceType: DefaultSlaveInstanceType,
		},
		Puppet: PuppetConfig{
			MasterInstallCommand: DefaultMasterInstallCommand,
			SlaveInstallCommand:  DefaultSlaveInstallCommand,
			ProbeCommand:         DefaultProbeCommand,
		},
	}
}

// Validate checks that every setting needed to launch an instance is present.
func (c *Config) Validate() error {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"region", c.Region},
		{"key_pair", c.KeyPairName},
		{"key_file", c.KeyFile},
		{"security_group", c.SecurityGroup},
		{"ssh_user", c.SSHUser},
		{"master.image", c.Master.Image},
		{"master.instance_type", c.Master.InstanceType},
		{"slave.image", c.Slave.Image},
		{"slave.instance_type", c.Slave.InstanceType},
		{"puppet.master_install_command", c.Puppet.MasterInstallCommand},
		{"puppet.slave_install_command", c.Puppet.SlaveInstallCommand},
		{"puppet.probe_command", c.Puppet.ProbeCommand},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ExpandedKeyFile returns KeyFile with a leading "~/" resolved against the
// user's home directory.
func (c *Config) ExpandedKeyFile() (string, error) {
	return expandHome(c.KeyFile)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory for %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
