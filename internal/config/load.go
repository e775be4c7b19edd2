package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFilename is looked up in the working directory when no
// explicit path is given.
const DefaultConfigFilename = "puppetctl.yaml"

// Environment variables that override file and default values.
const (
	EnvRegion             = "PUPPETCTL_REGION"
	EnvKeyPair            = "PUPPETCTL_KEY_PAIR"
	EnvKeyFile            = "PUPPETCTL_KEY_FILE"
	EnvSecurityGroup      = "PUPPETCTL_SECURITY_GROUP"
	EnvSSHUser            = "PUPPETCTL_SSH_USER"
	EnvMasterImage        = "PUPPETCTL_MASTER_IMAGE"
	EnvMasterInstanceType = "PUPPETCTL_MASTER_INSTANCE_TYPE"
	EnvSlaveImage         = "PUPPETCTL_SLAVE_IMAGE"
	EnvSlaveInstanceType  = "PUPPETCTL_SLAVE_INSTANCE_TYPE"
)

// Load builds the configuration from defaults, the YAML file at path and the
// process environment, then validates it.
//
// An empty path means DefaultConfigFilename in the working directory; a
// missing default file is not an error. A missing explicit file is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := parseInto(cfg, data); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// defaults only
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	ApplyEnv(cfg, os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadFromBytes parses YAML on top of the defaults and validates the result.
// The environment is not consulted.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := Default()
	if err := parseInto(cfg, data); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// parseInto overlays YAML data onto cfg. Keys absent from the document keep
// their current values.
func parseInto(cfg *Config, data []byte) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg fields from PUPPETCTL_* variables found by lookup.
// Empty values are ignored.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	overrides := []struct {
		env    string
		target *string
	}{
		{EnvRegion, &cfg.Region},
		{EnvKeyPair, &cfg.KeyPairName},
		{EnvKeyFile, &cfg.KeyFile},
		{EnvSecurityGroup, &cfg.SecurityGroup},
		{EnvSSHUser, &cfg.SSHUser},
		{EnvMasterImage, &cfg.Master.Image},
		{EnvMasterInstanceType, &cfg.Master.InstanceType},
		{EnvSlaveImage, &cfg.Slave.Image},
		{EnvSlaveInstanceType, &cfg.Slave.InstanceType},
	}
	for _, o := range overrides {
		if v, ok := lookup(o.env); ok && v != "" {
			*o.target = v
		}
	}
}

// DefaultConfigPath returns the default path for the config file.
// It looks in the current working directory.
func DefaultConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return DefaultConfigFilename
	}
	return filepath.Join(cwd, DefaultConfigFilename)
}

// Save writes a configuration to a file.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
