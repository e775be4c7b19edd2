package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "us-west-1", cfg.Region)
	assert.Equal(t, "puppet", cfg.KeyPairName)
	assert.Equal(t, "puppet", cfg.SecurityGroup)
	assert.Equal(t, "ami-136f3c56", cfg.Master.Image)
	assert.Equal(t, "t1.micro", cfg.Master.InstanceType)
	assert.Equal(t, "m1.large", cfg.Slave.InstanceType)
	assert.Equal(t, "ls", cfg.Puppet.ProbeCommand)
	require.NoError(t, cfg.Validate())
}

func TestValidate_ReportsAllMissing(t *testing.T) {
	cfg := Default()
	cfg.Region = ""
	cfg.Slave.Image = "  "

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region")
	assert.Contains(t, err.Error(), "slave.image")
	assert.NotContains(t, err.Error(), "master.image")
}

func TestLoadFromBytes_OverlaysDefaults(t *testing.T) {
	data := []byte(`
region: eu-west-1
slave:
  instance_type: m5.large
puppet:
  slave_install_command: apt-get install -y puppet-agent
`)

	cfg, err := LoadFromBytes(data)
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, "m5.large", cfg.Slave.InstanceType)
	assert.Equal(t, DefaultImage, cfg.Slave.Image, "unset keys keep defaults")
	assert.Equal(t, "apt-get install -y puppet-agent", cfg.Puppet.SlaveInstallCommand)
	assert.Equal(t, DefaultMasterInstallCommand, cfg.Puppet.MasterInstallCommand)
}

func TestLoadFromBytes_InvalidYAML(t *testing.T) {
	_, err := LoadFromBytes([]byte("region: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "puppetctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("region: ap-south-1\nkey_pair: ops\n"), 0600))
	t.Setenv(EnvKeyPair, "ops-override")
	t.Setenv(EnvMasterInstanceType, "t3.small")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ap-south-1", cfg.Region)
	assert.Equal(t, "ops-override", cfg.KeyPairName)
	assert.Equal(t, "t3.small", cfg.Master.InstanceType)
}

func TestLoad_DefaultFileAbsent(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRegion, cfg.Region)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	cfg := Default()
	cfg.Region = "us-east-2"

	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "us-east-2", loaded.Region)
}

func TestApplyEnv_IgnoresEmpty(t *testing.T) {
	cfg := Default()
	env := map[string]string{EnvRegion: "", EnvSlaveImage: "ami-123"}

	ApplyEnv(cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	assert.Equal(t, DefaultRegion, cfg.Region)
	assert.Equal(t, "ami-123", cfg.Slave.Image)
}

func TestExpandedKeyFile(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := Default()
	path, err := cfg.ExpandedKeyFile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".ssh", "ec2-puppet.pem"), path)

	cfg.KeyFile = "/etc/keys/id"
	path, err = cfg.ExpandedKeyFile()
	require.NoError(t, err)
	assert.Equal(t, "/etc/keys/id", path)
}

func TestCredentialsFrom(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{"both set", map[string]string{EnvAccessKeyID: "AKIA", EnvSecretAccessKey: "secret"}, false},
		{"with session token", map[string]string{EnvAccessKeyID: "AKIA", EnvSecretAccessKey: "secret", EnvSessionToken: "tok"}, false},
		{"missing secret", map[string]string{EnvAccessKeyID: "AKIA"}, true},
		{"missing both", map[string]string{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, err := credentialsFrom(func(k string) string { return tt.env[k] })
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMissingCredentials)
				assert.True(t, strings.Contains(err.Error(), EnvAccessKeyID), "error should carry a remediation hint")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.env[EnvAccessKeyID], creds.AccessKeyID)
			assert.Equal(t, tt.env[EnvSessionToken], creds.SessionToken)
		})
	}
}
