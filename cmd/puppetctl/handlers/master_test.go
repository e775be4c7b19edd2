package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/puppetctl/internal/config"
	ptest "github.com/imamik/puppetctl/internal/testing"
	"github.com/imamik/puppetctl/internal/util/tags"
)

func TestCreateMaster(t *testing.T) {
	env := newHandlerEnv(t)

	err := CreateMaster(ptest.TestContext(t), Options{ConfigPath: "puppetctl.yaml"}, "web")
	require.NoError(t, err)

	assert.Equal(t, []string{"puppetctl.yaml"}, env.configs)
	assert.Equal(t, config.DefaultRegion, env.region)
	assert.Contains(t, env.out.String(), `Puppet master "web" (i-0001) is ready at 203.0.113.11`)

	master := env.fixture.Instance("i-0001")
	require.NotNil(t, master)
	assert.Equal(t, tags.RoleMaster, master.Tags[tags.KeyType])
	assert.Equal(t, "web", master.Tags[tags.KeyName])

	require.Len(t, env.remote.SudoCalls, 1)
	assert.Equal(t, config.DefaultMasterInstallCommand, env.remote.SudoCalls[0].Command)
	assert.Equal(t, master.ID, env.pCtx.Session.WorkingMaster.ID)
}

func TestCreateMaster_RegionFlag(t *testing.T) {
	env := newHandlerEnv(t)

	require.NoError(t, CreateMaster(ptest.TestContext(t), Options{Region: "eu-west-1"}, "web"))
	assert.Equal(t, "eu-west-1", env.region)
}

func TestCreateMaster_MissingCredentials(t *testing.T) {
	env := newHandlerEnv(t)
	loadCredentials = func() (config.Credentials, error) {
		return config.Credentials{}, config.ErrMissingCredentials
	}

	err := CreateMaster(ptest.TestContext(t), Options{}, "web")
	require.ErrorIs(t, err, config.ErrMissingCredentials)
	assert.Empty(t, env.fixture.Mock().RunInstanceCalls)
}

func TestCreateMaster_ConfigError(t *testing.T) {
	env := newHandlerEnv(t)
	loadConfig = func(string) (*config.Config, error) {
		return nil, errors.New("bad yaml")
	}

	err := CreateMaster(ptest.TestContext(t), Options{}, "web")
	require.Error(t, err)
	assert.Empty(t, env.region, "no client should be created")
}

func TestCreateMaster_InstallFailure(t *testing.T) {
	env := newHandlerEnv(t)
	env.remote.SudoFunc = func(_ context.Context, host, _ string) (string, error) {
		return "", fmt.Errorf("exit status 100 on %s", host)
	}

	err := CreateMaster(ptest.TestContext(t), Options{}, "web")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create master failed")
	assert.NotContains(t, env.out.String(), "is ready")
}

func TestCreateMaster_WritesMetrics(t *testing.T) {
	newHandlerEnv(t)
	path := t.TempDir() + "/puppetctl.prom"

	require.NoError(t, CreateMaster(ptest.TestContext(t), Options{MetricsFile: path}, "web"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	data := string(raw)
	assert.Contains(t, data, `puppetctl_ec2_instances_launched_total{role="puppetmaster"} 1`)
	assert.Contains(t, data, `puppetctl_puppet_installs_total{result="success",role="puppetmaster"} 1`)
}

func TestInstallMaster(t *testing.T) {
	env := newHandlerEnv(t)

	require.NoError(t, InstallMaster(ptest.TestContext(t), Options{}, "198.51.100.7"))

	require.Len(t, env.remote.SudoCalls, 1)
	assert.Equal(t, "198.51.100.7", env.remote.SudoCalls[0].Host)
	assert.Contains(t, env.out.String(), "Puppet master installed on 198.51.100.7")
}

func TestInstallMaster_RequiresHost(t *testing.T) {
	env := newHandlerEnv(t)

	require.Error(t, InstallMaster(ptest.TestContext(t), Options{}, ""))
	assert.Empty(t, env.configs)
}
