package handlers

import (
	"bytes"
	"context"
	"log"
	"testing"
	"time"

	"github.com/imamik/puppetctl/internal/config"
	"github.com/imamik/puppetctl/internal/platform/ec2"
	"github.com/imamik/puppetctl/internal/provisioning"
	ptest "github.com/imamik/puppetctl/internal/testing"
)

// handlerEnv replaces every factory with in-memory doubles.
type handlerEnv struct {
	cfg      *config.Config
	fixture  *ptest.CloudFixture
	remote   *ptest.MockRemote
	prompter *ptest.MockPrompter
	out      *bytes.Buffer
	errOut   *bytes.Buffer
	logs     *bytes.Buffer
	recorder *ptest.Recorder

	region  string
	configs []string
	pCtx    *provisioning.Context
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	origLoad := loadConfig
	origCreds := loadCredentials
	origInfra := newInfraClient
	origRemote := newRemoteRunner
	origPrompter := newPrompter
	origProvisioner := newProvisioner
	origCtx := newProvisioningContext
	origStdout, origStderr := stdout, stderr
	t.Cleanup(func() {
		loadConfig = origLoad
		loadCredentials = origCreds
		newInfraClient = origInfra
		newRemoteRunner = origRemote
		newPrompter = origPrompter
		newProvisioner = origProvisioner
		newProvisioningContext = origCtx
		stdout, stderr = origStdout, origStderr
	})

	recorder := ptest.NewRecorder()
	env := &handlerEnv{
		cfg:      ptest.MinimalConfig(),
		fixture:  ptest.NewCloudFixture(),
		remote:   &ptest.MockRemote{Recorder: recorder},
		prompter: ptest.NewMockPrompter(),
		out:      &bytes.Buffer{},
		errOut:   &bytes.Buffer{},
		logs:     &bytes.Buffer{},
		recorder: recorder,
	}
	env.fixture.Mock().Recorder = recorder
	t.Cleanup(func() { env.prompter.AssertExpectations(t) })

	loadConfig = func(path string) (*config.Config, error) {
		env.configs = append(env.configs, path)
		cfg := *env.cfg
		return &cfg, nil
	}
	loadCredentials = func() (config.Credentials, error) {
		return config.Credentials{AccessKeyID: "AKIDEXAMPLE", SecretAccessKey: "secret"}, nil
	}
	newInfraClient = func(_ context.Context, region string, _ config.Credentials) (ec2.InfrastructureManager, error) {
		env.region = region
		return env.fixture.Mock(), nil
	}
	newRemoteRunner = func(_ *config.Config, _ *config.Timeouts) (provisioning.RemoteRunner, error) {
		return env.remote, nil
	}
	newPrompter = func() provisioning.Prompter { return env.prompter }
	newProvisioningContext = func(ctx context.Context, cfg *config.Config, infra ec2.InfrastructureManager, remote provisioning.RemoteRunner, prompter provisioning.Prompter) *provisioning.Context {
		pCtx := provisioning.NewContext(ctx, cfg, infra, remote, prompter)
		pCtx.Observer = provisioning.NewConsoleObserverWithLogger(log.New(env.logs, "", 0))
		pCtx.Timeouts = &config.Timeouts{
			PollInterval:    time.Millisecond,
			PollMaxDelay:    5 * time.Millisecond,
			PollMultiplier:  1.5,
			InstanceRunning: 2 * time.Second,
			SSHReady:        2 * time.Second,
			SSHDial:         time.Second,
		}
		env.pCtx = pCtx
		return pCtx
	}
	stdout = env.out
	stderr = env.errOut

	return env
}
