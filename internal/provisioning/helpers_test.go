package provisioning

import (
	"bytes"
	"context"
	"log"
	"testing"
	"time"

	"github.com/imamik/puppetctl/internal/config"
	"github.com/imamik/puppetctl/internal/platform/ec2"
	ptest "github.com/imamik/puppetctl/internal/testing"
)

// testEnv bundles a provisioning context with the doubles behind it.
type testEnv struct {
	ctx      *Context
	fixture  *ptest.CloudFixture
	cloud    *ptest.MockCloud
	remote   *ptest.MockRemote
	prompter *ptest.MockPrompter
	recorder *ptest.Recorder
	logs     *bytes.Buffer
}

func fastTimeouts() *config.Timeouts {
	return &config.Timeouts{
		PollInterval:    time.Millisecond,
		PollMaxDelay:    5 * time.Millisecond,
		PollMultiplier:  1.5,
		InstanceRunning: 2 * time.Second,
		SSHReady:        2 * time.Second,
		SSHDial:         time.Second,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	recorder := ptest.NewRecorder()
	fixture := ptest.NewCloudFixture()
	fixture.Mock().Recorder = recorder
	remote := &ptest.MockRemote{Recorder: recorder}
	prompter := ptest.NewMockPrompter()
	logs := &bytes.Buffer{}

	ctx := &Context{
		Context:  context.Background(),
		Config:   ptest.MinimalConfig(),
		Session:  NewSession(),
		Infra:    fixture.Mock(),
		Remote:   remote,
		Prompter: prompter,
		Observer: NewConsoleObserverWithLogger(log.New(logs, "", 0)),
		Timeouts: fastTimeouts(),
		Metrics:  NewMetrics(),
	}
	t.Cleanup(func() { prompter.AssertExpectations(t) })

	return &testEnv{
		ctx:      ctx,
		fixture:  fixture,
		cloud:    fixture.Mock(),
		remote:   remote,
		prompter: prompter,
		recorder: recorder,
		logs:     logs,
	}
}

// withCloud swaps the fixture for a bare mock.
func (e *testEnv) withCloud(cloud *ptest.MockCloud) *testEnv {
	e.cloud = cloud
	e.ctx.Infra = cloud
	return e
}

func (e *testEnv) seedGroup() *testEnv {
	e.fixture.AddSecurityGroup(&ec2.SecurityGroup{
		ID:      "sg-puppet",
		Name:    config.DefaultSecurityGroup,
		Ingress: []ec2.IngressRule{ec2.SSHFromAnywhere},
	})
	return e
}
