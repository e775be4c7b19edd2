package provisioning

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/puppetctl/internal/platform/ec2"
)

func TestEnsureSecurityGroup_GetOrCreate(t *testing.T) {
	env := newTestEnv(t)

	first, origin, err := EnsureSecurityGroup(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, GroupCreated, origin)
	assert.Equal(t, "puppet", first.Name)
	assert.Equal(t, []ec2.IngressRule{ec2.SSHFromAnywhere}, first.Ingress)

	second, origin, err := EnsureSecurityGroup(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, GroupExisting, origin)
	assert.Equal(t, first.ID, second.ID)

	assert.Equal(t, []string{"puppet"}, env.cloud.CreateSecurityGroupCalls, "group must be created exactly once")
	require.Len(t, env.cloud.AuthorizeIngressCalls, 1)
	assert.Equal(t, ec2.IngressRule{Protocol: "tcp", FromPort: 22, ToPort: 22, CIDR: "0.0.0.0/0"}, env.cloud.AuthorizeIngressCalls[0].Rule)
}

func TestEnsureSecurityGroup_Existing(t *testing.T) {
	env := newTestEnv(t).seedGroup()

	group, origin, err := EnsureSecurityGroup(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, GroupExisting, origin)
	assert.Equal(t, "sg-puppet", group.ID)
	assert.Empty(t, env.cloud.CreateSecurityGroupCalls)
	assert.Empty(t, env.cloud.AuthorizeIngressCalls)
}

func TestEnsureSecurityGroup_AuthorizeFails(t *testing.T) {
	env := newTestEnv(t)
	env.cloud.AuthorizeIngressFunc = func(context.Context, string, ec2.IngressRule) error {
		return errors.New("UnauthorizedOperation")
	}

	_, _, err := EnsureSecurityGroup(env.ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open SSH on security group puppet")
}
