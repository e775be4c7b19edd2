package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/imamik/puppetctl/internal/platform/ec2"
)

// MockCloud is a mock implementation of ec2.InfrastructureManager.
type MockCloud struct {
	mu sync.Mutex

	// Recorder, when set, receives every call in order.
	Recorder *Recorder

	// Configurable responses
	GetImageFunc            func(ctx context.Context, imageID string) (*ec2.Image, error)
	RunInstanceFunc         func(ctx context.Context, opts ec2.RunInstanceOpts) (*ec2.Instance, error)
	GetInstanceFunc         func(ctx context.Context, instanceID string) (*ec2.Instance, error)
	ListInstancesFunc       func(ctx context.Context) ([]*ec2.Instance, error)
	AddTagFunc              func(ctx context.Context, instanceID, key, value string) error
	ListSecurityGroupsFunc  func(ctx context.Context) ([]*ec2.SecurityGroup, error)
	CreateSecurityGroupFunc func(ctx context.Context, name, description string) (*ec2.SecurityGroup, error)
	AuthorizeIngressFunc    func(ctx context.Context, groupID string, rule ec2.IngressRule) error
	ImportKeyPairFunc       func(ctx context.Context, name string, publicKey []byte) (*ec2.KeyPair, error)

	// Call tracking
	GetImageCalls            []string
	RunInstanceCalls         []ec2.RunInstanceOpts
	GetInstanceCalls         []string
	ListInstancesCalls       int
	AddTagCalls              []AddTagCall
	ListSecurityGroupsCalls  int
	CreateSecurityGroupCalls []string
	AuthorizeIngressCalls    []AuthorizeIngressCall
	ImportKeyPairCalls       []string

	runSeq int
}

// AddTagCall tracks arguments to AddTag.
type AddTagCall struct {
	InstanceID string
	Key        string
	Value      string
}

// AuthorizeIngressCall tracks arguments to AuthorizeIngress.
type AuthorizeIngressCall struct {
	GroupID string
	Rule    ec2.IngressRule
}

var _ ec2.InfrastructureManager = (*MockCloud)(nil)

func (m *MockCloud) GetImage(ctx context.Context, imageID string) (*ec2.Image, error) {
	m.mu.Lock()
	m.GetImageCalls = append(m.GetImageCalls, imageID)
	m.mu.Unlock()
	m.Recorder.Record("GetImage %s", imageID)

	if m.GetImageFunc != nil {
		return m.GetImageFunc(ctx, imageID)
	}
	return &ec2.Image{ID: imageID, Name: "test-image"}, nil
}

func (m *MockCloud) RunInstance(ctx context.Context, opts ec2.RunInstanceOpts) (*ec2.Instance, error) {
	m.mu.Lock()
	m.RunInstanceCalls = append(m.RunInstanceCalls, opts)
	m.runSeq++
	seq := m.runSeq
	m.mu.Unlock()
	m.Recorder.Record("RunInstance %s %s", opts.ImageID, opts.InstanceType)

	if m.RunInstanceFunc != nil {
		return m.RunInstanceFunc(ctx, opts)
	}
	return &ec2.Instance{
		ID:           fmt.Sprintf("i-%04d", seq),
		ImageID:      opts.ImageID,
		InstanceType: opts.InstanceType,
		Status:       ec2.StatusPending,
		Tags:         map[string]string{},
	}, nil
}

func (m *MockCloud) GetInstance(ctx context.Context, instanceID string) (*ec2.Instance, error) {
	m.mu.Lock()
	m.GetInstanceCalls = append(m.GetInstanceCalls, instanceID)
	m.mu.Unlock()
	m.Recorder.Record("GetInstance %s", instanceID)

	if m.GetInstanceFunc != nil {
		return m.GetInstanceFunc(ctx, instanceID)
	}
	return nil, &ec2.InstanceNotFoundError{InstanceID: instanceID}
}

func (m *MockCloud) ListInstances(ctx context.Context) ([]*ec2.Instance, error) {
	m.mu.Lock()
	m.ListInstancesCalls++
	m.mu.Unlock()
	m.Recorder.Record("ListInstances")

	if m.ListInstancesFunc != nil {
		return m.ListInstancesFunc(ctx)
	}
	return nil, nil
}

func (m *MockCloud) AddTag(ctx context.Context, instanceID, key, value string) error {
	m.mu.Lock()
	m.AddTagCalls = append(m.AddTagCalls, AddTagCall{InstanceID: instanceID, Key: key, Value: value})
	m.mu.Unlock()
	m.Recorder.Record("AddTag %s %s=%s", instanceID, key, value)

	if m.AddTagFunc != nil {
		return m.AddTagFunc(ctx, instanceID, key, value)
	}
	return nil
}

func (m *MockCloud) ListSecurityGroups(ctx context.Context) ([]*ec2.SecurityGroup, error) {
	m.mu.Lock()
	m.ListSecurityGroupsCalls++
	m.mu.Unlock()
	m.Recorder.Record("ListSecurityGroups")

	if m.ListSecurityGroupsFunc != nil {
		return m.ListSecurityGroupsFunc(ctx)
	}
	return nil, nil
}

func (m *MockCloud) CreateSecurityGroup(ctx context.Context, name, description string) (*ec2.SecurityGroup, error) {
	m.mu.Lock()
	m.CreateSecurityGroupCalls = append(m.CreateSecurityGroupCalls, name)
	m.mu.Unlock()
	m.Recorder.Record("CreateSecurityGroup %s", name)

	if m.CreateSecurityGroupFunc != nil {
		return m.CreateSecurityGroupFunc(ctx, name, description)
	}
	return &ec2.SecurityGroup{ID: "sg-0001", Name: name, Description: description}, nil
}

func (m *MockCloud) AuthorizeIngress(ctx context.Context, groupID string, rule ec2.IngressRule) error {
	m.mu.Lock()
	m.AuthorizeIngressCalls = append(m.AuthorizeIngressCalls, AuthorizeIngressCall{GroupID: groupID, Rule: rule})
	m.mu.Unlock()
	m.Recorder.Record("AuthorizeIngress %s %s/%d", groupID, rule.Protocol, rule.FromPort)

	if m.AuthorizeIngressFunc != nil {
		return m.AuthorizeIngressFunc(ctx, groupID, rule)
	}
	return nil
}

func (m *MockCloud) ImportKeyPair(ctx context.Context, name string, publicKey []byte) (*ec2.KeyPair, error) {
	m.mu.Lock()
	m.ImportKeyPairCalls = append(m.ImportKeyPairCalls, name)
	m.mu.Unlock()
	m.Recorder.Record("ImportKeyPair %s", name)

	if m.ImportKeyPairFunc != nil {
		return m.ImportKeyPairFunc(ctx, name, publicKey)
	}
	return &ec2.KeyPair{ID: "key-0001", Name: name, Fingerprint: "00:11:22"}, nil
}

// MockRemote is a mock SSH runner.
type MockRemote struct {
	mu sync.Mutex

	// Recorder, when set, receives every call in order.
	Recorder *Recorder

	RunFunc  func(ctx context.Context, host, command string) (string, error)
	SudoFunc func(ctx context.Context, host, command string) (string, error)

	RunCalls  []RemoteCall
	SudoCalls []RemoteCall
}

// RemoteCall tracks arguments to Run and Sudo.
type RemoteCall struct {
	Host    string
	Command string
}

func (m *MockRemote) Run(ctx context.Context, host, command string) (string, error) {
	m.mu.Lock()
	m.RunCalls = append(m.RunCalls, RemoteCall{Host: host, Command: command})
	m.mu.Unlock()
	m.Recorder.Record("Run %s %s", host, command)

	if m.RunFunc != nil {
		return m.RunFunc(ctx, host, command)
	}
	return "", nil
}

func (m *MockRemote) Sudo(ctx context.Context, host, command string) (string, error) {
	m.mu.Lock()
	m.SudoCalls = append(m.SudoCalls, RemoteCall{Host: host, Command: command})
	m.mu.Unlock()
	m.Recorder.Record("Sudo %s %s", host, command)

	if m.SudoFunc != nil {
		return m.SudoFunc(ctx, host, command)
	}
	return "", nil
}

// MockPrompter is a testify mock for operator prompts.
type MockPrompter struct {
	mock.Mock
}

// Input returns the configured answer. The validate function is applied to
// it so tests exercise the same validation as a real prompt.
func (m *MockPrompter) Input(ctx context.Context, title, defaultValue string, validate func(string) error) (string, error) {
	args := m.Called(ctx, title, defaultValue)
	answer, err := args.String(0), args.Error(1)
	if err != nil {
		return "", err
	}
	if answer == "" {
		answer = defaultValue
	}
	if validate != nil {
		if verr := validate(answer); verr != nil {
			return "", verr
		}
	}
	return answer, nil
}

// Select returns the configured index.
func (m *MockPrompter) Select(ctx context.Context, title string, options []string) (int, error) {
	args := m.Called(ctx, title, options)
	return args.Int(0), args.Error(1)
}

// NewMockPrompter creates a prompter with no expectations.
func NewMockPrompter() *MockPrompter {
	return &MockPrompter{}
}

// WithName expects one name prompt with the given default and answers it.
func (m *MockPrompter) WithName(defaultValue, answer string) *MockPrompter {
	m.On("Input", mock.Anything, mock.Anything, defaultValue).Return(answer, nil).Once()
	return m
}

// WithChoice expects one selection prompt and answers with index.
func (m *MockPrompter) WithChoice(index int) *MockPrompter {
	m.On("Select", mock.Anything, mock.Anything, mock.Anything).Return(index, nil).Once()
	return m
}
