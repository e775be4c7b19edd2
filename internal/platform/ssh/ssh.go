package ssh

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/imamik/puppetctl/internal/util/retry"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 10 * time.Second
	defaultMaxRetries  = 3
	defaultRetryDelay  = 2 * time.Second
	defaultMaxDelay    = 10 * time.Second
)

// NoRetry makes Execute dial exactly once. Callers that run their own
// readiness loop use it.
const NoRetry = -1

// Config holds SSH client configuration.
type Config struct {
	Host       string
	Port       int
	User       string
	PrivateKey []byte

	// DialTimeout is the timeout for establishing the TCP connection.
	// If zero, defaultDialTimeout is used.
	DialTimeout time.Duration

	// MaxRetries is the maximum number of connection retry attempts.
	// If zero, defaultMaxRetries is used. NoRetry disables retries.
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts.
	// If zero, defaultRetryDelay is used.
	RetryDelay time.Duration

	// HostKeyCallback handles host key verification.
	// If nil, ssh.InsecureIgnoreHostKey() is used. Instances are new and
	// their host keys are unknown until first boot.
	HostKeyCallback ssh.HostKeyCallback
}

// Client executes commands on a remote server via SSH.
// It parses the private key once during construction and
// creates connections on-demand per Execute call.
type Client struct {
	config *Config
	signer ssh.Signer
}

// CommandError is returned when the remote command ran and exited non-zero.
type CommandError struct {
	Host    string
	Command string
	Output  string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command failed on %s: %v\nCommand: %s\nOutput: %s", e.Host, e.Err, e.Command, e.Output)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewClient creates a new SSH client and validates the private key.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.Host == "" {
		return nil, fmt.Errorf("config host cannot be empty")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("config user cannot be empty")
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, fmt.Errorf("config private key cannot be empty")
	}

	// Copy config to avoid mutating caller's struct
	configCopy := *cfg

	if configCopy.Port == 0 {
		configCopy.Port = defaultPort
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.MaxRetries == 0 {
		configCopy.MaxRetries = defaultMaxRetries
	}
	if configCopy.RetryDelay == 0 {
		configCopy.RetryDelay = defaultRetryDelay
	}
	if configCopy.HostKeyCallback == nil {
		configCopy.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // host keys of new instances are unknown
	}

	signer, err := ssh.ParsePrivateKey(configCopy.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &Client{
		config: &configCopy,
		signer: signer,
	}, nil
}

// Execute runs a command on the remote host.
// Returns command output (stdout+stderr) and any execution error.
func (c *Client) Execute(ctx context.Context, command string) (string, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = client.Close() }()

	return c.runCommand(ctx, client, command)
}

// connect establishes SSH connection with retry logic.
func (c *Client) connect(ctx context.Context) (*ssh.Client, error) {
	config := &ssh.ClientConfig{
		User: c.config.User,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(c.signer),
		},
		HostKeyCallback: c.config.HostKeyCallback,
		Timeout:         c.config.DialTimeout,
	}

	addr := fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)
	var client *ssh.Client

	retries := c.config.MaxRetries
	if retries < 0 {
		retries = 0
	}

	err := retry.WithExponentialBackoffContext(ctx, func(ctx context.Context) error {
		var dialErr error
		client, dialErr = dial(ctx, addr, config)
		return dialErr
	},
		retry.WithMaxRetries(retries),
		retry.WithInitialDelay(c.config.RetryDelay),
		retry.WithMaxDelay(defaultMaxDelay),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to establish SSH connection to %s after %d retry attempts: %w",
			addr, retries, err)
	}

	return client, nil
}

// dial is ssh.Dial bounded by ctx: both the TCP connect and the handshake are
// abandoned when ctx ends.
func dial(ctx context.Context, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	d := net.Dialer{Timeout: config.Timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if !stop() {
		if err == nil {
			_ = c.Close()
		}
		return nil, fmt.Errorf("ssh handshake with %s interrupted: %w", addr, ctx.Err())
	}
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return ssh.NewClient(c, chans, reqs), nil
}

// runCommand executes a command on an established SSH session. The session
// is closed early if ctx ends.
func (c *Client) runCommand(ctx context.Context, client *ssh.Client, command string) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create SSH session on %s: %w", c.config.Host, err)
	}
	defer func() { _ = session.Close() }()

	stop := context.AfterFunc(ctx, func() { _ = session.Close() })
	defer stop()

	output, err := session.CombinedOutput(command)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return string(output), fmt.Errorf("command on %s interrupted: %w", c.config.Host, ctxErr)
		}
		return string(output), &CommandError{
			Host:    c.config.Host,
			Command: command,
			Output:  string(output),
			Err:     err,
		}
	}

	return string(output), nil
}

// Runner executes commands on any host with a fixed user and key.
type Runner struct {
	user        string
	privateKey  []byte
	port        int
	dialTimeout time.Duration

	// retryDelay overrides the client's initial dial backoff for Sudo.
	retryDelay time.Duration
}

// NewRunner validates the key once and returns a Runner. A zero dialTimeout
// uses the client default.
func NewRunner(user string, privateKey []byte, dialTimeout time.Duration) (*Runner, error) {
	if user == "" {
		return nil, fmt.Errorf("ssh user cannot be empty")
	}
	if _, err := ssh.ParsePrivateKey(privateKey); err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return &Runner{
		user:        user,
		privateKey:  privateKey,
		port:        defaultPort,
		dialTimeout: dialTimeout,
	}, nil
}

// NewRunnerFromFile reads the private key at path and calls NewRunner.
func NewRunnerFromFile(user, path string, dialTimeout time.Duration) (*Runner, error) {
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key %s: %w", path, err)
	}
	return NewRunner(user, key, dialTimeout)
}

// Run executes command on host as the runner's user. The connection is
// attempted once; the readiness wait owns retrying it.
func (r *Runner) Run(ctx context.Context, host, command string) (string, error) {
	return r.execute(ctx, host, command, NoRetry)
}

// Sudo executes command on host with elevated privileges. Dialing is retried
// with the client's default backoff. The command itself runs at most once.
func (r *Runner) Sudo(ctx context.Context, host, command string) (string, error) {
	return r.execute(ctx, host, SudoCommand(r.user, command), 0)
}

func (r *Runner) execute(ctx context.Context, host, command string, maxRetries int) (string, error) {
	client, err := NewClient(&Config{
		Host:        host,
		Port:        r.port,
		User:        r.user,
		PrivateKey:  r.privateKey,
		DialTimeout: r.dialTimeout,
		MaxRetries:  maxRetries,
		RetryDelay:  r.retryDelay,
	})
	if err != nil {
		return "", err
	}
	return client.Execute(ctx, command)
}

// SudoCommand prefixes command with sudo unless user is root.
func SudoCommand(user, command string) string {
	if user == "root" {
		return command
	}
	return "sudo " + command
}
