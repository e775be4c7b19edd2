package provisioning

import "context"

// Logger is the minimal logging interface used across provisioning.
type Logger interface {
	Printf(format string, v ...interface{})
}

// RemoteRunner executes shell commands on a host over SSH.
// Implemented by internal/platform/ssh.Runner.
type RemoteRunner interface {
	// Run executes command as the login user and returns combined output.
	Run(ctx context.Context, host, command string) (string, error)

	// Sudo executes command with elevated privileges.
	Sudo(ctx context.Context, host, command string) (string, error)
}

// Prompter asks the operator for input.
// Implemented by internal/ui/prompt.
type Prompter interface {
	// Input asks for a line of text. An empty answer yields defaultValue.
	// validate, when non-nil, is applied to the final answer.
	Input(ctx context.Context, title, defaultValue string, validate func(string) error) (string, error)

	// Select asks the operator to pick one option and returns its index.
	Select(ctx context.Context, title string, options []string) (int, error)
}
