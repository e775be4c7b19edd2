package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable wait and polling values.
// These values can be customized via environment variables.
type Timeouts struct {
	PollInterval    time.Duration // First delay between status checks and SSH probes
	PollMaxDelay    time.Duration // Cap for the backoff delay
	PollMultiplier  float64       // Backoff growth factor
	InstanceRunning time.Duration // Deadline for an instance to leave "pending"
	SSHReady        time.Duration // Deadline for SSH to accept the probe command
	SSHDial         time.Duration // Timeout for a single SSH TCP dial
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - PUPPETCTL_POLL_INTERVAL (default: 2s)
//   - PUPPETCTL_POLL_MAX_DELAY (default: 15s)
//   - PUPPETCTL_POLL_MULTIPLIER (default: 1.5)
//   - PUPPETCTL_TIMEOUT_INSTANCE_RUNNING (default: 10m)
//   - PUPPETCTL_TIMEOUT_SSH_READY (default: 5m)
//   - PUPPETCTL_TIMEOUT_SSH_DIAL (default: 10s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		PollInterval:    parseDuration("PUPPETCTL_POLL_INTERVAL", 2*time.Second),
		PollMaxDelay:    parseDuration("PUPPETCTL_POLL_MAX_DELAY", 15*time.Second),
		PollMultiplier:  parseFloat("PUPPETCTL_POLL_MULTIPLIER", 1.5),
		InstanceRunning: parseDuration("PUPPETCTL_TIMEOUT_INSTANCE_RUNNING", 10*time.Minute),
		SSHReady:        parseDuration("PUPPETCTL_TIMEOUT_SSH_READY", 5*time.Minute),
		SSHDial:         parseDuration("PUPPETCTL_TIMEOUT_SSH_DIAL", 10*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set, invalid or not positive, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}

// parseFloat parses a multiplier from an environment variable.
// Values below 1 would shrink the delay and are rejected.
func parseFloat(envVar string, defaultVal float64) float64 {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f < 1 {
		return defaultVal
	}

	return f
}
