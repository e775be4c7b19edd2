package ssh

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/imamik/puppetctl/internal/util/keygen"
)

// generateTestKey generates a test RSA key pair for use in tests.
func generateTestKey(t *testing.T) *keygen.KeyPair {
	t.Helper()
	keyPair, err := keygen.GenerateRSAKeyPair(2048)
	if err != nil {
		t.Fatalf("failed to generate test key: %v", err)
	}
	return keyPair
}

func TestNewClient_Success(t *testing.T) {
	keyPair := generateTestKey(t)

	cfg := &Config{
		Host:       "203.0.113.10",
		User:       "ubuntu",
		PrivateKey: keyPair.PrivateKey,
	}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if client == nil {
		t.Fatal("expected client, got nil")
	}

	// Verify defaults were applied
	if client.config.Port != defaultPort { //nolint:staticcheck // t.Fatal above ensures client is not nil
		t.Errorf("expected port %d, got %d", defaultPort, client.config.Port)
	}
	if client.config.DialTimeout != defaultDialTimeout {
		t.Errorf("expected timeout %v, got %v", defaultDialTimeout, client.config.DialTimeout)
	}
	if client.config.MaxRetries != defaultMaxRetries {
		t.Errorf("expected max retries %d, got %d", defaultMaxRetries, client.config.MaxRetries)
	}
	if client.config.RetryDelay != defaultRetryDelay {
		t.Errorf("expected retry delay %v, got %v", defaultRetryDelay, client.config.RetryDelay)
	}
}

func TestNewClient_InvalidKey(t *testing.T) {
	cfg := &Config{
		Host:       "203.0.113.10",
		User:       "ubuntu",
		PrivateKey: []byte("invalid key"),
	}

	_, err := NewClient(cfg)
	if err == nil {
		t.Fatal("expected error for invalid private key, got nil")
	}

	want := "failed to parse private key"
	if len(err.Error()) < len(want) || err.Error()[:len(want)] != want {
		t.Errorf("expected error starting with %q, got: %v", want, err)
	}
}

func TestNewClient_NilConfig(t *testing.T) {
	_, err := NewClient(nil)
	if err == nil {
		t.Fatal("expected error for nil config, got nil")
	}

	if err.Error() != "config cannot be nil" {
		t.Errorf("expected 'config cannot be nil' error, got: %v", err)
	}
}

func TestNewClient_EmptyHost(t *testing.T) {
	keyPair := generateTestKey(t)

	cfg := &Config{
		Host:       "",
		User:       "ubuntu",
		PrivateKey: keyPair.PrivateKey,
	}

	_, err := NewClient(cfg)
	if err == nil {
		t.Fatal("expected error for empty host, got nil")
	}

	want := "config host cannot be empty"
	if err.Error() != want {
		t.Errorf("expected error %q, got: %v", want, err)
	}
}

func TestNewClient_EmptyUser(t *testing.T) {
	keyPair := generateTestKey(t)

	cfg := &Config{
		Host:       "203.0.113.10",
		User:       "",
		PrivateKey: keyPair.PrivateKey,
	}

	_, err := NewClient(cfg)
	if err == nil {
		t.Fatal("expected error for empty user, got nil")
	}

	want := "config user cannot be empty"
	if err.Error() != want {
		t.Errorf("expected error %q, got: %v", want, err)
	}
}

func TestNewClient_EmptyPrivateKey(t *testing.T) {
	cfg := &Config{
		Host:       "203.0.113.10",
		User:       "ubuntu",
		PrivateKey: nil,
	}

	_, err := NewClient(cfg)
	if err == nil {
		t.Fatal("expected error for empty private key, got nil")
	}

	want := "config private key cannot be empty"
	if err.Error() != want {
		t.Errorf("expected error %q, got: %v", want, err)
	}
}

func TestNewClient_CustomConfig(t *testing.T) {
	keyPair := generateTestKey(t)

	customPort := 2222
	customTimeout := 5 * time.Second
	customMaxRetries := 10
	customRetryDelay := 2 * time.Second

	cfg := &Config{
		Host:        "203.0.113.10",
		Port:        customPort,
		User:        "ubuntu",
		PrivateKey:  keyPair.PrivateKey,
		DialTimeout: customTimeout,
		MaxRetries:  customMaxRetries,
		RetryDelay:  customRetryDelay,
	}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	// Verify custom values were preserved
	if client.config.Port != customPort {
		t.Errorf("expected port %d, got %d", customPort, client.config.Port)
	}
	if client.config.DialTimeout != customTimeout {
		t.Errorf("expected timeout %v, got %v", customTimeout, client.config.DialTimeout)
	}
	if client.config.MaxRetries != customMaxRetries {
		t.Errorf("expected max retries %d, got %d", customMaxRetries, client.config.MaxRetries)
	}
	if client.config.RetryDelay != customRetryDelay {
		t.Errorf("expected retry delay %v, got %v", customRetryDelay, client.config.RetryDelay)
	}
}

func TestNewClient_ConfigNotMutated(t *testing.T) {
	keyPair := generateTestKey(t)

	cfg := &Config{
		Host:       "203.0.113.10",
		User:       "ubuntu",
		PrivateKey: keyPair.PrivateKey,
		// Leave all optional fields as zero values
	}

	// Store original zero values
	originalPort := cfg.Port
	originalDialTimeout := cfg.DialTimeout
	originalMaxRetries := cfg.MaxRetries
	originalRetryDelay := cfg.RetryDelay

	_, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	// Verify original config was NOT mutated
	if cfg.Port != originalPort {
		t.Errorf("config was mutated: port changed from %d to %d", originalPort, cfg.Port)
	}
	if cfg.DialTimeout != originalDialTimeout {
		t.Errorf("config was mutated: DialTimeout changed from %v to %v", originalDialTimeout, cfg.DialTimeout)
	}
	if cfg.MaxRetries != originalMaxRetries {
		t.Errorf("config was mutated: MaxRetries changed from %d to %d", originalMaxRetries, cfg.MaxRetries)
	}
	if cfg.RetryDelay != originalRetryDelay {
		t.Errorf("config was mutated: RetryDelay changed from %v to %v", originalRetryDelay, cfg.RetryDelay)
	}
}

func TestNewClient_ParsesPrivateKey(t *testing.T) {
	keyPair := generateTestKey(t)

	cfg := &Config{
		Host:       "203.0.113.10",
		User:       "ubuntu",
		PrivateKey: keyPair.PrivateKey,
	}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	// Verify signer was created (key was parsed)
	if client.signer == nil {
		t.Fatal("expected signer to be set, got nil")
	}
}

func TestExecute_ContextCancellation(t *testing.T) {
	keyPair := generateTestKey(t)

	host, port := droppingListener(t)
	cfg := &Config{
		Host:        host,
		Port:        port,
		User:        "ubuntu",
		PrivateKey:  keyPair.PrivateKey,
		DialTimeout: time.Second,
		MaxRetries:  3,
		RetryDelay:  100 * time.Millisecond,
	}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("expected no error creating client, got: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.Execute(ctx, "echo test")
	if err == nil {
		t.Fatal("expected error for cancelled context, got nil")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got: %v", err)
	}
}

// droppingListener starts a listener that closes every connection before the
// SSH handshake and returns its host and port.
func droppingListener(t *testing.T) (string, int) {
	host, port, _ := countingDroppingListener(t)
	return host, port
}

// countingDroppingListener is droppingListener that also counts accepted
// connections.
func countingDroppingListener(t *testing.T) (string, int, *atomic.Int32) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	accepted := &atomic.Int32{}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			accepted.Add(1)
			_ = conn.Close()
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port, accepted
}

// silentListener accepts connections and never speaks, stalling the SSH
// handshake.
func silentListener(t *testing.T) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	var mu sync.Mutex
	var conns []net.Conn
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

func TestRunner_StalledHandshakeHonorsContext(t *testing.T) {
	keyPair := generateTestKey(t)
	host, port := silentListener(t)

	runner, err := NewRunner("ubuntu", keyPair.PrivateKey, 30*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	runner.port = port

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = runner.Run(ctx, host, "ls")
	if err == nil {
		t.Fatal("expected error from stalled handshake")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded in chain, got: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("handshake outlived its context: %v", elapsed)
	}
}

func TestClient_AppliesDefaults(t *testing.T) {
	keyPair := generateTestKey(t)

	tests := []struct {
		name            string
		cfg             *Config
		wantPort        int
		wantDialTimeout time.Duration
		wantMaxRetries  int
		wantRetryDelay  time.Duration
	}{
		{
			name: "zero values get defaults",
			cfg: &Config{
				Host:       "203.0.113.10",
				User:       "ubuntu",
				PrivateKey: keyPair.PrivateKey,
				// All optional fields zero
			},
			wantPort:        defaultPort,
			wantDialTimeout: defaultDialTimeout,
			wantMaxRetries:  defaultMaxRetries,
			wantRetryDelay:  defaultRetryDelay,
		},
		{
			name: "custom values are preserved",
			cfg: &Config{
				Host:        "203.0.113.10",
				Port:        2222,
				User:        "ubuntu",
				PrivateKey:  keyPair.PrivateKey,
				DialTimeout: 5 * time.Second,
				MaxRetries:  10,
				RetryDelay:  2 * time.Second,
			},
			wantPort:        2222,
			wantDialTimeout: 5 * time.Second,
			wantMaxRetries:  10,
			wantRetryDelay:  2 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			// Verify client uses expected values (either defaults or custom)
			if client.config.Port != tt.wantPort {
				t.Errorf("port = %d, want %d", client.config.Port, tt.wantPort)
			}
			if client.config.DialTimeout != tt.wantDialTimeout {
				t.Errorf("DialTimeout = %v, want %v", client.config.DialTimeout, tt.wantDialTimeout)
			}
			if client.config.MaxRetries != tt.wantMaxRetries {
				t.Errorf("MaxRetries = %d, want %d", client.config.MaxRetries, tt.wantMaxRetries)
			}
			if client.config.RetryDelay != tt.wantRetryDelay {
				t.Errorf("RetryDelay = %v, want %v", client.config.RetryDelay, tt.wantRetryDelay)
			}
		})
	}
}

func TestExecute_NoRetryDialsOnce(t *testing.T) {
	keyPair := generateTestKey(t)
	host, port := droppingListener(t)

	client, err := NewClient(&Config{
		Host:        host,
		Port:        port,
		User:        "ubuntu",
		PrivateKey:  keyPair.PrivateKey,
		DialTimeout: time.Second,
		MaxRetries:  NoRetry,
		RetryDelay:  time.Hour,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := time.Now()
	_, err = client.Execute(context.Background(), "ls")
	if err == nil {
		t.Fatal("expected handshake error, got nil")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("expected a single attempt, took %v", elapsed)
	}
	if !strings.Contains(err.Error(), "after 0 retry attempts") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCommandError(t *testing.T) {
	inner := errors.New("Process exited with status 100")
	err := &CommandError{
		Host:    "203.0.113.10",
		Command: "sudo aptitude install -q -y puppet",
		Output:  "E: Unable to locate package",
		Err:     inner,
	}

	if !errors.Is(err, inner) {
		t.Error("expected CommandError to unwrap to the exit error")
	}
	msg := err.Error()
	for _, want := range []string{"203.0.113.10", "aptitude install", "Unable to locate package"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message %q missing %q", msg, want)
		}
	}
}

func TestSudoCommand(t *testing.T) {
	tests := []struct {
		user string
		want string
	}{
		{"ubuntu", "sudo aptitude install -q -y puppet"},
		{"root", "aptitude install -q -y puppet"},
	}

	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			if got := SudoCommand(tt.user, "aptitude install -q -y puppet"); got != tt.want {
				t.Errorf("SudoCommand(%q) = %q, want %q", tt.user, got, tt.want)
			}
		})
	}
}

func TestNewRunner(t *testing.T) {
	keyPair := generateTestKey(t)

	runner, err := NewRunner("ubuntu", keyPair.PrivateKey, 3*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runner.user != "ubuntu" {
		t.Errorf("user = %q, want ubuntu", runner.user)
	}
	if runner.port != defaultPort {
		t.Errorf("port = %d, want %d", runner.port, defaultPort)
	}

	if _, err := NewRunner("", keyPair.PrivateKey, 0); err == nil {
		t.Error("expected error for empty user")
	}
	if _, err := NewRunner("ubuntu", []byte("not a key"), 0); err == nil {
		t.Error("expected error for invalid key")
	}
}

func TestNewRunnerFromFile(t *testing.T) {
	keyPair := generateTestKey(t)
	path := filepath.Join(t.TempDir(), "ec2-puppet.pem")
	if err := os.WriteFile(path, keyPair.PrivateKey, 0600); err != nil {
		t.Fatalf("failed to write key: %v", err)
	}

	if _, err := NewRunnerFromFile("ubuntu", path, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := NewRunnerFromFile("ubuntu", filepath.Join(t.TempDir(), "missing.pem"), 0)
	if err == nil || !strings.Contains(err.Error(), "failed to read private key") {
		t.Errorf("expected read error, got: %v", err)
	}
}

func TestRunner_RunFailsFast(t *testing.T) {
	keyPair := generateTestKey(t)
	host, port := droppingListener(t)

	runner, err := NewRunner("ubuntu", keyPair.PrivateKey, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	runner.port = port

	_, err = runner.Run(context.Background(), host, "ls")
	if err == nil {
		t.Fatal("expected error from dropped connection")
	}
	if !strings.Contains(err.Error(), "after 0 retry attempts") {
		t.Errorf("Run must dial once, got: %v", err)
	}
}

func TestRunner_SudoRetriesDial(t *testing.T) {
	keyPair := generateTestKey(t)
	host, port, accepted := countingDroppingListener(t)

	runner, err := NewRunner("ubuntu", keyPair.PrivateKey, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	runner.port = port
	runner.retryDelay = 10 * time.Millisecond

	_, err = runner.Sudo(context.Background(), host, "aptitude update")
	if err == nil {
		t.Fatal("expected error from dropped connection")
	}
	want := fmt.Sprintf("after %d retry attempts", defaultMaxRetries)
	if !strings.Contains(err.Error(), want) {
		t.Errorf("expected %q in error, got: %v", want, err)
	}
	if got := accepted.Load(); got != defaultMaxRetries+1 {
		t.Errorf("expected %d dials, got %d", defaultMaxRetries+1, got)
	}
}

func TestRunner_SudoStopsRetryingOnCancel(t *testing.T) {
	keyPair := generateTestKey(t)
	host, port := droppingListener(t)

	runner, err := NewRunner("ubuntu", keyPair.PrivateKey, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	runner.port = port

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err = runner.Sudo(ctx, host, "aptitude update")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got: %v", err)
	}
	if elapsed := time.Since(start); elapsed > defaultRetryDelay {
		t.Errorf("expected no backoff after cancel, took %v", elapsed)
	}
}
