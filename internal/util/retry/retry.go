// Package retry provides utilities for retrying operations with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Unlimited disables the attempt bound. Pair it with WithTimeout so the
// loop still ends.
const Unlimited = -1

// ErrTimeout is matched by errors.Is when a retry loop ran out of time.
var ErrTimeout = errors.New("timed out")

// Config holds retry configuration.
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// Timeout bounds the whole loop. Zero means no deadline of its own.
	Timeout time.Duration

	// OnRetry is called after a failed attempt, before sleeping.
	OnRetry func(attempt int, err error)
}

// Option is a functional option for retry configuration.
type Option func(*Config)

// WithExponentialBackoff executes the operation with exponential backoff retry.
// It retries the operation up to MaxRetries times, with exponentially increasing
// delays between attempts. Context cancellation is respected throughout.
//
// Errors wrapped with Fatal() are not retried. When a Timeout is configured
// and it expires, the returned error is a *TimeoutError.
func WithExponentialBackoff(ctx context.Context, operation func() error, opts ...Option) error {
	return WithExponentialBackoffContext(ctx, func(context.Context) error {
		return operation()
	}, opts...)
}

// WithExponentialBackoffContext is WithExponentialBackoff for operations that
// block. Each attempt receives the loop's context, which carries the Timeout
// deadline, so a hung attempt is cut off when the loop runs out of time and
// reported as a *TimeoutError.
func WithExponentialBackoffContext(ctx context.Context, operation func(ctx context.Context) error, opts ...Option) error {
	cfg := &Config{
		MaxRetries:   5,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	parent := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 0; cfg.MaxRetries < 0 || attempt <= cfg.MaxRetries; attempt++ {
		err := operation(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return stopped(parent, ctx, start, attempt+1, lastErr)
		}

		// Check if error is fatal (non-retryable)
		if IsFatal(err) {
			return fmt.Errorf("fatal error (not retrying): %w", err)
		}

		if cfg.MaxRetries >= 0 && attempt >= cfg.MaxRetries {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return stopped(parent, ctx, start, attempt+1, lastErr)
		case <-timer.C:
			delay = time.Duration(float64(delay) * cfg.Multiplier)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}
	}

	return fmt.Errorf("operation failed after %d retries: %w", cfg.MaxRetries+1, lastErr)
}

// stopped reports why the loop context ended: its own deadline yields a
// *TimeoutError, a cancelled parent yields the cancellation cause.
func stopped(parent, ctx context.Context, start time.Time, attempts int, lastErr error) error {
	if parent.Err() == nil {
		return &TimeoutError{Elapsed: time.Since(start), Attempts: attempts, LastErr: lastErr}
	}
	return fmt.Errorf("context cancelled after %d attempts: %w", attempts, parent.Err())
}

// WithMaxRetries sets the maximum number of retries. Use Unlimited to retry
// until the timeout or the context ends.
func WithMaxRetries(n int) Option {
	return func(c *Config) {
		c.MaxRetries = n
	}
}

// WithInitialDelay sets the initial delay between retries.
func WithInitialDelay(d time.Duration) Option {
	return func(c *Config) {
		c.InitialDelay = d
	}
}

// WithMaxDelay sets the maximum delay between retries.
func WithMaxDelay(d time.Duration) Option {
	return func(c *Config) {
		c.MaxDelay = d
	}
}

// WithMultiplier sets the backoff multiplier.
func WithMultiplier(m float64) Option {
	return func(c *Config) {
		c.Multiplier = m
	}
}

// WithTimeout bounds the total time spent retrying.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithOnRetry registers a hook that runs after every failed attempt.
func WithOnRetry(fn func(attempt int, err error)) Option {
	return func(c *Config) {
		c.OnRetry = fn
	}
}

// TimeoutError reports that the retry deadline passed before the operation
// succeeded.
type TimeoutError struct {
	Elapsed  time.Duration
	Attempts int
	LastErr  error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("timed out after %v (%d attempts)", e.Elapsed.Round(time.Millisecond), e.Attempts)
	if e.LastErr != nil {
		msg += ": " + e.LastErr.Error()
	}
	return msg
}

func (e *TimeoutError) Unwrap() error {
	return e.LastErr
}

// Is reports ErrTimeout as a match.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// FatalError wraps an error to mark it as fatal (non-retryable).
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal marks an error as fatal (non-retryable).
// Operations that encounter fatal errors will not be retried.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal checks if an error is fatal (non-retryable).
func IsFatal(err error) bool {
	var fatalErr *FatalError
	return errors.As(err, &fatalErr)
}
