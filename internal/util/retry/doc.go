// Package retry provides exponential backoff retry logic for transient failures.
//
// [WithExponentialBackoff] retries an operation with configurable max attempts,
// initial delay, maximum delay and an optional overall deadline. It drives the
// instance status poll and the SSH readiness probe, where the condition being
// waited on is eventually consistent.
package retry
