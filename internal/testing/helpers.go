package testing

import (
	"context"
	"strings"
	"testing"
	"time"
)

// TestContext returns a context with a reasonable timeout for tests.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// FilterOps keeps the recorded operations that start with one of prefixes,
// preserving order.
func FilterOps(ops []string, prefixes ...string) []string {
	var out []string
	for _, op := range ops {
		for _, p := range prefixes {
			if strings.HasPrefix(op, p) {
				out = append(out, op)
				break
			}
		}
	}
	return out
}

// CountOps returns how many recorded operations start with prefix.
func CountOps(ops []string, prefix string) int {
	return len(FilterOps(ops, prefix))
}
