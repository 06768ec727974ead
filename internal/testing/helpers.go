package testing

import (
	"context"
	"testing"
	"time"

	"github.com/horilla-opensource/horilla-installer/internal/platform/host"
)

// TestContext returns a context with a reasonable timeout for tests.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// OK is a successful result with the given stdout.
func OK(stdout string) host.Result {
	return host.Result{Stdout: stdout}
}

// Fail is a result with a non-zero exit and the given stderr.
func Fail(code int, stderr string) host.Result {
	return host.Result{ExitCode: code, Stderr: stderr}
}

// TimedOut is a result for a command killed by its timeout.
func TimedOut() host.Result {
	return host.Result{ExitCode: -1, TimedOut: true}
}
