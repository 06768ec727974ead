package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// killGrace bounds how long Wait blocks on inherited pipes after the process
// group has been killed.
const killGrace = 5 * time.Second

// ExecRunner runs commands as child processes.
//
// Each child is placed in its own process group so a timeout kills the whole
// tree (apt-get forks dpkg, docker compose forks plugins). Cancelling the
// caller's context does not interrupt a running command: the pipeline only
// honors interrupts between commands.
type ExecRunner struct {
	DefaultTimeout time.Duration
}

// NewExecRunner creates a runner with the given fallback timeout.
func NewExecRunner(defaultTimeout time.Duration) *ExecRunner {
	return &ExecRunner{DefaultTimeout: defaultTimeout}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = r.DefaultTimeout
	}

	runCtx := context.WithoutCancel(ctx)
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if c.Stdin != nil {
		cmd.Stdin = bytes.NewReader(c.Stdin)
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
	cmd.WaitDelay = killGrace

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Command:  c.String(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		res.TimedOut = true
		res.ExitCode = -1
		return res, nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, fmt.Errorf("failed to start %s: %w", c.Name, err)
	}

	return res, nil
}

// IsPrivileged reports whether the process runs with an effective uid of 0.
func IsPrivileged() bool {
	return unix.Geteuid() == 0
}
