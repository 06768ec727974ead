// Package host provides the process and file system capabilities the installer
// uses to inspect and mutate the machine it runs on.
//
// Every side effect of an installation flows through a Host, which makes the
// provisioning steps testable against fakes.
package host

import (
	"context"
	"strings"
	"time"
)

// Command describes an external program invocation.
type Command struct {
	Name string
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env holds extra KEY=VALUE pairs appended to the inherited environment.
	Env []string

	// Stdin is fed to the process when non-nil.
	Stdin []byte

	// Timeout bounds the invocation. Zero falls back to the runner default.
	Timeout time.Duration
}

// String renders the command line for logs and error messages.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result is the outcome of a completed (or timed out) invocation.
// A non-zero exit is reported here, not as an error.
type Result struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	TimedOut bool
}

// Success reports whether the command exited zero within its timeout.
func (r Result) Success() bool {
	return r.ExitCode == 0 && !r.TimedOut
}

// Runner executes external commands.
//
// Run returns an error only when the process could not be started at all.
// Exit status and timeouts are reported through Result.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Host bundles the capabilities steps use to touch the machine.
type Host struct {
	Runner Runner
	FS     FileSystem
}

// New creates a Host from a runner and a file system.
func New(runner Runner, fsys FileSystem) *Host {
	return &Host{Runner: runner, FS: fsys}
}

// Exec runs cmd and converts a non-zero exit into *CommandError and a timeout
// into *TimeoutError. The Result is returned in every case.
func (h *Host) Exec(ctx context.Context, cmd Command) (Result, error) {
	res, err := h.Runner.Run(ctx, cmd)
	if err != nil {
		return res, err
	}
	return res, Check(cmd, res)
}

// Succeeds runs cmd and reports whether it exited zero. Start failures count
// as "no", which makes it suitable for read-only probes.
func (h *Host) Succeeds(ctx context.Context, cmd Command) bool {
	res, err := h.Runner.Run(ctx, cmd)
	return err == nil && res.Success()
}
