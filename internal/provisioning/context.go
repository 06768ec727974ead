package provisioning

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/go-logr/logr"

	"github.com/horilla-opensource/horilla-installer/internal/backup"
	"github.com/horilla-opensource/horilla-installer/internal/config"
	"github.com/horilla-opensource/horilla-installer/internal/platform/apt"
	"github.com/horilla-opensource/horilla-installer/internal/platform/host"
	"github.com/horilla-opensource/horilla-installer/internal/render"
	"github.com/horilla-opensource/horilla-installer/internal/util/netutil"
	"github.com/horilla-opensource/horilla-installer/internal/util/retry"
)

// Context wraps all dependencies a step needs. Steps reach the machine only
// through Host.
type Context struct {
	context.Context
	Config   *config.Config
	Host     *host.Host
	Renderer *render.Renderer
	Locks    retry.LockPolicy
	Observer Observer
	Timeouts *config.Timeouts
	Metrics  *Metrics

	// Buckets is nil until the backup remote step creates a client.
	Buckets BucketClient

	Scheduler   *backup.Scheduler
	WaitForPort PortWaiter
	LookPath    func(file string) (string, error)
	Privileged  func() bool
	Now         func() time.Time
	Sleep       func(ctx context.Context, d time.Duration) error

	// TempDir holds downloads staged before they are installed. The caller
	// creates it and removes it when the run ends.
	TempDir string

	changed map[string]bool
}

// NewContext creates a provisioning context with production defaults.
// Callers replace fields for tests or alternative hosts.
func NewContext(ctx context.Context, cfg *config.Config, h *host.Host) *Context {
	timeouts := config.LoadTimeouts()
	c := &Context{
		Context:     ctx,
		Config:      cfg,
		Host:        h,
		Renderer:    render.MustNew(),
		Observer:    NewLogObserver(logr.Discard()),
		Timeouts:    timeouts,
		Scheduler:   backup.NewScheduler(h.Runner, cfg.Timeout),
		WaitForPort: netutil.WaitForPort,
		LookPath:    exec.LookPath,
		Privileged:  host.IsPrivileged,
		Now:         time.Now,
		Sleep:       retry.SleepContext,
	}
	c.Locks = retry.LockPolicy{
		MaxRetries: cfg.MaxRetries,
		Delay:      cfg.RetryDelay,
		Classifier: apt.LockSignature{},
		Sleep:      func(ctx context.Context, d time.Duration) error { return c.Sleep(ctx, d) },
		OnRetry:    c.lockRetry,
	}
	return c
}

func (c *Context) lockRetry(attempt int, res host.Result) {
	c.Metrics.recordLockRetry(commandName(res.Command))
	c.Observer.Event(Event{
		Type:     EventLockRetry,
		Resource: res.Command,
		Message: "package manager is locked by another process, retrying in " +
			c.Locks.Delay.String(),
		Fields: map[string]string{
			"attempt": itoa(attempt),
			"max":     itoa(c.Locks.MaxRetries),
		},
	})
}

// MarkChanged records that this run rewrote resource.
func (c *Context) MarkChanged(resource string) {
	if c.changed == nil {
		c.changed = make(map[string]bool)
	}
	c.changed[resource] = true
}

// Changed reports whether this run rewrote any of resources. Steps that
// consume an artifact use it to notice that an earlier step replaced it.
func (c *Context) Changed(resources ...string) bool {
	for _, r := range resources {
		if c.changed[r] {
			return true
		}
	}
	return false
}

// RunLocked runs a package manager command under the lock retry policy.
func (c *Context) RunLocked(cmd host.Command) (host.Result, error) {
	c.Observer.Printf("$ %s", cmd)
	return c.Locks.Run(c, c.Host.Runner, cmd)
}

// Exec runs cmd once and fails on a non-zero exit.
func (c *Context) Exec(cmd host.Command) (host.Result, error) {
	c.Observer.Printf("$ %s", cmd)
	return c.Host.Exec(c, cmd)
}

// Probe runs a read-only command and reports whether it succeeded.
func (c *Context) Probe(cmd host.Command) bool {
	return c.Host.Succeeds(c, cmd)
}

// ScratchPath names a file inside the run's scratch directory.
func (c *Context) ScratchPath(name string) (string, error) {
	if c.TempDir == "" {
		return "", errors.New("no scratch directory for this run")
	}
	return filepath.Join(c.TempDir, name), nil
}

// CommandTimeout returns the configured per-command bound.
func (c *Context) CommandTimeout() time.Duration {
	if c.Config.Timeout > 0 {
		return c.Config.Timeout
	}
	return c.Timeouts.Command
}

// LongTimeout returns the larger of the configured command timeout and d.
// Package installs and image builds use it.
func (c *Context) LongTimeout(d time.Duration) time.Duration {
	return max(c.CommandTimeout(), d)
}
