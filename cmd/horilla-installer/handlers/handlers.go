// Package handlers implements the business logic for CLI commands.
//
// Handlers are called by the command definitions in the commands package and
// are tested independently of cobra by swapping the factory variables below.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/horilla-opensource/horilla-installer/internal/config"
	"github.com/horilla-opensource/horilla-installer/internal/config/wizard"
	"github.com/horilla-opensource/horilla-installer/internal/platform/host"
	"github.com/horilla-opensource/horilla-installer/internal/provisioning"
	"github.com/horilla-opensource/horilla-installer/internal/provisioning/steps"
	"github.com/horilla-opensource/horilla-installer/internal/ui/tui"
	"github.com/horilla-opensource/horilla-installer/internal/util/netutil"
)

// Exit codes returned by the installer.
const (
	ExitOK           = 0
	ExitAborted      = 1
	ExitPrecondition = 2
	ExitInterrupted  = 130
)

// Options carries everything the install, status and render commands accept.
type Options struct {
	Input config.Input

	SkipRootCheck bool
	MetricsFile   string
	Verbose       int
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	stdinIsTerminal = func() bool {
		fd := os.Stdin.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}

	stdoutIsTerminal = func() bool {
		fd := os.Stdout.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}

	userHomeDir = os.UserHomeDir

	// publicIP is consulted only when no domain was supplied.
	publicIP = func(ctx context.Context) (string, error) {
		return netutil.NewIPResolver(2).PublicIPv4(ctx)
	}

	runWizard   = wizard.Run
	loadAnswers = config.LoadAnswers
	saveAnswers = config.SaveAnswers

	newHost = func(timeout time.Duration) *host.Host {
		return host.New(host.NewExecRunner(timeout), host.OSFileSystem{})
	}

	lookPath     = exec.LookPath
	defaultSteps = steps.Default
	runTUI       = tui.RunInstall

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// ReportedError wraps an error whose details were already printed, so main
// only sets the exit code.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }
func (e *ReportedError) Unwrap() error { return e.Err }

// Reported reports whether err was already shown to the operator.
func Reported(err error) bool {
	var r *ReportedError
	return errors.As(err, &r)
}

// ExitCode maps the outcome of a command onto the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, huh.ErrUserAborted) || provisioning.Interrupted(err) {
		return ExitInterrupted
	}

	kind := provisioning.Classify(err)
	var stepErr *provisioning.StepError
	if errors.As(err, &stepErr) {
		kind = stepErr.Kind
	}
	switch kind {
	case provisioning.ErrorPrecondition, provisioning.ErrorTemplate:
		return ExitPrecondition
	}
	return ExitAborted
}

// prepareInput merges saved answers into the flags and decides whether the
// wizard runs. Saved answers never override a flag that was set.
func prepareInput(opts Options, home string, allowWizard bool) (config.Input, bool) {
	in := opts.Input
	saved, err := loadAnswers(config.AnswersPath(home))
	if err != nil {
		log.Printf("Warning: ignoring saved answers: %v", err)
	}
	in.ApplyAnswers(saved)

	interactive := allowWizard && !in.NonInteractive && stdinIsTerminal()
	in.NonInteractive = !interactive
	return in, interactive
}

func buildConfig(ctx context.Context, in config.Input, home string) (*config.Config, error) {
	cfg, err := config.Build(ctx, in, config.BuildOptions{
		HomeDir:  home,
		PublicIP: publicIP,
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadConfig builds a configuration from flags and saved answers without
// prompting.
func loadConfig(ctx context.Context, opts Options) (*config.Config, error) {
	home, err := userHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine home directory: %w", err)
	}
	in, _ := prepareInput(opts, home, false)
	return buildConfig(ctx, in, home)
}

// newContext wires a provisioning context for cfg on the local machine.
func newContext(ctx context.Context, cfg *config.Config, opts Options, observer provisioning.Observer) *provisioning.Context {
	pctx := provisioning.NewContext(ctx, cfg, newHost(cfg.Timeout))
	pctx.Observer = observer
	pctx.LookPath = lookPath
	pctx.Metrics = provisioning.NewMetrics()
	if opts.SkipRootCheck {
		pctx.Privileged = nil
	}
	return pctx
}
