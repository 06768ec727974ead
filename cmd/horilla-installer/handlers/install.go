package handlers

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/horilla-opensource/horilla-installer/internal/config"
	"github.com/horilla-opensource/horilla-installer/internal/provisioning"
	"github.com/horilla-opensource/horilla-installer/internal/ui/tui"
)

// Install provisions Horilla on this machine.
//
// The workflow:
//  1. Merges flags with the answers saved by the previous run
//  2. Runs the interactive wizard when stdin is a terminal
//  3. Builds and validates the configuration, then saves the answers
//  4. Runs preflight checks, which abort before any host change
//  5. Runs the step pipeline, under the progress view when attached to a terminal
//  6. Prints the summary, or the failing step with re-run guidance
//
// SIGINT and SIGTERM cancel the run; the scratch directory is removed on
// every exit path.
func Install(ctx context.Context, opts Options) error {
	home, err := userHomeDir()
	if err != nil {
		return fmt.Errorf("failed to determine home directory: %w", err)
	}

	in, interactive := prepareInput(opts, home, true)
	if interactive {
		if err := runWizard(ctx, &in); err != nil {
			return fmt.Errorf("wizard canceled: %w", err)
		}
	}

	cfg, err := buildConfig(ctx, in, home)
	if err != nil {
		return err
	}
	if err := saveAnswers(config.AnswersPath(home), config.AnswersFrom(cfg)); err != nil {
		log.Printf("Warning: answers not saved: %v", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tmp, err := os.MkdirTemp("", "horilla-installer-")
	if err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	logObserver := provisioning.NewLogObserver(provisioning.NewLogger(stderr, opts.Verbose))
	pctx := newContext(ctx, cfg, opts, logObserver)
	pctx.TempDir = tmp

	if err := provisioning.Preflight(pctx); err != nil {
		_, _ = fmt.Fprintln(stdout, tui.RenderAbort(err, nil))
		return &ReportedError{Err: err}
	}

	state, err := runPipeline(ctx, pctx, opts, home, interactive)

	if opts.MetricsFile != "" {
		if werr := pctx.Metrics.WriteTextfile(opts.MetricsFile); werr != nil {
			log.Printf("Warning: metrics not written: %v", werr)
		}
	}

	if err != nil {
		_, _ = fmt.Fprintln(stdout, tui.RenderAbort(err, state))
		return &ReportedError{Err: err}
	}
	_, _ = fmt.Fprintln(stdout, tui.RenderSummary(cfg, state))
	return nil
}

// runPipeline runs the steps. With a terminal on both ends the progress view
// takes over stdout and the log goes to a file instead.
func runPipeline(ctx context.Context, pctx *provisioning.Context, opts Options, home string, interactive bool) (*provisioning.State, error) {
	pipeline := provisioning.NewPipeline(defaultSteps()...)
	if !interactive || !stdoutIsTerminal() {
		return pipeline.Run(pctx)
	}

	logPath := config.LogPath(home)
	if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	// #nosec G304 -- path is derived from the operator's home directory
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = f.Close() }()
	_, _ = fmt.Fprintf(stderr, "Detailed log: %s\n", logPath)

	fileLog := provisioning.NewLogObserver(provisioning.NewLogger(f, max(opts.Verbose, 1)))
	model := tui.NewInstallModel(pctx.Config.Domain, pipeline.Steps)

	return runTUI(ctx, model, stdout, fileLog, func(ctx context.Context, obs provisioning.Observer) (*provisioning.State, error) {
		pctx.Context = ctx
		pctx.Observer = obs
		return pipeline.Run(pctx)
	})
}
