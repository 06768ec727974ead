package handlers

import (
	"context"
	"fmt"

	"github.com/horilla-opensource/horilla-installer/internal/provisioning"
	"github.com/horilla-opensource/horilla-installer/internal/ui/tui"
)

// Status reports which steps an install would apply, without changing the
// host. Every step's Check only reads state.
func Status(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(ctx, opts)
	if err != nil {
		return err
	}

	pctx := newContext(ctx, cfg, opts, provisioning.NewLogObserver(provisioning.NewLogger(stderr, opts.Verbose)))

	var rows []tui.StatusRow
	for _, step := range defaultSteps() {
		rows = append(rows, statusOf(pctx, step))
	}
	_, _ = fmt.Fprint(stdout, tui.RenderStatus(rows))
	return nil
}

func statusOf(pctx *provisioning.Context, step provisioning.Step) tui.StatusRow {
	row := tui.StatusRow{ID: step.ID(), Description: step.Description()}
	if skipper, ok := step.(provisioning.Skipper); ok {
		if reason, skip := skipper.Skip(pctx); skip {
			row.Skipped = true
			row.Note = reason
			return row
		}
	}

	satisfied, err := step.Check(pctx)
	if err != nil {
		row.Note = "check failed: " + err.Error()
		return row
	}
	row.Satisfied = satisfied
	return row
}
