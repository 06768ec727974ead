package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/horilla-opensource/horilla-installer/internal/backup"
	"github.com/horilla-opensource/horilla-installer/internal/config"
	"github.com/horilla-opensource/horilla-installer/internal/provisioning"
	"github.com/horilla-opensource/horilla-installer/internal/provisioning/steps"
)

// SiteURL returns the address the site answers on after a run.
func SiteURL(cfg *config.Config, state *provisioning.State) string {
	scheme := "http"
	if cfg.WantsTLS() && state != nil {
		if rec := state.Record(steps.IDCertificate); rec == nil || rec.Status != provisioning.StepFailed {
			scheme = "https"
		}
	}
	return scheme + "://" + cfg.Domain
}

// RenderSummary reports a completed run.
func RenderSummary(cfg *config.Config, state *provisioning.State) string {
	var b strings.Builder

	title := readyStyle.Render("Installation complete")
	if state.Degraded() {
		title = warningStyle.Render("Installation complete (degraded)")
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "  URL:       %s\n", SiteURL(cfg, state))
	fmt.Fprintf(&b, "  Username:  %s\n", cfg.AdminUsername)
	if cfg.AdminPassword == config.DefaultAdminPassword {
		fmt.Fprintf(&b, "  Password:  %s %s\n", cfg.AdminPassword, warningStyle.Render("(default, change it after the first login)"))
	} else {
		b.WriteString("  Password:  the one you supplied\n")
	}
	fmt.Fprintf(&b, "  Directory: %s\n", cfg.InstallDir)

	if failed := state.Failed(); len(failed) > 0 {
		b.WriteString(sectionStyle.Render("  Needs attention"))
		b.WriteString("\n")
		for _, rec := range failed {
			fmt.Fprintf(&b, "    %s %s: %v\n", failedStyle.Render(crossMark), rec.ID, rec.Err)
		}
		if rec := state.Record(steps.IDCertificate); rec != nil && rec.Status == provisioning.StepFailed {
			b.WriteString(dimStyle.Render("    The site is served over HTTP. Point DNS at this host and re-run to retry TLS."))
			b.WriteString("\n")
		}
	}

	if bc := cfg.Backup; bc != nil {
		b.WriteString(sectionStyle.Render("  Backups"))
		b.WriteString("\n")
		schedule, _ := backup.Schedule(bc.Frequency)
		fmt.Fprintf(&b, "    %s (%s) to %s bucket %s\n", bc.Frequency, schedule, bc.Provider, bc.Bucket)
		fmt.Fprintf(&b, "    Script:     %s\n", cfg.BackupScriptPath())
		fmt.Fprintf(&b, "    Log:        %s\n", cfg.BackupLogPath())
		fmt.Fprintf(&b, "    Passphrase: %s\n", cfg.PassphrasePath())
		b.WriteString(warningStyle.Render("    Keep a copy of the passphrase elsewhere; archives cannot be restored without it."))
		b.WriteString("\n")
	}

	b.WriteString(footerStyle.Render(fmt.Sprintf("  run %s  |  %d steps, %d skipped  |  %s",
		state.RunID, len(state.Steps), state.Count(provisioning.StepSkipped),
		formatDuration(state.Finished.Sub(state.Started)))))
	b.WriteString("\n")
	return boxStyle.Render(b.String())
}

// RenderAbort reports a run that did not complete, with the failing step,
// the tail of its stderr and how to continue.
func RenderAbort(err error, state *provisioning.State) string {
	var b strings.Builder

	b.WriteString(failedStyle.Bold(true).Render("Installation aborted"))
	b.WriteString("\n\n")

	var stepErr *provisioning.StepError
	if errors.As(err, &stepErr) {
		fmt.Fprintf(&b, "  Step:   %s (%s)\n", stepErr.Step, stepErr.Kind)
	}
	fmt.Fprintf(&b, "  Error:  %v\n", err)

	if stepErr != nil && stepErr.Stderr != "" {
		b.WriteString(sectionStyle.Render("  Output"))
		b.WriteString("\n")
		for _, line := range strings.Split(strings.TrimRight(stepErr.Stderr, "\n"), "\n") {
			fmt.Fprintf(&b, "    %s\n", dimStyle.Render(line))
		}
	}

	if state != nil {
		done := state.Count(provisioning.StepSucceeded) + state.Count(provisioning.StepSkipped)
		fmt.Fprintf(&b, "\n  %d of %d steps done; they are skipped on re-run.\n", done, len(state.Steps))
	}
	b.WriteString("\n  ")
	b.WriteString(warningStyle.Render(provisioning.Guidance(err)))
	b.WriteString("\n")
	return boxStyle.BorderForeground(colorRed).Render(b.String())
}

// StatusRow is one step in a status report.
type StatusRow struct {
	ID          string
	Description string
	Skipped     bool
	Satisfied   bool
	Note        string
}

// RenderStatus lists which steps a run would apply.
func RenderStatus(rows []StatusRow) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Installation status"))
	b.WriteString("\n")

	pendingCount := 0
	for _, r := range rows {
		icon, style := pending, sf(activeStyle)
		switch {
		case r.Skipped:
			icon, style = skipMark, sf(dimStyle)
		case r.Satisfied:
			icon, style = checkMark, sf(readyStyle)
		default:
			pendingCount++
		}
		fmt.Fprintf(&b, "  %s %-18s %-30s %s\n", style(icon), r.ID, r.Description, dimStyle.Render(r.Note))
	}

	if pendingCount == 0 {
		b.WriteString(footerStyle.Render("  Nothing to do."))
	} else {
		b.WriteString(footerStyle.Render(fmt.Sprintf("  %d step(s) would run.", pendingCount)))
	}
	b.WriteString("\n")
	return b.String()
}
