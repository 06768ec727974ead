package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/horilla-opensource/horilla-installer/internal/provisioning"
)

// styleFunc is a single-string styling function.
type styleFunc func(string) string

// sf wraps a lipgloss.Style into a styleFunc.
func sf(s lipgloss.Style) styleFunc {
	return func(str string) string { return s.Render(str) }
}

func renderView(m Model) string {
	var b strings.Builder

	renderHeader(&b, m)
	renderProgressBar(&b, m)
	renderSteps(&b, m)
	if len(m.Activity) > 0 {
		renderActivity(&b, m)
	}
	renderFooter(&b, m)

	return b.String()
}

func renderHeader(b *strings.Builder, m Model) {
	b.WriteString(titleStyle.Render("Horilla installer: " + m.Domain))

	status := " "
	switch {
	case m.Interrupted:
		status += warningStyle.Render("Interrupted")
	case m.Err != nil:
		status += failedStyle.Render("Aborted")
	case m.Done:
		status += readyStyle.Render("Completed")
	default:
		status += activeStyle.Render(currentSpinner(m.SpinnerFrame))
	}
	b.WriteString(status)
	b.WriteString("\n")
}

func renderProgressBar(b *strings.Builder, m Model) {
	progress := 0.0
	if len(m.Steps) > 0 {
		progress = float64(m.finished()) / float64(len(m.Steps))
	}
	barWidth := 40
	if m.Width > 0 && m.Width < 80 {
		barWidth = max(m.Width-30, 10)
	}
	filled := min(int(float64(barWidth)*progress), barWidth)

	bar := progressBarFull.Render(strings.Repeat("█", filled)) +
		progressBarEmpty.Render(strings.Repeat("░", barWidth-filled))
	fmt.Fprintf(b, "  %s %d/%d steps\n", bar, m.finished(), len(m.Steps))
}

func renderSteps(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Steps"))
	b.WriteString("\n")

	for _, row := range m.Steps {
		icon, style := stepIcon(row.Status, m.SpinnerFrame)
		extra := ""
		switch {
		case row.Status == provisioning.StepRunning && !row.Started.IsZero():
			extra = formatDuration(m.now().Sub(row.Started))
		case row.Duration > 0:
			extra = formatDuration(row.Duration)
		}
		if row.Note != "" {
			extra = strings.TrimSpace(extra + " " + row.Note)
		}
		fmt.Fprintf(b, "    %s %-30s %s\n", style(icon), style(row.Name), dimStyle.Render(truncate(extra, 70)))
	}
}

func renderActivity(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Recent Activity"))
	b.WriteString("\n")
	for _, line := range m.Activity {
		fmt.Fprintf(b, "    %s\n", dimStyle.Render(truncate(line, 90)))
	}
}

func renderFooter(b *strings.Builder, m Model) {
	elapsed := formatDuration(m.now().Sub(m.StartTime))
	b.WriteString(footerStyle.Render(fmt.Sprintf("  elapsed: %s  |  ctrl+c: abort", elapsed)))
	b.WriteString("\n")
}

// Helper functions

func stepIcon(status provisioning.StepStatus, frame int) (string, styleFunc) {
	switch status {
	case provisioning.StepSucceeded:
		return checkMark, sf(readyStyle)
	case provisioning.StepFailed:
		return crossMark, sf(failedStyle)
	case provisioning.StepSkipped:
		return skipMark, sf(dimStyle)
	case provisioning.StepRunning:
		return currentSpinner(frame), sf(activeStyle)
	default:
		return pending, sf(dimStyle)
	}
}

func currentSpinner(frame int) string {
	if frame < 0 {
		frame = -frame
	}
	return spinnerFrames[frame%len(spinnerFrames)]
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
