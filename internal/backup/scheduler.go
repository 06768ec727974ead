// Package backup registers the recurring job that runs the rendered backup
// script. The schedule lives in the invoking user's crontab.
package backup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/horilla-opensource/horilla-installer/internal/config"
	"github.com/horilla-opensource/horilla-installer/internal/platform/host"
)

// Cron expressions per frequency. All run at 02:00; weekly on Sunday and
// monthly on the first.
var schedules = map[string]string{
	config.FrequencyDaily:   "0 2 * * *",
	config.FrequencyWeekly:  "0 2 * * 0",
	config.FrequencyMonthly: "0 2 1 * *",
}

// Schedule returns the cron expression for frequency.
func Schedule(frequency string) (string, error) {
	s, ok := schedules[frequency]
	if !ok {
		return "", fmt.Errorf("unknown backup frequency %q", frequency)
	}
	return s, nil
}

// Entry is the crontab line that runs scriptPath and appends its output to
// logPath.
func Entry(frequency, scriptPath, logPath string) (string, error) {
	schedule, err := Schedule(frequency)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s >> %s 2>&1", schedule, scriptPath, logPath), nil
}

// Scheduler edits the crontab through the crontab(1) command.
type Scheduler struct {
	Runner  host.Runner
	Timeout time.Duration
}

// NewScheduler creates a Scheduler.
func NewScheduler(runner host.Runner, timeout time.Duration) *Scheduler {
	return &Scheduler{Runner: runner, Timeout: timeout}
}

// Installed reports whether the entry is the crontab's only line referencing
// scriptPath.
func (s *Scheduler) Installed(ctx context.Context, frequency, scriptPath, logPath string) (bool, error) {
	entry, err := Entry(frequency, scriptPath, logPath)
	if err != nil {
		return false, err
	}
	lines, err := s.read(ctx)
	if err != nil {
		return false, err
	}
	return satisfied(lines, entry, scriptPath), nil
}

// Install registers the entry for scriptPath. Any other line referencing the
// script is replaced, so changing the frequency never leaves two jobs behind.
// Installing an identical entry again does nothing.
func (s *Scheduler) Install(ctx context.Context, frequency, scriptPath, logPath string) error {
	entry, err := Entry(frequency, scriptPath, logPath)
	if err != nil {
		return err
	}

	current, err := s.read(ctx)
	if err != nil {
		return err
	}

	if satisfied(current, entry, scriptPath) {
		return nil
	}

	kept := make([]string, 0, len(current)+1)
	for _, line := range current {
		if !strings.Contains(line, scriptPath) {
			kept = append(kept, line)
		}
	}
	kept = append(kept, entry)

	cmd := host.Command{
		Name:    "crontab",
		Args:    []string{"-"},
		Stdin:   []byte(strings.Join(kept, "\n") + "\n"),
		Timeout: s.Timeout,
	}
	res, err := s.Runner.Run(ctx, cmd)
	if err != nil {
		return fmt.Errorf("failed to install crontab: %w", err)
	}
	if err := host.Check(cmd, res); err != nil {
		return fmt.Errorf("failed to install crontab: %w", err)
	}
	return nil
}

// satisfied holds when exactly one line references scriptPath and it is entry.
func satisfied(lines []string, entry, scriptPath string) bool {
	var found bool
	for _, line := range lines {
		if !strings.Contains(line, scriptPath) {
			continue
		}
		if found || strings.TrimSpace(line) != entry {
			return false
		}
		found = true
	}
	return found
}

// read returns the current crontab lines. A user without a crontab has an
// empty one.
func (s *Scheduler) read(ctx context.Context) ([]string, error) {
	cmd := host.Command{Name: "crontab", Args: []string{"-l"}, Timeout: s.Timeout}
	res, err := s.Runner.Run(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to read crontab: %w", err)
	}
	if !res.Success() {
		if !res.TimedOut && strings.Contains(strings.ToLower(res.Stderr), "no crontab for") {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read crontab: %w", host.Check(cmd, res))
	}

	var lines []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
