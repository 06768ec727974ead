package host

import (
	"fmt"
	"strings"
	"time"
)

// CommandError reports a command that ran to completion with a non-zero exit.
type CommandError struct {
	Result Result
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Result.Command, e.Result.ExitCode)
	if tail := LastLines(e.Result.Stderr, 3); tail != "" {
		msg += ": " + tail
	}
	return msg
}

// TimeoutError reports a command that was killed for exceeding its timeout.
type TimeoutError struct {
	Command string
	Timeout time.Duration
	Stderr  string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %v", e.Command, e.Timeout)
}

// Check converts an unsuccessful result into a typed error.
func Check(cmd Command, res Result) error {
	switch {
	case res.TimedOut:
		return &TimeoutError{Command: cmd.String(), Timeout: cmd.Timeout, Stderr: res.Stderr}
	case res.ExitCode != 0:
		return &CommandError{Result: res}
	}
	return nil
}

// LastLines returns the last n non-empty lines of s joined by " | ".
func LastLines(s string, n int) string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
