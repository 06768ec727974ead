// Package tui provides a Bubble Tea progress view for installation runs and
// lipgloss reports printed when a run ends.
package tui

import "github.com/horilla-opensource/horilla-installer/internal/provisioning"

// EventMsg carries a pipeline event.
type EventMsg struct{ Event provisioning.Event }

// LogMsg carries a free-form log line.
type LogMsg struct{ Line string }

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries an error.
type ErrMsg struct{ Err error }

// DoneMsg signals that the run has ended.
type DoneMsg struct {
	State *provisioning.State
	Err   error
}
