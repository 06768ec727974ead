package tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/horilla-opensource/horilla-installer/internal/provisioning"
)

// RunFunc runs the pipeline, reporting through obs.
type RunFunc func(ctx context.Context, obs provisioning.Observer) (*provisioning.State, error)

// RunInstall runs fn under the progress view. Quitting the view with ctrl+c
// cancels the context fn runs under; the run then ends interrupted.
func RunInstall(ctx context.Context, m Model, out io.Writer, log provisioning.Observer, fn RunFunc) (*provisioning.State, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithoutSignalHandler())

	type outcome struct {
		state *provisioning.State
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		state, err := fn(ctx, NewObserver(p.Send, log))
		done <- outcome{state, err}
		p.Send(DoneMsg{State: state, Err: err})
	}()

	final, err := p.Run()
	if err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("TUI error: %w", err)
	}

	if fm, ok := final.(Model); ok && fm.Interrupted {
		cancel()
	}
	res := <-done
	return res.state, res.err
}
