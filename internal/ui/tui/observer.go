package tui

import (
	"fmt"
	"maps"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/horilla-opensource/horilla-installer/internal/provisioning"
)

// Observer forwards pipeline events to a running program. Every event is
// also passed to next, typically a file-backed log observer.
type Observer struct {
	send   func(tea.Msg)
	next   provisioning.Observer
	fields map[string]string
	now    func() time.Time
}

// NewObserver creates an Observer. send is usually (*tea.Program).Send.
func NewObserver(send func(tea.Msg), next provisioning.Observer) *Observer {
	return &Observer{send: send, next: next, fields: map[string]string{}, now: time.Now}
}

// Printf implements provisioning.Observer.
func (o *Observer) Printf(format string, v ...any) {
	if o.next != nil {
		o.next.Printf(format, v...)
	}
	o.send(LogMsg{Line: fmt.Sprintf(format, v...)})
}

// Event implements provisioning.Observer.
func (o *Observer) Event(event provisioning.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = o.now()
	}
	if o.next != nil {
		o.next.Event(event)
	}
	o.send(EventMsg{Event: event})
}

// Progress implements provisioning.Observer. The view derives progress from
// step events, so only the log sees it.
func (o *Observer) Progress(step string, current, total int) {
	if o.next != nil {
		o.next.Progress(step, current, total)
	}
}

// WithFields implements provisioning.Observer.
func (o *Observer) WithFields(fields map[string]string) provisioning.Observer {
	merged := maps.Clone(o.fields)
	maps.Copy(merged, fields)
	child := &Observer{send: o.send, fields: merged, now: o.now}
	if o.next != nil {
		child.next = o.next.WithFields(fields)
	}
	return child
}
