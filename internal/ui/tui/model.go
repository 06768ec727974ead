package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/horilla-opensource/horilla-installer/internal/provisioning"
)

// maxActivity bounds the recent activity list.
const maxActivity = 6

// StepRow is one step as displayed.
type StepRow struct {
	ID       string
	Name     string
	Status   provisioning.StepStatus
	Note     string
	Started  time.Time
	Duration time.Duration
}

// Model is the Bubble Tea model for the install progress view.
type Model struct {
	Domain string
	Steps  []StepRow

	// Activity holds the most recent host changes and log lines.
	Activity []string

	StartTime    time.Time
	SpinnerFrame int
	Width        int

	State       *provisioning.State
	Err         error
	Done        bool
	Interrupted bool

	now func() time.Time
}

// NewInstallModel creates a model listing steps in pipeline order.
func NewInstallModel(domain string, steps []provisioning.Step) Model {
	rows := make([]StepRow, len(steps))
	for i, s := range steps {
		rows[i] = StepRow{ID: s.ID(), Name: s.Description(), Status: provisioning.StepPending}
	}
	return Model{Domain: domain, Steps: rows, StartTime: time.Now(), now: time.Now}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.Interrupted = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width

	case EventMsg:
		m.applyEvent(msg.Event)

	case LogMsg:
		m.addActivity(msg.Line)

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit

	case DoneMsg:
		m.State = msg.State
		m.Err = msg.Err
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) applyEvent(ev provisioning.Event) {
	switch ev.Type {
	case provisioning.EventResourceChanged:
		m.addActivity(fmt.Sprintf("%s: %s %s", ev.Step, ev.Resource, ev.Message))
		return
	case provisioning.EventPreflightIssue:
		m.addActivity("warning: " + ev.Message)
		return
	}

	row := m.row(ev.Step)
	if row == nil {
		return
	}
	switch ev.Type {
	case provisioning.EventStepStarted:
		row.Status = provisioning.StepRunning
		row.Started = ev.Timestamp
		row.Note = ""
	case provisioning.EventStepCompleted:
		row.Status = provisioning.StepSucceeded
		row.Duration = m.since(row.Started, ev.Timestamp)
		row.Note = ""
	case provisioning.EventStepSkipped:
		row.Status = provisioning.StepSkipped
		row.Note = strings.TrimPrefix(ev.Message, "skipped: ")
	case provisioning.EventStepFailed:
		row.Status = provisioning.StepFailed
		row.Duration = m.since(row.Started, ev.Timestamp)
		row.Note = strings.TrimPrefix(ev.Message, "failed: ")
	case provisioning.EventStepTolerated:
		row.Note = "continuing after failure: " + row.Note
	case provisioning.EventLockRetry:
		row.Note = fmt.Sprintf("waiting for package lock (attempt %s/%s)", ev.Fields["attempt"], ev.Fields["max"])
	}
}

func (m *Model) row(id string) *StepRow {
	for i := range m.Steps {
		if m.Steps[i].ID == id {
			return &m.Steps[i]
		}
	}
	return nil
}

func (m *Model) addActivity(line string) {
	m.Activity = append(m.Activity, line)
	if len(m.Activity) > maxActivity {
		m.Activity = m.Activity[len(m.Activity)-maxActivity:]
	}
}

func (m *Model) since(start, end time.Time) time.Duration {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	return end.Sub(start)
}

// finished counts steps that reached a terminal status.
func (m Model) finished() int {
	n := 0
	for _, r := range m.Steps {
		switch r.Status {
		case provisioning.StepSucceeded, provisioning.StepSkipped, provisioning.StepFailed:
			n++
		}
	}
	return n
}

func tickCmd() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}
