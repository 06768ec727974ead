package provisioning

import (
	"time"

	"github.com/google/uuid"
)

// StepStatus is the lifecycle of a single step.
type StepStatus string

// Step statuses.
const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

// PipelineStatus is the lifecycle of a run.
type PipelineStatus string

// Pipeline statuses.
const (
	NotStarted PipelineStatus = "not-started"
	InProgress PipelineStatus = "in-progress"
	Completed  PipelineStatus = "completed"
	Aborted    PipelineStatus = "aborted"
)

// Reasons recorded for skipped steps.
const (
	ReasonSatisfied = "already satisfied"
)

// StepRecord is the outcome of one step.
type StepRecord struct {
	ID          string
	Description string
	Policy      FailurePolicy
	Status      StepStatus
	Reason      string // why the step was skipped
	Err         error
	Kind        ErrorKind
	Stderr      string
	Duration    time.Duration
}

// State tracks one run. It is created fresh per invocation and never
// persisted.
type State struct {
	RunID    string
	Status   PipelineStatus
	Steps    []StepRecord
	Started  time.Time
	Finished time.Time
}

// NewState creates a state with every step pending.
func NewState(steps []Step) *State {
	s := &State{
		RunID:  uuid.NewString(),
		Status: NotStarted,
		Steps:  make([]StepRecord, len(steps)),
	}
	for i, step := range steps {
		s.Steps[i] = StepRecord{
			ID:          step.ID(),
			Description: step.Description(),
			Policy:      step.Policy(),
			Status:      StepPending,
		}
	}
	return s
}

// Record returns the record for id, or nil.
func (s *State) Record(id string) *StepRecord {
	for i := range s.Steps {
		if s.Steps[i].ID == id {
			return &s.Steps[i]
		}
	}
	return nil
}

// Failed returns the records of failed steps in order.
func (s *State) Failed() []StepRecord {
	var out []StepRecord
	for _, r := range s.Steps {
		if r.Status == StepFailed {
			out = append(out, r)
		}
	}
	return out
}

// Degraded reports a completed run in which at least one step failed.
func (s *State) Degraded() bool {
	return s.Status == Completed && len(s.Failed()) > 0
}

// Count returns how many steps ended in status.
func (s *State) Count(status StepStatus) int {
	n := 0
	for _, r := range s.Steps {
		if r.Status == status {
			n++
		}
	}
	return n
}
