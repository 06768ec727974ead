package provisioning

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// Logger is the minimal printf-style logging surface.
type Logger interface {
	Printf(format string, v ...any)
}

// Observer defines the interface for structured observability during provisioning.
type Observer interface {
	Logger

	// Event emits a structured event
	Event(event Event)

	// Progress reports progress through a sequence
	Progress(step string, current, total int)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured provisioning event.
type Event struct {
	Type      EventType
	Step      string
	Message   string
	Resource  string // file, package or command the event is about
	Timestamp time.Time
	Fields    map[string]string
}

// EventType represents the type of provisioning event.
type EventType string

const (
	EventStepStarted   EventType = "step.started"
	EventStepCompleted EventType = "step.completed"
	EventStepSkipped   EventType = "step.skipped"
	EventStepFailed    EventType = "step.failed"
	EventStepTolerated EventType = "step.tolerated"

	EventResourceChanged   EventType = "resource.changed"
	EventResourceUnchanged EventType = "resource.unchanged"

	EventLockRetry      EventType = "lock.retry"
	EventPreflightIssue EventType = "preflight.warning"
	EventProgress       EventType = "progress"
)

// NewLogger builds the logr.Logger used by the installer. Verbosity 0 shows
// progress, 1 adds command lines and skipped checks, 2 adds command output.
func NewLogger(w io.Writer, verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			_, _ = fmt.Fprintln(w, prefix, args)
			return
		}
		_, _ = fmt.Fprintln(w, args)
	}, funcr.Options{
		LogTimestamp:    true,
		TimestampFormat: time.TimeOnly,
		Verbosity:       verbosity,
	})
}

// LogObserver implements Observer on top of a logr.Logger.
type LogObserver struct {
	log    logr.Logger
	fields map[string]string
}

// NewLogObserver creates an observer writing to log.
func NewLogObserver(log logr.Logger) *LogObserver {
	return &LogObserver{log: log, fields: make(map[string]string)}
}

// Printf implements Logger.
func (o *LogObserver) Printf(format string, v ...any) {
	o.log.Info(fmt.Sprintf(format, v...), o.keysAndValues(nil)...)
}

// Event implements Observer.
func (o *LogObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	kv := []any{"event", string(event.Type)}
	if event.Step != "" {
		kv = append(kv, "step", event.Step)
	}
	if event.Resource != "" {
		kv = append(kv, "resource", event.Resource)
	}
	kv = append(kv, o.keysAndValues(event.Fields)...)

	switch event.Type {
	case EventStepFailed:
		o.log.Error(nil, event.Message, kv...)
	case EventStepSkipped, EventResourceUnchanged:
		o.log.V(1).Info(event.Message, kv...)
	default:
		o.log.Info(event.Message, kv...)
	}
}

// Progress implements Observer.
func (o *LogObserver) Progress(step string, current, total int) {
	kv := []any{"event", string(EventProgress), "step", step, "current", current, "total", total}
	o.log.V(1).Info("progress", append(kv, o.keysAndValues(nil)...)...)
}

// WithFields implements Observer.
func (o *LogObserver) WithFields(fields map[string]string) Observer {
	merged := maps.Clone(o.fields)
	maps.Copy(merged, fields)
	return &LogObserver{log: o.log, fields: merged}
}

// keysAndValues merges context fields with extra in a stable order.
func (o *LogObserver) keysAndValues(extra map[string]string) []any {
	merged := maps.Clone(o.fields)
	if merged == nil {
		merged = make(map[string]string)
	}
	maps.Copy(merged, extra)

	kv := make([]any, 0, 2*len(merged))
	for _, k := range slices.Sorted(maps.Keys(merged)) {
		kv = append(kv, k, merged[k])
	}
	return kv
}

// LogStepStart logs a step start event.
func LogStepStart(observer Observer, step, description string) {
	observer.Event(Event{
		Type:    EventStepStarted,
		Step:    step,
		Message: description,
	})
}

// LogStepComplete logs a step completion event.
func LogStepComplete(observer Observer, step string, duration time.Duration) {
	observer.Event(Event{
		Type:    EventStepCompleted,
		Step:    step,
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
	})
}

// LogStepSkipped logs a step that did not need to run.
func LogStepSkipped(observer Observer, step, reason string) {
	observer.Event(Event{
		Type:    EventStepSkipped,
		Step:    step,
		Message: "skipped: " + reason,
	})
}

// LogStepFailed logs a step failure event.
func LogStepFailed(observer Observer, step string, err error) {
	observer.Event(Event{
		Type:    EventStepFailed,
		Step:    step,
		Message: fmt.Sprintf("failed: %v", err),
	})
}

// LogStepTolerated logs a failure the run continues past.
func LogStepTolerated(observer Observer, step string, err error) {
	observer.Event(Event{
		Type:    EventStepTolerated,
		Step:    step,
		Message: fmt.Sprintf("WARNING: continuing after failure: %v", err),
	})
}

// LogResourceChanged logs a file or package that was written or installed.
func LogResourceChanged(observer Observer, step, resource, action string) {
	observer.Event(Event{
		Type:     EventResourceChanged,
		Step:     step,
		Resource: resource,
		Message:  action,
	})
}

// LogResourceUnchanged logs a resource that already matched.
func LogResourceUnchanged(observer Observer, step, resource string) {
	observer.Event(Event{
		Type:     EventResourceUnchanged,
		Step:     step,
		Resource: resource,
		Message:  "unchanged",
	})
}
