package provisioning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/horilla-opensource/horilla-installer/internal/config"
	"github.com/horilla-opensource/horilla-installer/internal/platform/host"
	"github.com/horilla-opensource/horilla-installer/internal/render"
	"github.com/horilla-opensource/horilla-installer/internal/util/retry"
)

// ErrorKind classifies a failure.
type ErrorKind int

// Error kinds.
const (
	ErrorCommand ErrorKind = iota // a command failed for a non-transient reason
	ErrorLockContention
	ErrorTimeout
	ErrorTemplate
	ErrorPrecondition
	ErrorInterrupted
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorCommand:
		return "command"
	case ErrorLockContention:
		return "lock-contention"
	case ErrorTimeout:
		return "timeout"
	case ErrorTemplate:
		return "template"
	case ErrorPrecondition:
		return "precondition"
	case ErrorInterrupted:
		return "interrupted"
	}
	return "unknown"
}

// Classify maps err onto the error taxonomy.
func Classify(err error) ErrorKind {
	var (
		hostTimeout *host.TimeoutError
		waitTimeout *TimeoutError
		precond     *PreconditionError
		invalid     *config.ValidationError
	)
	switch {
	case errors.Is(err, context.Canceled):
		return ErrorInterrupted
	case errors.Is(err, retry.ErrLockContention):
		return ErrorLockContention
	case errors.As(err, &hostTimeout), errors.As(err, &waitTimeout):
		return ErrorTimeout
	case errors.Is(err, render.ErrMissingField):
		return ErrorTemplate
	case errors.As(err, &precond), errors.As(err, &invalid):
		return ErrorPrecondition
	}
	return ErrorCommand
}

// StepError reports the step that aborted a run.
type StepError struct {
	Step   string
	Kind   ErrorKind
	Stderr string // tail of the last command's stderr, if any
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed (%s): %v", e.Step, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// PreconditionError reports problems found before any host change.
type PreconditionError struct {
	Problems []string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + strings.Join(e.Problems, "; ")
}

// TimeoutError reports a wait that ran out of time, such as the database
// health check.
type TimeoutError struct {
	What    string
	Timeout time.Duration
	Last    string // last observed state
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("%s not reached within %v", e.What, e.Timeout)
	if e.Last != "" {
		msg += " (last state: " + e.Last + ")"
	}
	return msg
}

// StderrOf extracts the captured stderr carried by err.
func StderrOf(err error) string {
	var (
		cmdErr     *host.CommandError
		timeoutErr *host.TimeoutError
		lockErr    *retry.ContentionError
	)
	switch {
	case errors.As(err, &cmdErr):
		return cmdErr.Result.Stderr
	case errors.As(err, &timeoutErr):
		return timeoutErr.Stderr
	case errors.As(err, &lockErr):
		return lockErr.Stderr
	}
	return ""
}
