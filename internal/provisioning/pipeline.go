package provisioning

import (
	"errors"
	"fmt"
	"time"
)

// Pipeline executes steps strictly in order.
type Pipeline struct {
	Steps []Step
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{Steps: steps}
}

// Run executes the pipeline. The returned State is always non-nil and
// describes every step, including those that never started. The error is a
// *StepError when a step aborted the run.
//
// A step whose Check reports satisfied is skipped without running Apply, so
// re-running after a partial failure resumes at the first unmet step.
func (p *Pipeline) Run(ctx *Context) (*State, error) {
	state := NewState(p.Steps)
	state.Status = InProgress
	state.Started = ctx.Now()
	defer func() {
		state.Finished = ctx.Now()
		ctx.Metrics.recordRun(state.Status, state.Degraded())
	}()

	observer := ctx.Observer.WithFields(map[string]string{"run": state.RunID})
	observer.Printf("Starting installation with %d steps...", len(p.Steps))

	for i, step := range p.Steps {
		rec := &state.Steps[i]

		if err := ctx.Err(); err != nil {
			return abort(state, rec, err)
		}
		observer.Progress(step.ID(), i+1, len(p.Steps))

		if skipper, ok := step.(Skipper); ok {
			if reason, skip := skipper.Skip(ctx); skip {
				rec.Status = StepSkipped
				rec.Reason = reason
				LogStepSkipped(observer, step.ID(), reason)
				ctx.Metrics.recordStep(step.ID(), StepSkipped, 0)
				continue
			}
		}

		rec.Status = StepRunning
		start := ctx.Now()

		satisfied, err := step.Check(ctx)
		if err != nil {
			observer.Printf("[%s] check failed, applying: %v", step.ID(), err)
		}
		if err == nil && satisfied {
			rec.Status = StepSkipped
			rec.Reason = ReasonSatisfied
			rec.Duration = ctx.Now().Sub(start)
			LogStepSkipped(observer, step.ID(), ReasonSatisfied)
			ctx.Metrics.recordStep(step.ID(), StepSkipped, rec.Duration)
			continue
		}

		LogStepStart(observer, step.ID(), step.Description())
		err = step.Apply(ctx)
		rec.Duration = ctx.Now().Sub(start)

		if err == nil {
			rec.Status = StepSucceeded
			LogStepComplete(observer, step.ID(), rec.Duration)
			ctx.Metrics.recordStep(step.ID(), StepSucceeded, rec.Duration)
			continue
		}

		rec.Status = StepFailed
		rec.Err = err
		rec.Kind = Classify(err)
		rec.Stderr = StderrOf(err)
		ctx.Metrics.recordStep(step.ID(), StepFailed, rec.Duration)

		if tolerated(ctx, step, rec.Kind) {
			LogStepTolerated(observer, step.ID(), err)
			continue
		}

		LogStepFailed(observer, step.ID(), err)
		return abort(state, rec, err)
	}

	state.Status = Completed
	if state.Degraded() {
		observer.Printf("Installation completed with %d failed step(s)", len(state.Failed()))
	} else {
		observer.Printf("Installation completed in %v", ctx.Now().Sub(state.Started).Round(time.Millisecond))
	}
	return state, nil
}

// tolerated reports whether the run continues past a failed step.
func tolerated(ctx *Context, step Step, kind ErrorKind) bool {
	if kind == ErrorInterrupted {
		return false
	}
	switch step.Policy() {
	case BestEffort:
		return true
	case Tolerable:
		return kind == ErrorLockContention && ctx.Config.ForceContinue
	}
	return false
}

func abort(state *State, rec *StepRecord, err error) (*State, error) {
	state.Status = Aborted
	if rec.Status == StepPending {
		rec.Status = StepFailed
		rec.Err = err
		rec.Kind = Classify(err)
	}
	return state, &StepError{Step: rec.ID, Kind: rec.Kind, Stderr: rec.Stderr, Err: err}
}

// Interrupted reports whether err stems from an operator interrupt.
func Interrupted(err error) bool {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Kind == ErrorInterrupted
	}
	return Classify(err) == ErrorInterrupted
}

// Guidance is printed after an aborted run.
func Guidance(err error) string {
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		return "Fix the problem above and run the installer again."
	}
	switch stepErr.Kind {
	case ErrorLockContention:
		return "Another process is holding the package manager lock. Wait for it to finish, " +
			"or raise --max-retries/--retry-delay, then run the installer again. Completed steps are skipped on re-run."
	case ErrorInterrupted:
		return "The installation was interrupted. Run the installer again to resume."
	case ErrorTemplate, ErrorPrecondition:
		return "Correct the configuration and run the installer again. No changes were made by this step."
	}
	return fmt.Sprintf("Step %q failed. Fix the cause above and run the installer again; "+
		"completed steps are skipped on re-run.", stepErr.Step)
}
