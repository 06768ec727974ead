package provisioning

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horilla-opensource/horilla-installer/internal/config"
	"github.com/horilla-opensource/horilla-installer/internal/platform/host"
	"github.com/horilla-opensource/horilla-installer/internal/render"
	"github.com/horilla-opensource/horilla-installer/internal/util/retry"
)

func TestNewState(t *testing.T) {
	t.Parallel()
	state := NewState([]Step{
		&fakeStep{id: "a"},
		&fakeStep{id: "b", policy: BestEffort},
	})

	assert.NotEmpty(t, state.RunID)
	assert.Equal(t, NotStarted, state.Status)
	require.Len(t, state.Steps, 2)
	assert.Equal(t, StepPending, state.Steps[0].Status)
	assert.Equal(t, BestEffort, state.Record("b").Policy)
	assert.Nil(t, state.Record("c"))
	assert.Equal(t, 2, state.Count(StepPending))
}

func TestState_Degraded(t *testing.T) {
	t.Parallel()
	state := NewState([]Step{&fakeStep{id: "a"}, &fakeStep{id: "b"}})
	state.Steps[1].Status = StepFailed

	state.Status = InProgress
	assert.False(t, state.Degraded())

	state.Status = Completed
	assert.True(t, state.Degraded())
	assert.Len(t, state.Failed(), 1)

	state.Status = Aborted
	assert.False(t, state.Degraded())
}

func TestClassify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"interrupt", fmt.Errorf("wait: %w", context.Canceled), ErrorInterrupted},
		{"lock", &retry.ContentionError{Command: "apt-get update", Attempts: 3}, ErrorLockContention},
		{"command timeout", &host.TimeoutError{Command: "apt-get install", Timeout: time.Minute}, ErrorTimeout},
		{"health timeout", &TimeoutError{What: "healthy database", Timeout: time.Minute}, ErrorTimeout},
		{"template", &render.MissingFieldError{Kind: render.KindComposeManifest, Field: "db-password"}, ErrorTemplate},
		{"precondition", &PreconditionError{Problems: []string{"not root"}}, ErrorPrecondition},
		{"invalid config", &config.ValidationError{Problems: []string{"domain"}}, ErrorPrecondition},
		{"command", &host.CommandError{Result: host.Result{ExitCode: 100}}, ErrorCommand},
		{"other", errors.New("boom"), ErrorCommand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestStderrOf(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "E: boom", StderrOf(fmt.Errorf("x: %w", &host.CommandError{Result: host.Result{Stderr: "E: boom"}})))
	assert.Equal(t, "E: Could not get lock", StderrOf(&retry.ContentionError{Stderr: "E: Could not get lock"}))
	assert.Equal(t, "partial", StderrOf(&host.TimeoutError{Stderr: "partial"}))
	assert.Empty(t, StderrOf(errors.New("plain")))
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()
	err := &StepError{Step: "services", Kind: ErrorTimeout, Err: &TimeoutError{What: "healthy database", Timeout: time.Minute, Last: "starting"}}
	assert.Equal(t, "step services failed (timeout): healthy database not reached within 1m0s (last state: starting)", err.Error())

	pre := &PreconditionError{Problems: []string{"a", "b"}}
	assert.Equal(t, "precondition failed: a; b", pre.Error())

	assert.Equal(t, "best-effort", BestEffort.String())
	assert.Equal(t, "lock-contention", ErrorLockContention.String())
}
