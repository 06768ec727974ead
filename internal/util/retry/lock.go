package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/horilla-opensource/horilla-installer/internal/platform/host"
)

// ErrLockContention is matched by errors returned when a command kept failing
// because another process held an exclusive lock.
var ErrLockContention = errors.New("lock contention")

// ContentionClassifier decides whether a failed result was caused by lock
// contention rather than a real error.
type ContentionClassifier interface {
	IsContention(res host.Result) bool
}

// ContentionError is returned once the retry budget is exhausted.
type ContentionError struct {
	Command  string
	Attempts int
	Stderr   string
}

func (e *ContentionError) Error() string {
	return fmt.Sprintf("%s: lock still held after %d attempts", e.Command, e.Attempts)
}

// Unwrap makes errors.Is(err, ErrLockContention) hold.
func (e *ContentionError) Unwrap() error {
	return ErrLockContention
}

// LockPolicy retries a command with a fixed delay while it fails with lock
// contention. A policy with MaxRetries n makes at most n+1 attempts and
// sleeps at most n*Delay in total.
type LockPolicy struct {
	MaxRetries int
	Delay      time.Duration
	Classifier ContentionClassifier

	// Sleep waits between attempts. Defaults to SleepContext.
	Sleep func(ctx context.Context, d time.Duration) error

	// OnRetry is invoked before each wait with the 1-based attempt that failed.
	OnRetry func(attempt int, res host.Result)
}

// Run executes cmd under the policy.
//
// Failures that are not contention return *host.CommandError (or
// *host.TimeoutError) immediately without consuming the retry budget.
func (p LockPolicy) Run(ctx context.Context, runner host.Runner, cmd host.Command) (host.Result, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	for attempt := 1; ; attempt++ {
		res, err := runner.Run(ctx, cmd)
		if err != nil {
			return res, err
		}
		if res.Success() {
			return res, nil
		}
		if res.TimedOut || p.Classifier == nil || !p.Classifier.IsContention(res) {
			return res, host.Check(cmd, res)
		}
		if attempt > p.MaxRetries {
			return res, &ContentionError{Command: cmd.String(), Attempts: attempt, Stderr: res.Stderr}
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, res)
		}
		if err := sleep(ctx, p.Delay); err != nil {
			return res, fmt.Errorf("interrupted while waiting for lock on %s: %w", cmd.Name, err)
		}
	}
}

// SleepContext blocks for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
