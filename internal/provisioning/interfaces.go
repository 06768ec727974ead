package provisioning

import (
	"context"
	"time"
)

// FailurePolicy decides what a failed step does to the run.
type FailurePolicy int

const (
	// Fatal failures abort the run.
	Fatal FailurePolicy = iota

	// Tolerable steps abort too, unless the failure is exhausted lock
	// contention and forceContinue is set; then the run goes on.
	Tolerable

	// BestEffort failures never abort. The run completes degraded.
	BestEffort
)

func (p FailurePolicy) String() string {
	switch p {
	case Fatal:
		return "fatal"
	case Tolerable:
		return "tolerable"
	case BestEffort:
		return "best-effort"
	}
	return "unknown"
}

// Step defines one provisioning action.
type Step interface {
	// ID returns the stable identifier used in logs, metrics and reports.
	ID() string

	// Description returns a short human-readable summary.
	Description() string

	// Policy returns how a failure of this step is handled.
	Policy() FailurePolicy

	// Check reports whether the step's effect is already in place. It must
	// only read host state. An error is treated as "not satisfied".
	Check(ctx *Context) (bool, error)

	// Apply performs the step.
	Apply(ctx *Context) error
}

// Skipper is implemented by steps that do not apply to every configuration.
type Skipper interface {
	// Skip returns a reason and true when the step should not run.
	Skip(ctx *Context) (string, bool)
}

// BucketClient verifies and prepares the backup bucket.
// Implemented by internal/platform/s3.Client.
type BucketClient interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	CreateBucket(ctx context.Context, bucket string) error
}

// PortWaiter blocks until a TCP port accepts connections.
type PortWaiter func(ctx context.Context, ip string, port int, timeout time.Duration) error
