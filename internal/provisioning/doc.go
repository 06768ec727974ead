// Package provisioning turns a validated configuration into an installed
// system by running a fixed, ordered list of steps.
//
// # Core Types
//
// Step is a unit of work with an "already satisfied?" predicate (Check) and
// an action (Apply). Pipeline runs steps strictly in order and records the
// outcome of each in a State. Context carries the configuration, the host
// capability, the renderer, the lock retry policy and the observer.
//
// A run is never checkpointed. Re-running re-evaluates every Check, which
// skips the work a previous partial run completed and resumes at the first
// unmet step.
//
// The concrete steps live in the steps subpackage.
package provisioning
