// Package wizard collects installation settings interactively.
//
// Questions are grouped per concern and rendered with charmbracelet/huh.
// Every answer is written into a config.Input, pre-filled with whatever the
// flags and saved answers already supplied, so the operator only confirms
// values that are known and types the rest. All prompting finishes before
// the pipeline starts.
package wizard
