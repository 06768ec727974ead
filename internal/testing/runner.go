package testing

import (
	"context"
	"strings"
	"sync"

	"github.com/horilla-opensource/horilla-installer/internal/platform/host"
)

type rule struct {
	prefix  string
	results []host.Result
	fn      func(host.Command) host.Result
	calls   int
}

// FakeRunner is a scripted host.Runner. Commands are matched by the prefix of
// their rendered command line; the most recently added matching rule wins.
// Unmatched commands succeed with empty output.
type FakeRunner struct {
	mu    sync.Mutex
	rules []*rule
	calls []host.Command
}

// NewFakeRunner creates a FakeRunner with no rules.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{}
}

// On answers commands starting with prefix with results in order. The last
// result repeats once the list is exhausted.
func (r *FakeRunner) On(prefix string, results ...host.Result) *FakeRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, &rule{prefix: prefix, results: results})
	return r
}

// OnFunc answers commands starting with prefix with fn.
func (r *FakeRunner) OnFunc(prefix string, fn func(host.Command) host.Result) *FakeRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, &rule{prefix: prefix, fn: fn})
	return r
}

// Run implements host.Runner.
func (r *FakeRunner) Run(_ context.Context, cmd host.Command) (host.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, cmd)

	line := cmd.String()
	for i := len(r.rules) - 1; i >= 0; i-- {
		rl := r.rules[i]
		if !strings.HasPrefix(line, rl.prefix) {
			continue
		}
		var res host.Result
		switch {
		case rl.fn != nil:
			res = rl.fn(cmd)
		case len(rl.results) > 0:
			idx := min(rl.calls, len(rl.results)-1)
			res = rl.results[idx]
		}
		rl.calls++
		res.Command = line
		return res, nil
	}
	return host.Result{Command: line}, nil
}

// Calls returns the command lines run so far.
func (r *FakeRunner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.String()
	}
	return out
}

// Commands returns the commands run so far.
func (r *FakeRunner) Commands() []host.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]host.Command(nil), r.calls...)
}

// Count returns how many commands started with prefix.
func (r *FakeRunner) Count(prefix string) int {
	n := 0
	for _, c := range r.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls but keeps the rules.
func (r *FakeRunner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
