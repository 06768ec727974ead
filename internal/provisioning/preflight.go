package provisioning

import (
	"github.com/horilla-opensource/horilla-installer/internal/platform/osrelease"
	"github.com/horilla-opensource/horilla-installer/internal/render"
	"github.com/horilla-opensource/horilla-installer/internal/util/prerequisites"
)

// Preflight verifies everything that can be known before the host is touched:
// privileges, required tools, and that every artifact renders. It returns a
// *PreconditionError or a render error; both classify as abort-before-mutation.
func Preflight(ctx *Context) error {
	var problems []string

	if ctx.Privileged != nil && !ctx.Privileged() {
		problems = append(problems, "the installer must run as root (try sudo)")
	}

	tools := prerequisites.HostTools()
	if ctx.Config.BackupEnabled() {
		tools = append(tools, prerequisites.BackupTools()...)
	}
	results := prerequisites.Checker{LookPath: ctx.LookPath}.Check(tools)
	if err := results.Error(); err != nil {
		problems = append(problems, err.Error())
	}

	release, err := osrelease.Read(ctx.Host.FS)
	switch {
	case err != nil:
		warn(ctx, err.Error()+", continuing anyway")
	case !release.Supported():
		warn(ctx, `unsupported distribution "`+release.ID+`", continuing anyway`)
	}

	if len(problems) > 0 {
		return &PreconditionError{Problems: problems}
	}

	for _, kind := range render.KindsFor(ctx.Config) {
		if _, err := ctx.Renderer.Render(kind, ctx.Config); err != nil {
			return err
		}
	}
	return nil
}

func warn(ctx *Context, msg string) {
	ctx.Observer.Event(Event{
		Type:     EventPreflightIssue,
		Resource: osrelease.Path,
		Message:  msg,
	})
}
