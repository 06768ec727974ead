package steps

import (
	"fmt"
	"path/filepath"

	"github.com/horilla-opensource/horilla-installer/internal/config"
	"github.com/horilla-opensource/horilla-installer/internal/platform/host"
	"github.com/horilla-opensource/horilla-installer/internal/provisioning"
)

// AppSource checks out the application source into the install directory
// when the image is built locally. It fetches into the directory in place so
// files the installer renders there survive.
type AppSource struct{}

func (*AppSource) ID() string                         { return IDAppSource }
func (*AppSource) Description() string                { return "Fetch application source" }
func (*AppSource) Policy() provisioning.FailurePolicy { return provisioning.Fatal }

func (*AppSource) Skip(ctx *provisioning.Context) (string, bool) {
	return "using prebuilt image " + ctx.Config.AppImage, !ctx.Config.BuildFromSource()
}

// Check looks for a checked-out commit.
func (*AppSource) Check(ctx *provisioning.Context) (bool, error) {
	if !host.Exists(ctx.Host.FS, filepath.Join(ctx.Config.InstallDir, ".git")) {
		return false, nil
	}
	return ctx.Probe(git(ctx, "rev-parse", "--verify", "--quiet", "HEAD")), nil
}

func (*AppSource) Apply(ctx *provisioning.Context) error {
	if _, err := ctx.LookPath("git"); err != nil {
		if err := installPackages(ctx, "git"); err != nil {
			return err
		}
	}
	if err := ctx.Host.FS.MkdirAll(ctx.Config.InstallDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", ctx.Config.InstallDir, err)
	}

	for _, args := range [][]string{
		{"init", "--quiet"},
		{"fetch", "--quiet", "--depth", "1", config.SourceRepository, "HEAD"},
		{"checkout", "--quiet", "--force", "FETCH_HEAD"},
	} {
		if _, err := ctx.Exec(git(ctx, args...)); err != nil {
			return fmt.Errorf("failed to fetch application source: %w", err)
		}
	}
	ctx.MarkChanged(ctx.Config.InstallDir)
	provisioning.LogResourceChanged(ctx.Observer, IDAppSource, ctx.Config.InstallDir, "checked out "+config.SourceRepository)
	return nil
}

func git(ctx *provisioning.Context, args ...string) host.Command {
	return host.Command{
		Name:    "git",
		Args:    append([]string{"-C", ctx.Config.InstallDir}, args...),
		Timeout: ctx.LongTimeout(ctx.Timeouts.PackageInstall),
	}
}
