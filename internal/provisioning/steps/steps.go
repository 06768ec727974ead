package steps

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/horilla-opensource/horilla-installer/internal/platform/apt"
	"github.com/horilla-opensource/horilla-installer/internal/platform/host"
	"github.com/horilla-opensource/horilla-installer/internal/provisioning"
	"github.com/horilla-opensource/horilla-installer/internal/render"
)

// Step identifiers.
const (
	IDPackageIndex    = "package-index"
	IDSystemUpgrade   = "system-upgrade"
	IDContainerEngine = "container-engine"
	IDProxyPackages   = "proxy-packages"
	IDAppSource       = "app-source"
	IDComposeManifest = "compose-manifest"
	IDAppEnvironment  = "app-environment"
	IDServices        = "services"
	IDProxySite       = "proxy-site"
	IDCertificate     = "certificate"
	IDAdminAccount    = "admin-account"
	IDBackupPackages  = "backup-packages"
	IDBackupRemote    = "backup-remote"
	IDBackupScript    = "backup-script"
	IDBackupSchedule  = "backup-schedule"
)

// Default returns the installation pipeline in execution order. Steps that
// do not apply to a configuration skip themselves, so the list is the same
// for every run and reports stay comparable.
func Default() []provisioning.Step {
	return []provisioning.Step{
		&PackageIndex{},
		&SystemUpgrade{},
		&ContainerEngine{},
		&ProxyPackages{},
		&AppSource{},
		&ComposeManifest{},
		&AppEnvironment{},
		&Services{},
		&ProxySite{},
		&Certificate{},
		&AdminAccount{},
		&BackupPackages{},
		&BackupRemote{},
		&BackupScript{},
		&BackupSchedule{},
	}
}

// artifact is a rendered file and where it goes.
type artifact struct {
	kind render.Kind
	path string
	perm fs.FileMode
}

// renderAll renders every artifact. Nothing is written if any fails.
func renderAll(ctx *provisioning.Context, artifacts []artifact) ([][]byte, error) {
	out := make([][]byte, len(artifacts))
	for i, a := range artifacts {
		data, err := ctx.Renderer.Render(a.kind, ctx.Config)
		if err != nil {
			return nil, err
		}
		out[i] = data
	}
	return out, nil
}

// artifactsCurrent reports whether every artifact is on disk with the
// content it would be rendered with.
func artifactsCurrent(ctx *provisioning.Context, artifacts []artifact) (bool, error) {
	rendered, err := renderAll(ctx, artifacts)
	if err != nil {
		return false, err
	}
	for i, a := range artifacts {
		same, err := host.SameContent(ctx.Host.FS, a.path, rendered[i])
		if err != nil || !same {
			return false, err
		}
	}
	return true, nil
}

// writeArtifacts renders and writes artifacts, touching only files whose
// content differs.
func writeArtifacts(ctx *provisioning.Context, step string, artifacts []artifact) error {
	rendered, err := renderAll(ctx, artifacts)
	if err != nil {
		return err
	}
	for i, a := range artifacts {
		if err := writeFile(ctx, step, a.path, rendered[i], a.perm); err != nil {
			return err
		}
	}
	return nil
}

// writeFile writes data to path if it differs, creating the parent directory.
func writeFile(ctx *provisioning.Context, step, path string, data []byte, perm fs.FileMode) error {
	if err := ctx.Host.FS.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	changed, err := host.WriteIfChanged(ctx.Host.FS, path, data, perm)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if !changed {
		provisioning.LogResourceUnchanged(ctx.Observer, step, path)
		return nil
	}
	ctx.MarkChanged(path)
	provisioning.LogResourceChanged(ctx.Observer, step, path, "written")
	return nil
}

// packagesInstalled reports whether dpkg lists every package as installed.
func packagesInstalled(ctx *provisioning.Context, packages ...string) bool {
	for _, pkg := range packages {
		res, err := ctx.Host.Runner.Run(ctx, apt.PackageStatus(ctx.CommandTimeout(), pkg))
		if err != nil || !apt.Installed(res) {
			return false
		}
	}
	return true
}

// installPackages installs packages under the lock retry policy.
func installPackages(ctx *provisioning.Context, packages ...string) error {
	timeout := ctx.LongTimeout(ctx.Timeouts.PackageInstall)
	if _, err := ctx.RunLocked(apt.Install(timeout, packages...)); err != nil {
		return fmt.Errorf("failed to install %v: %w", packages, err)
	}
	return nil
}
