package steps

import (
	"fmt"
	"strings"

	"github.com/horilla-opensource/horilla-installer/internal/platform/apt"
	"github.com/horilla-opensource/horilla-installer/internal/platform/compose"
	"github.com/horilla-opensource/horilla-installer/internal/platform/docker"
	"github.com/horilla-opensource/horilla-installer/internal/platform/osrelease"
	"github.com/horilla-opensource/horilla-installer/internal/provisioning"
)

// ContainerEngine installs Docker Engine with the compose plugin and starts
// the daemon. Nothing later can work without it, so it is fatal even with
// --force-continue.
type ContainerEngine struct{}

func (*ContainerEngine) ID() string                         { return IDContainerEngine }
func (*ContainerEngine) Description() string                { return "Install Docker Engine" }
func (*ContainerEngine) Policy() provisioning.FailurePolicy { return provisioning.Fatal }

// Check requires the binary, a reachable daemon and the compose plugin.
func (*ContainerEngine) Check(ctx *provisioning.Context) (bool, error) {
	if _, err := ctx.LookPath("docker"); err != nil {
		return false, nil
	}
	t := ctx.CommandTimeout()
	return ctx.Probe(docker.Info(t)) && ctx.Probe(compose.Version(t)), nil
}

func (s *ContainerEngine) Apply(ctx *provisioning.Context) error {
	t := ctx.CommandTimeout()

	_, lookErr := ctx.LookPath("docker")
	if lookErr != nil || !ctx.Probe(compose.Version(t)) {
		if err := s.install(ctx); err != nil {
			return err
		}
	}

	if _, err := ctx.Exec(docker.EnableService(t)); err != nil {
		return fmt.Errorf("failed to start docker: %w", err)
	}
	if _, err := ctx.Exec(docker.Info(t)); err != nil {
		return fmt.Errorf("docker daemon is not reachable: %w", err)
	}
	return nil
}

// install registers Docker's apt repository and installs the engine.
func (*ContainerEngine) install(ctx *provisioning.Context) error {
	t := ctx.CommandTimeout()

	if err := installPackages(ctx, docker.Prerequisites...); err != nil {
		return err
	}

	release, err := osrelease.Read(ctx.Host.FS)
	if err != nil {
		return err
	}
	distro, codename, err := release.Upstream()
	if err != nil {
		return fmt.Errorf("cannot choose a docker repository: %w", err)
	}

	if err := ctx.Host.FS.MkdirAll(docker.KeyringDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", docker.KeyringDir, err)
	}
	staged, err := ctx.ScratchPath("docker.asc")
	if err != nil {
		return err
	}
	if _, err := ctx.Exec(docker.FetchKey(t, distro, staged)); err != nil {
		return fmt.Errorf("failed to fetch docker repository key: %w", err)
	}
	if _, err := ctx.Exec(docker.InstallKey(t, staged)); err != nil {
		return fmt.Errorf("failed to install docker repository key: %w", err)
	}
	res, err := ctx.Exec(docker.Architecture(t))
	if err != nil {
		return fmt.Errorf("failed to detect architecture: %w", err)
	}
	entry := docker.SourcesEntry(strings.TrimSpace(res.Stdout), distro, codename)
	if err := writeFile(ctx, IDContainerEngine, docker.SourcesPath, []byte(entry), 0o644); err != nil {
		return err
	}

	if _, err := ctx.RunLocked(apt.Update(t)); err != nil {
		return fmt.Errorf("failed to refresh package index: %w", err)
	}
	return installPackages(ctx, docker.Packages...)
}
