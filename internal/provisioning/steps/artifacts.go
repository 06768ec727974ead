package steps

import (
	"github.com/horilla-opensource/horilla-installer/internal/provisioning"
	"github.com/horilla-opensource/horilla-installer/internal/render"
)

// ComposeManifest creates the install directory and writes the compose
// manifest, plus the Dockerfile when the image is built locally.
type ComposeManifest struct{}

func (*ComposeManifest) ID() string                         { return IDComposeManifest }
func (*ComposeManifest) Description() string                { return "Render compose manifest" }
func (*ComposeManifest) Policy() provisioning.FailurePolicy { return provisioning.Fatal }

func (*ComposeManifest) artifacts(ctx *provisioning.Context) []artifact {
	out := []artifact{{render.KindComposeManifest, ctx.Config.ComposePath(), 0o644}}
	if ctx.Config.BuildFromSource() {
		out = append(out, artifact{render.KindDockerfile, ctx.Config.DockerfilePath(), 0o644})
	}
	return out
}

func (s *ComposeManifest) Check(ctx *provisioning.Context) (bool, error) {
	return artifactsCurrent(ctx, s.artifacts(ctx))
}

func (s *ComposeManifest) Apply(ctx *provisioning.Context) error {
	return writeArtifacts(ctx, IDComposeManifest, s.artifacts(ctx))
}

// AppEnvironment writes the application's .env: the secret key, database
// credentials and the host and CSRF allow-lists derived from the domain.
type AppEnvironment struct{}

func (*AppEnvironment) ID() string                         { return IDAppEnvironment }
func (*AppEnvironment) Description() string                { return "Configure application environment" }
func (*AppEnvironment) Policy() provisioning.FailurePolicy { return provisioning.Fatal }

func (*AppEnvironment) artifacts(ctx *provisioning.Context) []artifact {
	return []artifact{{render.KindEnvFile, ctx.Config.EnvPath(), 0o600}}
}

func (s *AppEnvironment) Check(ctx *provisioning.Context) (bool, error) {
	return artifactsCurrent(ctx, s.artifacts(ctx))
}

func (s *AppEnvironment) Apply(ctx *provisioning.Context) error {
	return writeArtifacts(ctx, IDAppEnvironment, s.artifacts(ctx))
}
