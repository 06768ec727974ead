// Package render produces the configuration artifacts written to the host:
// the compose manifest, the application environment, the reverse proxy site,
// the image recipe, and the backup script with its rclone remote.
//
// Rendering is pure. The same configuration always yields byte-identical
// output, which is what lets provisioning steps detect "already applied" by
// comparing file contents.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"text/template"

	"github.com/horilla-opensource/horilla-installer/internal/config"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Kind identifies an artifact.
type Kind string

// Artifact kinds.
const (
	KindComposeManifest Kind = "compose"
	KindEnvFile         Kind = "env"
	KindDockerfile      Kind = "dockerfile"
	KindProxySite       Kind = "proxy-site"
	KindProxySiteTLS    Kind = "proxy-site-tls"
	KindBackupScript    Kind = "backup-script"
	KindRcloneConfig    Kind = "rclone-config"
)

// Kinds lists every artifact kind.
func Kinds() []Kind {
	return []Kind{
		KindComposeManifest, KindEnvFile, KindDockerfile,
		KindProxySite, KindProxySiteTLS, KindBackupScript, KindRcloneConfig,
	}
}

// KindsFor lists the artifacts an installation with cfg writes.
func KindsFor(cfg *config.Config) []Kind {
	kinds := []Kind{KindComposeManifest, KindEnvFile}
	if cfg.BuildFromSource() {
		kinds = append(kinds, KindDockerfile)
	}
	kinds = append(kinds, KindProxySite)
	if cfg.WantsTLS() {
		kinds = append(kinds, KindProxySiteTLS)
	}
	if cfg.BackupEnabled() {
		kinds = append(kinds, KindBackupScript, KindRcloneConfig)
	}
	return kinds
}

var templateFiles = map[Kind]string{
	KindComposeManifest: "compose.yml.tmpl",
	KindEnvFile:         "env.tmpl",
	KindDockerfile:      "Dockerfile.tmpl",
	KindProxySite:       "nginx-site.conf.tmpl",
	KindProxySiteTLS:    "nginx-site-tls.conf.tmpl",
	KindBackupScript:    "backup.sh.tmpl",
	KindRcloneConfig:    "rclone.conf.tmpl",
}

// ErrMissingField is matched by errors for artifacts whose required inputs
// are empty.
var ErrMissingField = errors.New("missing required field")

// MissingFieldError names the field an artifact could not be rendered without.
type MissingFieldError struct {
	Kind  Kind
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("render %s: %s: %s", e.Kind, ErrMissingField, e.Field)
}

// Unwrap makes errors.Is(err, ErrMissingField) hold.
func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// Renderer renders artifacts from embedded templates.
type Renderer struct {
	templates map[Kind]*template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	r := &Renderer{templates: make(map[Kind]*template.Template, len(templateFiles))}
	for kind, file := range templateFiles {
		tmpl, err := template.New(file).
			Option("missingkey=error").
			Funcs(funcs).
			ParseFS(templatesFS, "templates/"+file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", file, err)
		}
		r.templates[kind] = tmpl
	}
	return r, nil
}

// MustNew is New for package initialisation and tests.
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Render produces the artifact of the given kind.
func (r *Renderer) Render(kind Kind, cfg *config.Config) ([]byte, error) {
	tmpl, ok := r.templates[kind]
	if !ok {
		return nil, fmt.Errorf("unknown artifact kind %q", kind)
	}

	data, err := model(kind, cfg)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", kind, err)
	}
	return buf.Bytes(), nil
}
