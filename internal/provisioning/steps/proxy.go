package steps

import (
	"errors"
	"fmt"
	"time"

	"github.com/horilla-opensource/horilla-installer/internal/platform/docker"
	"github.com/horilla-opensource/horilla-installer/internal/platform/host"
	"github.com/horilla-opensource/horilla-installer/internal/provisioning"
	"github.com/horilla-opensource/horilla-installer/internal/render"
)

// nginx layout.
const (
	SiteAvailable = "/etc/nginx/sites-available/horilla"
	SiteEnabled   = "/etc/nginx/sites-enabled/horilla"
	DefaultSite   = "/etc/nginx/sites-enabled/default"
)

// siteKind picks the TLS variant once a certificate is on disk, so re-runs
// never downgrade a working HTTPS site.
func siteKind(ctx *provisioning.Context) render.Kind {
	if ctx.Config.WantsTLS() && host.Exists(ctx.Host.FS, render.CertificatePath(ctx.Config.Domain)) {
		return render.KindProxySiteTLS
	}
	return render.KindProxySite
}

// siteCurrent reports whether the enabled site has the content of kind.
func siteCurrent(ctx *provisioning.Context, kind render.Kind) (bool, error) {
	ok, err := artifactsCurrent(ctx, []artifact{{kind, SiteAvailable, 0o644}})
	if err != nil || !ok {
		return false, err
	}
	target, err := ctx.Host.FS.Readlink(SiteEnabled)
	if err != nil || target != SiteAvailable {
		return false, nil
	}
	return !defaultSiteEnabled(ctx), nil
}

// defaultSiteEnabled also catches a dangling link to the stock site.
func defaultSiteEnabled(ctx *provisioning.Context) bool {
	if _, err := ctx.Host.FS.Readlink(DefaultSite); err == nil {
		return true
	}
	return host.Exists(ctx.Host.FS, DefaultSite)
}

// installSite writes the site of kind, enables it and reloads nginx. A site
// that fails `nginx -t` is rolled back to the previous content.
func installSite(ctx *provisioning.Context, step string, kind render.Kind) error {
	fsys := ctx.Host.FS
	previous, readErr := fsys.ReadFile(SiteAvailable)

	if err := fsys.MkdirAll(render.ACMEWebroot, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", render.ACMEWebroot, err)
	}
	if err := writeArtifacts(ctx, step, []artifact{{kind, SiteAvailable, 0o644}}); err != nil {
		return err
	}
	if err := host.EnsureSymlink(fsys, SiteAvailable, SiteEnabled); err != nil {
		return err
	}
	if defaultSiteEnabled(ctx) {
		if err := fsys.Remove(DefaultSite); err != nil {
			return fmt.Errorf("failed to disable default site: %w", err)
		}
		provisioning.LogResourceChanged(ctx.Observer, step, DefaultSite, "removed")
	}

	t := ctx.CommandTimeout()
	if _, err := ctx.Exec(host.Command{Name: "nginx", Args: []string{"-t"}, Timeout: t}); err != nil {
		rollbackSite(ctx, step, previous, readErr == nil)
		return fmt.Errorf("nginx rejected the site configuration: %w", err)
	}
	if _, err := ctx.Exec(docker.Systemctl(t, "reload-or-restart", "nginx")); err != nil {
		return fmt.Errorf("failed to reload nginx: %w", err)
	}
	return nil
}

// rollbackSite restores the previous site, or removes a site that did not
// exist before so the next run does not mistake it for installed.
func rollbackSite(ctx *provisioning.Context, step string, previous []byte, existed bool) {
	fsys := ctx.Host.FS
	var err error
	if existed {
		err = fsys.WriteFile(SiteAvailable, previous, 0o644)
	} else {
		err = errors.Join(fsys.Remove(SiteEnabled), fsys.Remove(SiteAvailable))
	}
	if err != nil {
		ctx.Observer.Printf("[%s] failed to roll back %s: %v", step, SiteAvailable, err)
	}
}

// ProxySite installs the nginx virtual host for the domain.
type ProxySite struct{}

func (*ProxySite) ID() string                         { return IDProxySite }
func (*ProxySite) Description() string                { return "Configure nginx site" }
func (*ProxySite) Policy() provisioning.FailurePolicy { return provisioning.Fatal }

func (*ProxySite) Check(ctx *provisioning.Context) (bool, error) {
	return siteCurrent(ctx, siteKind(ctx))
}

func (*ProxySite) Apply(ctx *provisioning.Context) error {
	return installSite(ctx, IDProxySite, siteKind(ctx))
}

// Certificate obtains a certificate with certbot and switches the site to
// HTTPS. Failure leaves the site on HTTP and the run degraded.
type Certificate struct{}

func (*Certificate) ID() string                         { return IDCertificate }
func (*Certificate) Description() string                { return "Obtain TLS certificate" }
func (*Certificate) Policy() provisioning.FailurePolicy { return provisioning.BestEffort }

func (*Certificate) Skip(ctx *provisioning.Context) (string, bool) {
	switch {
	case ctx.Config.NoSSL:
		return "TLS disabled (--force-no-ssl)", true
	case ctx.Config.WildcardDNS():
		return "certificates are not issued for wildcard DNS names", true
	}
	return "", false
}

func (*Certificate) Check(ctx *provisioning.Context) (bool, error) {
	if !host.Exists(ctx.Host.FS, render.CertificatePath(ctx.Config.Domain)) {
		return false, nil
	}
	return siteCurrent(ctx, render.KindProxySiteTLS)
}

func (*Certificate) Apply(ctx *provisioning.Context) error {
	cfg := ctx.Config
	if !host.Exists(ctx.Host.FS, render.CertificatePath(cfg.Domain)) {
		cmd := host.Command{
			Name: "certbot",
			Args: []string{
				"certonly", "--webroot", "-w", render.ACMEWebroot,
				"-d", cfg.Domain, "-m", cfg.Email,
				"--agree-tos", "--non-interactive", "--keep-until-expiring",
				"--deploy-hook", "systemctl reload nginx",
			},
			Timeout: ctx.LongTimeout(5 * time.Minute),
		}
		if _, err := ctx.Exec(cmd); err != nil {
			return fmt.Errorf("certificate for %s not issued (check that DNS points at this host): %w", cfg.Domain, err)
		}
	}
	return installSite(ctx, IDCertificate, render.KindProxySiteTLS)
}
