package steps

import (
	"fmt"

	"github.com/horilla-opensource/horilla-installer/internal/platform/apt"
	"github.com/horilla-opensource/horilla-installer/internal/provisioning"
)

// ProxyPackageList is installed by the proxy-packages step.
var ProxyPackageList = []string{"nginx", "certbot"}

// BackupPackageList is installed when backups are enabled.
var BackupPackageList = []string{"borgbackup", "rclone"}

// PackageIndex refreshes the apt indexes unless they are recent.
type PackageIndex struct{}

func (*PackageIndex) ID() string                         { return IDPackageIndex }
func (*PackageIndex) Description() string                { return "Refresh package index" }
func (*PackageIndex) Policy() provisioning.FailurePolicy { return provisioning.Tolerable }

// Check treats indexes refreshed within IndexMaxAge as fresh.
func (*PackageIndex) Check(ctx *provisioning.Context) (bool, error) {
	info, err := ctx.Host.FS.Stat(apt.ListsDir)
	if err != nil {
		return false, nil
	}
	return ctx.Now().Sub(info.ModTime()) < ctx.Timeouts.IndexMaxAge, nil
}

func (*PackageIndex) Apply(ctx *provisioning.Context) error {
	if _, err := ctx.RunLocked(apt.Update(ctx.CommandTimeout())); err != nil {
		return fmt.Errorf("failed to refresh package index: %w", err)
	}
	return nil
}

// SystemUpgrade upgrades every installed package.
type SystemUpgrade struct{}

func (*SystemUpgrade) ID() string                         { return IDSystemUpgrade }
func (*SystemUpgrade) Description() string                { return "Upgrade system packages" }
func (*SystemUpgrade) Policy() provisioning.FailurePolicy { return provisioning.Tolerable }

func (*SystemUpgrade) Skip(ctx *provisioning.Context) (string, bool) {
	return "system upgrade not requested (--no-skip-upgrade)", ctx.Config.SkipUpgrade
}

func (*SystemUpgrade) Check(ctx *provisioning.Context) (bool, error) {
	res, err := ctx.Host.Exec(ctx, apt.ListUpgradable(ctx.CommandTimeout()))
	if err != nil {
		return false, err
	}
	return !apt.HasUpgrades(res), nil
}

func (*SystemUpgrade) Apply(ctx *provisioning.Context) error {
	if _, err := ctx.RunLocked(apt.Upgrade(ctx.LongTimeout(ctx.Timeouts.PackageInstall))); err != nil {
		return fmt.Errorf("failed to upgrade packages: %w", err)
	}
	return nil
}

// ProxyPackages installs the reverse proxy and the certificate agent.
type ProxyPackages struct{}

func (*ProxyPackages) ID() string                         { return IDProxyPackages }
func (*ProxyPackages) Description() string                { return "Install nginx and certbot" }
func (*ProxyPackages) Policy() provisioning.FailurePolicy { return provisioning.Tolerable }

func (*ProxyPackages) Check(ctx *provisioning.Context) (bool, error) {
	return packagesInstalled(ctx, ProxyPackageList...), nil
}

func (*ProxyPackages) Apply(ctx *provisioning.Context) error {
	return installPackages(ctx, ProxyPackageList...)
}

// BackupPackages installs the archiver and the sync agent the backup script
// calls.
type BackupPackages struct{}

func (*BackupPackages) ID() string                         { return IDBackupPackages }
func (*BackupPackages) Description() string                { return "Install borg and rclone" }
func (*BackupPackages) Policy() provisioning.FailurePolicy { return provisioning.Tolerable }

func (*BackupPackages) Skip(ctx *provisioning.Context) (string, bool) {
	return skipWithoutBackups(ctx)
}

func (*BackupPackages) Check(ctx *provisioning.Context) (bool, error) {
	return packagesInstalled(ctx, BackupPackageList...), nil
}

func (*BackupPackages) Apply(ctx *provisioning.Context) error {
	return installPackages(ctx, BackupPackageList...)
}

func skipWithoutBackups(ctx *provisioning.Context) (string, bool) {
	return "backups not enabled", !ctx.Config.BackupEnabled()
}
