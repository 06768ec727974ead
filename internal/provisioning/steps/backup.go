package steps

import (
	"crypto/rand"
	"fmt"
	"path/filepath"
	"time"

	"github.com/horilla-opensource/horilla-installer/internal/config"
	"github.com/horilla-opensource/horilla-installer/internal/platform/host"
	"github.com/horilla-opensource/horilla-installer/internal/platform/s3"
	"github.com/horilla-opensource/horilla-installer/internal/provisioning"
	"github.com/horilla-opensource/horilla-installer/internal/render"
	"github.com/horilla-opensource/horilla-installer/internal/util/retry"
)

// BackupRemote makes sure the backup bucket exists, creating it if needed.
type BackupRemote struct{}

func (*BackupRemote) ID() string                         { return IDBackupRemote }
func (*BackupRemote) Description() string                { return "Prepare backup bucket" }
func (*BackupRemote) Policy() provisioning.FailurePolicy { return provisioning.Fatal }

func (*BackupRemote) Skip(ctx *provisioning.Context) (string, bool) {
	return skipWithoutBackups(ctx)
}

func (*BackupRemote) Check(ctx *provisioning.Context) (bool, error) {
	buckets, err := bucketClient(ctx)
	if err != nil {
		return false, err
	}
	return buckets.BucketExists(ctx, ctx.Config.Backup.Bucket)
}

func (*BackupRemote) Apply(ctx *provisioning.Context) error {
	b := ctx.Config.Backup
	buckets, err := bucketClient(ctx)
	if err != nil {
		return err
	}

	err = retry.WithExponentialBackoff(ctx, func() error {
		err := buckets.CreateBucket(ctx, b.Bucket)
		if s3.IsAuthError(err) {
			return retry.Fatal(fmt.Errorf("%s rejected the backup credentials: %w", b.Provider, err))
		}
		return err
	}, retry.WithMaxRetries(ctx.Timeouts.NetworkRetries), retry.WithInitialDelay(2*time.Second))
	if err != nil {
		return err
	}
	provisioning.LogResourceChanged(ctx.Observer, IDBackupRemote, b.Bucket, "bucket created")
	return nil
}

// bucketClient returns ctx.Buckets, creating an S3 client on first use.
func bucketClient(ctx *provisioning.Context) (provisioning.BucketClient, error) {
	if ctx.Buckets != nil {
		return ctx.Buckets, nil
	}
	b := ctx.Config.Backup
	client, err := s3.NewClient(ctx, config.S3Endpoint(b), b.Region, b.AccessKey, b.SecretKey)
	if err != nil {
		return nil, err
	}
	ctx.Buckets = client
	return client, nil
}

// BackupScript writes the rclone remote and the backup script, generates the
// repository passphrase once, and initialises the borg repository.
type BackupScript struct{}

func (*BackupScript) ID() string                         { return IDBackupScript }
func (*BackupScript) Description() string                { return "Install backup script" }
func (*BackupScript) Policy() provisioning.FailurePolicy { return provisioning.Fatal }

func (*BackupScript) Skip(ctx *provisioning.Context) (string, bool) {
	return skipWithoutBackups(ctx)
}

func (*BackupScript) artifacts(ctx *provisioning.Context) []artifact {
	return []artifact{
		{render.KindRcloneConfig, ctx.Config.RcloneConfigPath(), 0o600},
		{render.KindBackupScript, ctx.Config.BackupScriptPath(), 0o700},
	}
}

func (s *BackupScript) Check(ctx *provisioning.Context) (bool, error) {
	ok, err := artifactsCurrent(ctx, s.artifacts(ctx))
	if err != nil || !ok {
		return false, err
	}
	return host.Exists(ctx.Host.FS, ctx.Config.PassphrasePath()) && repoInitialised(ctx), nil
}

func (s *BackupScript) Apply(ctx *provisioning.Context) error {
	cfg := ctx.Config
	if err := writeArtifacts(ctx, IDBackupScript, s.artifacts(ctx)); err != nil {
		return err
	}

	// The passphrase is never regenerated: existing archives need it.
	if !host.Exists(ctx.Host.FS, cfg.PassphrasePath()) {
		if err := writeFile(ctx, IDBackupScript, cfg.PassphrasePath(), []byte(rand.Text()+"\n"), 0o600); err != nil {
			return err
		}
	}

	if repoInitialised(ctx) {
		return nil
	}
	initRepo := host.Command{
		Name:    "borg",
		Args:    []string{"init", "--encryption=repokey-blake2", cfg.BorgRepoPath()},
		Env:     []string{"BORG_PASSCOMMAND=cat " + cfg.PassphrasePath()},
		Timeout: ctx.CommandTimeout(),
	}
	if _, err := ctx.Exec(initRepo); err != nil {
		return fmt.Errorf("failed to initialise backup repository: %w", err)
	}
	provisioning.LogResourceChanged(ctx.Observer, IDBackupScript, cfg.BorgRepoPath(), "repository initialised")
	return nil
}

func repoInitialised(ctx *provisioning.Context) bool {
	return host.Exists(ctx.Host.FS, filepath.Join(ctx.Config.BorgRepoPath(), "config"))
}

// BackupSchedule registers the crontab entry that runs the backup script.
type BackupSchedule struct{}

func (*BackupSchedule) ID() string                         { return IDBackupSchedule }
func (*BackupSchedule) Description() string                { return "Schedule backups" }
func (*BackupSchedule) Policy() provisioning.FailurePolicy { return provisioning.Fatal }

func (*BackupSchedule) Skip(ctx *provisioning.Context) (string, bool) {
	return skipWithoutBackups(ctx)
}

func (*BackupSchedule) Check(ctx *provisioning.Context) (bool, error) {
	cfg := ctx.Config
	return ctx.Scheduler.Installed(ctx, cfg.Backup.Frequency, cfg.BackupScriptPath(), cfg.BackupLogPath())
}

func (*BackupSchedule) Apply(ctx *provisioning.Context) error {
	cfg := ctx.Config
	if err := ctx.Scheduler.Install(ctx, cfg.Backup.Frequency, cfg.BackupScriptPath(), cfg.BackupLogPath()); err != nil {
		return err
	}
	provisioning.LogResourceChanged(ctx.Observer, IDBackupSchedule, cfg.BackupScriptPath(), "scheduled "+cfg.Backup.Frequency)
	return nil
}
