package config

import (
	"path/filepath"
	"strings"
	"time"
)

// Config is the complete, validated set of installation settings.
// Produce it with Build; do not modify it afterwards.
type Config struct {
	// Identity
	Domain string `flag:"domain" validate:"required,domain"`
	Email  string `flag:"email" validate:"required,email"`

	// Bootstrap administrator
	AdminUsername string `flag:"admin-username" validate:"required,max=150"`
	AdminPassword string `flag:"admin-password" validate:"required"`

	// Layout
	InstallDir string `flag:"install-dir" validate:"required,abspath"`
	HomeDir    string `flag:"home" validate:"required,abspath"`

	// Database
	DBUser     string `flag:"db-user" validate:"required,max=63,excludesall=:@/ "`
	DBPassword string `flag:"db-password" validate:"required,excludes='"`
	DBName     string `flag:"db-name" validate:"required,max=63,excludesall=:@/ "`
	DBImage    string `flag:"db-image" validate:"required"`

	// Application
	AppImage  string `flag:"app-image"` // empty builds from a source checkout
	AppPort   int    `flag:"app-port" validate:"gt=0,lte=65535"`
	SecretKey string `flag:"secret-key" validate:"required,min=32"`

	// Execution
	Timeout        time.Duration `flag:"timeout" validate:"gt=0"`
	MaxRetries     int           `flag:"max-retries" validate:"gte=0"`
	RetryDelay     time.Duration `flag:"retry-delay" validate:"gte=0"`
	ForceContinue  bool          `flag:"force-continue"`
	SkipUpgrade    bool          `flag:"no-skip-upgrade"`
	NoSSL          bool          `flag:"force-no-ssl"`
	NonInteractive bool          `flag:"non-interactive"`

	// Backup is nil unless backups are enabled.
	Backup *BackupConfig `validate:"-"`
}

// BackupConfig configures the encrypted off-site backup pipeline.
type BackupConfig struct {
	Provider  string `flag:"s3-provider" validate:"required,oneof=aws wasabi b2 digitalocean other"`
	AccessKey string `flag:"s3-access-key" validate:"required"`
	SecretKey string `flag:"s3-secret-key" validate:"required"`
	Region    string `flag:"s3-region" validate:"required"`
	Endpoint  string `flag:"s3-endpoint" validate:"required_if=Provider other"`
	Bucket    string `flag:"s3-bucket-name" validate:"required,min=3,max=63"`
	Frequency string `flag:"backup-frequency" validate:"required,oneof=daily weekly monthly"`
}

// BackupEnabled reports whether the backup steps apply.
func (c *Config) BackupEnabled() bool {
	return c.Backup != nil
}

// WildcardDNS reports whether the domain is a nip.io style name.
func (c *Config) WildcardDNS() bool {
	return strings.HasSuffix(strings.ToLower(c.Domain), WildcardDNSSuffix)
}

// WantsTLS reports whether a certificate should be requested.
func (c *Config) WantsTLS() bool {
	return !c.NoSSL && !c.WildcardDNS()
}

// BuildFromSource reports whether the application image is built locally.
func (c *Config) BuildFromSource() bool {
	return c.AppImage == ""
}

// ComposePath is the rendered compose manifest.
func (c *Config) ComposePath() string { return filepath.Join(c.InstallDir, "docker-compose.yml") }

// EnvPath is the rendered application environment file.
func (c *Config) EnvPath() string { return filepath.Join(c.InstallDir, ".env") }

// DockerfilePath is the rendered application image recipe.
func (c *Config) DockerfilePath() string { return filepath.Join(c.InstallDir, "Dockerfile") }

// BackupDir holds the backup script, its log and the passphrase.
func (c *Config) BackupDir() string { return filepath.Join(c.HomeDir, "horilla-backup") }

// BackupScriptPath is the scheduled backup script.
func (c *Config) BackupScriptPath() string { return filepath.Join(c.BackupDir(), "backup.sh") }

// BackupLogPath receives the scheduled script's output.
func (c *Config) BackupLogPath() string { return filepath.Join(c.BackupDir(), "backup.log") }

// PassphrasePath stores the borg repository passphrase.
func (c *Config) PassphrasePath() string { return filepath.Join(c.BackupDir(), ".borg-passphrase") }

// BorgRepoPath is the local borg repository synced to the remote.
func (c *Config) BorgRepoPath() string { return filepath.Join(c.BackupDir(), "repo") }

// DumpDir is the staging directory for database dumps.
func (c *Config) DumpDir() string { return filepath.Join(c.BackupDir(), "dumps") }

// RcloneConfigPath is the rclone configuration holding the backup remote.
func (c *Config) RcloneConfigPath() string {
	return filepath.Join(c.HomeDir, ".config", "rclone", "rclone.conf")
}
