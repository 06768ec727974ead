package testing

import (
	"time"

	"github.com/horilla-opensource/horilla-installer/internal/config"
)

// ConfigBuilder provides a fluent interface for constructing test configs.
// Each method returns a new builder (immutable) for chaining.
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfigBuilder creates a new ConfigBuilder whose Build result passes
// validation.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		cfg: config.Config{
			Domain:        "hr.example.com",
			Email:         "ops@example.com",
			AdminUsername: config.DefaultAdminUsername,
			AdminPassword: config.DefaultAdminPassword,
			InstallDir:    "/root/horilla",
			HomeDir:       "/root",
			DBUser:        config.DefaultDBUser,
			DBPassword:    "db-secret",
			DBName:        config.DefaultDBName,
			DBImage:       config.DefaultDBImage,
			AppPort:       config.DefaultAppPort,
			AppImage:      "ghcr.io/horilla-opensource/horilla:latest",
			SecretKey:     "0123456789abcdefghijklmnopqrstuvwxyz",
			Timeout:       config.DefaultTimeout,
			MaxRetries:    config.DefaultMaxRetries,
			RetryDelay:    config.DefaultRetryDelay,
			SkipUpgrade:   true,
		},
	}
}

// WithDomain sets the domain.
func (b *ConfigBuilder) WithDomain(domain string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Domain = domain
	return nb
}

// WithInstallDir sets the install and home directories.
func (b *ConfigBuilder) WithInstallDir(home, installDir string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.HomeDir = home
	nb.cfg.InstallDir = installDir
	return nb
}

// WithRetries sets the lock retry budget.
func (b *ConfigBuilder) WithRetries(n int, delay time.Duration) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.MaxRetries = n
	nb.cfg.RetryDelay = delay
	return nb
}

// WithTimeout sets the per-command timeout.
func (b *ConfigBuilder) WithTimeout(d time.Duration) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Timeout = d
	return nb
}

// WithForceContinue enables forceContinue.
func (b *ConfigBuilder) WithForceContinue() *ConfigBuilder {
	nb := b.clone()
	nb.cfg.ForceContinue = true
	return nb
}

// WithUpgrade turns the system upgrade step on.
func (b *ConfigBuilder) WithUpgrade() *ConfigBuilder {
	nb := b.clone()
	nb.cfg.SkipUpgrade = false
	return nb
}

// WithNoSSL disables certificate issuance.
func (b *ConfigBuilder) WithNoSSL() *ConfigBuilder {
	nb := b.clone()
	nb.cfg.NoSSL = true
	return nb
}

// WithSourceBuild clears the application image so it is built from source.
func (b *ConfigBuilder) WithSourceBuild() *ConfigBuilder {
	nb := b.clone()
	nb.cfg.AppImage = ""
	return nb
}

// WithBackup enables backups for provider.
func (b *ConfigBuilder) WithBackup(provider, frequency string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Backup = &config.BackupConfig{
		Provider:  provider,
		AccessKey: "AKIAEXAMPLE",
		SecretKey: "backup-secret",
		Region:    config.DefaultRegion,
		Bucket:    "horilla-backups",
		Frequency: frequency,
	}
	if provider == config.ProviderOther {
		nb.cfg.Backup.Endpoint = "https://minio.example.com"
	}
	return nb
}

// Build returns the configuration.
func (b *ConfigBuilder) Build() *config.Config {
	cfg := b.cfg
	if b.cfg.Backup != nil {
		backup := *b.cfg.Backup
		cfg.Backup = &backup
	}
	return &cfg
}

func (b *ConfigBuilder) clone() *ConfigBuilder {
	nb := &ConfigBuilder{cfg: b.cfg}
	if b.cfg.Backup != nil {
		backup := *b.cfg.Backup
		nb.cfg.Backup = &backup
	}
	return nb
}
