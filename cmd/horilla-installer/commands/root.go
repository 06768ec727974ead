// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing
// and flag binding. Command execution is delegated to handler functions in the
// handlers package.
package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/horilla-opensource/horilla-installer/cmd/horilla-installer/handlers"
	"github.com/horilla-opensource/horilla-installer/internal/config"
)

// Root returns the root command. Run without a subcommand it installs
// Horilla; the installation flags are shared with status and render.
func Root() *cobra.Command {
	opts := handlers.Options{Input: config.NewInput()}

	cmd := &cobra.Command{
		Use:   "horilla-installer",
		Short: "Install Horilla HRMS on a single Linux host",
		Long: `Install Horilla HRMS on a fresh Debian or Ubuntu server.

The installer sets up Docker, the Horilla application and its PostgreSQL
database, an nginx reverse proxy with a Let's Encrypt certificate, and
optionally encrypted off-site backups.

Every step checks whether its work is already done, so running the installer
again after a failure resumes where it stopped.

When stdin is a terminal, an interactive wizard asks for every setting that
was not given as a flag. Answers are saved and offered as defaults next time.

Examples:
  # Interactive install
  sudo horilla-installer

  # Unattended install with backups to Wasabi
  sudo horilla-installer --non-interactive --domain hr.example.com \
    --email ops@example.com --enable-backups yes --s3-provider wasabi \
    --s3-access-key KEY --s3-secret-key SECRET --s3-region eu-central-1 \
    --s3-bucket-name horilla-backups`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Install(cmd.Context(), opts)
		},
	}

	bindFlags(cmd.PersistentFlags(), &opts)

	cmd.AddCommand(Status(&opts))
	cmd.AddCommand(Render(&opts))
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}

// bindFlags registers the installation settings on fs.
func bindFlags(fs *pflag.FlagSet, opts *handlers.Options) {
	in := &opts.Input

	// Site
	fs.StringVar(&in.Domain, "domain", "", "Domain name for the site (default: horilla.<public-ip>.nip.io)")
	fs.StringVar(&in.Email, "email", "", "Contact email for the TLS certificate (default \""+config.DefaultEmail+"\")")
	fs.StringVar(&in.InstallDir, "install-dir", "", "Installation directory (default: $HOME/"+config.DefaultInstallDir+")")
	fs.StringVar(&in.AppImage, "app-image", "", "Prebuilt application image; empty builds from a source checkout")
	fs.IntVar(&in.AppPort, "app-port", config.DefaultAppPort, "Host port the application listens on")

	// Administrator and database
	fs.StringVar(&in.AdminUsername, "admin-username", "", "Administrator username (default \""+config.DefaultAdminUsername+"\")")
	fs.StringVar(&in.AdminPassword, "admin-password", "", "Administrator password (default \""+config.DefaultAdminPassword+"\")")
	fs.StringVar(&in.DBUser, "db-user", "", "Database user (default \""+config.DefaultDBUser+"\")")
	fs.StringVar(&in.DBPassword, "db-password", "", "Database password (default: generated, kept across runs)")
	fs.StringVar(&in.DBName, "db-name", "", "Database name (default \""+config.DefaultDBName+"\")")

	// Execution
	fs.IntVar(&in.TimeoutSeconds, "timeout", in.TimeoutSeconds, "Per-command timeout in seconds")
	fs.IntVar(&in.MaxRetries, "max-retries", in.MaxRetries, "Retries when the package manager lock is held")
	fs.IntVar(&in.RetryDelaySeconds, "retry-delay", in.RetryDelaySeconds, "Seconds between lock retries")
	fs.BoolVar(&in.NoSkipUpgrade, "no-skip-upgrade", false, "Upgrade system packages before installing")
	fs.BoolVar(&in.ForceContinue, "force-continue", false, "Continue past package steps whose lock never became free")
	fs.BoolVar(&in.NoSSL, "force-no-ssl", false, "Serve plain HTTP and skip the certificate")
	fs.BoolVar(&in.NonInteractive, "non-interactive", false, "Never prompt; use flags, saved answers and defaults")
	fs.BoolVar(&opts.SkipRootCheck, "skip-root-check", false, "Do not require root privileges")

	// Backups
	fs.StringVar(&in.EnableBackups, "enable-backups", "", "Set up encrypted off-site backups (yes|no)")
	fs.StringVar(&in.S3Provider, "s3-provider", "", "Object storage provider (aws|wasabi|b2|digitalocean|other)")
	fs.StringVar(&in.S3AccessKey, "s3-access-key", "", "Object storage access key")
	fs.StringVar(&in.S3SecretKey, "s3-secret-key", "", "Object storage secret key")
	fs.StringVar(&in.S3Region, "s3-region", "", "Object storage region (default \""+config.DefaultRegion+"\")")
	fs.StringVar(&in.S3Endpoint, "s3-endpoint", "", "Object storage endpoint, required for provider \"other\"")
	fs.StringVar(&in.S3Bucket, "s3-bucket-name", "", "Bucket receiving the backups")
	fs.StringVar(&in.BackupFrequency, "backup-frequency", "", "Backup frequency (daily|weekly|monthly)")

	// Output
	fs.StringVar(&opts.MetricsFile, "metrics-file", "", "Write step metrics in node exporter textfile format")
	fs.CountVarP(&opts.Verbose, "verbose", "v", "Increase log verbosity (repeatable)")
}
