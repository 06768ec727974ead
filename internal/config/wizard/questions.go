package wizard

import (
	"context"
	"net/mail"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/horilla-opensource/horilla-installer/internal/config"
)

var (
	domainRegex = regexp.MustCompile(`^(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)
	bucketRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)
)

// runSiteGroup prompts for the public name and certificate contact.
func runSiteGroup(ctx context.Context, in *config.Input) error {
	port := newPortField(&in.AppPort)
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Domain").
				Description("Public name of the site. Leave empty to use <public-ip>.nip.io without TLS.").
				Placeholder("hr.example.com").
				Value(&in.Domain).
				Validate(validateDomain),
			huh.NewInput().
				Title("Email").
				Description("Contact address for the TLS certificate").
				Placeholder(config.DefaultEmail).
				Value(&in.Email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Install Directory").
				Description("Where the compose project is rendered").
				Placeholder("~/" + config.DefaultInstallDir).
				Value(&in.InstallDir).
				Validate(validateOptionalPath),
			huh.NewInput().
				Title("Application Port").
				Description("Loopback port nginx proxies to").
				Placeholder(strconv.Itoa(config.DefaultAppPort)).
				Value(&port.text).
				Validate(validatePort),
		).Title("Site"),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}
	port.apply()
	return nil
}

// runAdminGroup prompts for the bootstrap administrator.
func runAdminGroup(ctx context.Context, in *config.Input) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Admin Username").
				Placeholder(config.DefaultAdminUsername).
				Value(&in.AdminUsername),
			huh.NewInput().
				Title("Admin Password").
				Description("Leave empty for the default; change it after the first login").
				EchoMode(huh.EchoModePassword).
				Value(&in.AdminPassword),
		).Title("Administrator"),
	).RunWithContext(ctx)
}

// runDatabaseGroup prompts for the database identity. An empty password
// keeps the existing one or generates a new one.
func runDatabaseGroup(ctx context.Context, in *config.Input) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Database User").
				Placeholder(config.DefaultDBUser).
				Value(&in.DBUser).
				Validate(validateIdentifier),
			huh.NewInput().
				Title("Database Name").
				Placeholder(config.DefaultDBName).
				Value(&in.DBName).
				Validate(validateIdentifier),
			huh.NewInput().
				Title("Database Password").
				Description("Leave empty to keep the current one or generate one").
				EchoMode(huh.EchoModePassword).
				Value(&in.DBPassword),
		).Title("Database"),
	).RunWithContext(ctx)
}

// runBackupToggle asks whether to install the backup pipeline.
func runBackupToggle(ctx context.Context, enable *bool) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enable automated backups?").
				Description("Encrypted borg archives synced to S3-compatible storage with rclone").
				Value(enable),
		).Title("Backups"),
	).RunWithContext(ctx)
}

// runBackupProviderGroup prompts for the storage provider and schedule.
func runBackupProviderGroup(ctx context.Context, in *config.Input) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Storage Provider").
				Options(ProvidersToOptions()...).
				Value(&in.S3Provider),
			huh.NewSelect[string]().
				Title("Backup Frequency").
				Options(FrequencyOptions...).
				Value(&in.BackupFrequency),
		).Title("Backup Storage"),
	).RunWithContext(ctx)
}

// runBackupDetailsGroup prompts for credentials and the bucket. The
// endpoint is only asked for providers without a known one.
func runBackupDetailsGroup(ctx context.Context, in *config.Input) error {
	fields := []huh.Field{
		huh.NewInput().
			Title("Access Key").
			Value(&in.S3AccessKey).
			Validate(validateRequired),
		huh.NewInput().
			Title("Secret Key").
			EchoMode(huh.EchoModePassword).
			Value(&in.S3SecretKey).
			Validate(validateRequired),
		huh.NewInput().
			Title("Region").
			Description(regionDescription(in.S3Provider)).
			Placeholder(config.DefaultRegion).
			Value(&in.S3Region),
	}
	if in.S3Provider == config.ProviderOther {
		fields = append(fields, huh.NewInput().
			Title("Endpoint").
			Placeholder("https://minio.example.com").
			Value(&in.S3Endpoint).
			Validate(validateEndpoint))
	}
	fields = append(fields, huh.NewInput().
		Title("Bucket Name").
		Placeholder("horilla-backups").
		Value(&in.S3Bucket).
		Validate(validateBucket))

	return huh.NewForm(huh.NewGroup(fields...).Title("Backup Credentials")).RunWithContext(ctx)
}

// validateDomain accepts an empty value; Build derives one.
func validateDomain(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	if len(s) > 253 || !domainRegex.MatchString(s) {
		return errDomainInvalid
	}
	return nil
}

func validateEmail(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return errEmailInvalid
	}
	return nil
}

func validateOptionalPath(s string) error {
	if s != "" && !filepath.IsAbs(s) {
		return errPathNotAbsolute
	}
	return nil
}

func validatePort(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > 65535 {
		return errPortInvalid
	}
	return nil
}

func validateIdentifier(s string) error {
	if strings.ContainsAny(s, ":@/ ") {
		return errIdentifierSpaces
	}
	return nil
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return errRequired
	}
	return nil
}

func validateBucket(s string) error {
	if !bucketRegex.MatchString(strings.TrimSpace(s)) {
		return errBucketInvalid
	}
	return nil
}

// validateEndpoint accepts a bare host name or an absolute URL.
func validateEndpoint(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errRequired
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return errEndpointInvalid
	}
	return nil
}
