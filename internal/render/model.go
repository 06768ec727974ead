package render

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"text/template"

	"github.com/horilla-opensource/horilla-installer/internal/config"
)

// Host paths shared by the proxy site and the certificate step.
const (
	ACMEWebroot    = "/var/www/certbot"
	LetsEncryptDir = "/etc/letsencrypt/live"

	// RcloneRemote is the name of the remote the backup script syncs to.
	RcloneRemote = "horilla-backup"

	// Retention applied by borg prune.
	KeepDaily   = 7
	KeepWeekly  = 4
	KeepMonthly = 6
)

var funcs = template.FuncMap{
	"quote":   composeQuote,
	"shquote": shellQuote,
	"env":     envValue,
}

// CertificatePath returns the certificate chain for domain.
func CertificatePath(domain string) string {
	return LetsEncryptDir + "/" + domain + "/fullchain.pem"
}

// CertificateKeyPath returns the private key for domain.
func CertificateKeyPath(domain string) string {
	return LetsEncryptDir + "/" + domain + "/privkey.pem"
}

// DatabaseURL is the connection string the application container uses.
func DatabaseURL(cfg *config.Config) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.DBUser, cfg.DBPassword),
		Host:   "db:5432",
		Path:   "/" + cfg.DBName,
	}
	return u.String()
}

// AllowedHosts is the host allow-list handed to the application.
func AllowedHosts(cfg *config.Config) string {
	return cfg.Domain + ",localhost,127.0.0.1"
}

// TrustedOrigins is the CSRF origin allow-list handed to the application.
func TrustedOrigins(cfg *config.Config) string {
	return "https://" + cfg.Domain + ",http://" + cfg.Domain
}

// RemotePath is the rclone destination of the backup repository.
func RemotePath(b *config.BackupConfig) string {
	return RcloneRemote + ":" + b.Bucket + "/horilla"
}

type field struct {
	name  string
	value string
}

func requireFields(kind Kind, fields ...field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &MissingFieldError{Kind: kind, Field: f.name}
		}
	}
	return nil
}

func model(kind Kind, cfg *config.Config) (map[string]any, error) {
	if cfg == nil {
		return nil, &MissingFieldError{Kind: kind, Field: "config"}
	}

	switch kind {
	case KindComposeManifest:
		if err := requireFields(kind,
			field{"domain", cfg.Domain},
			field{"db-user", cfg.DBUser},
			field{"db-password", cfg.DBPassword},
			field{"db-name", cfg.DBName},
			field{"db-image", cfg.DBImage},
			field{"app-port", portString(cfg.AppPort)},
		); err != nil {
			return nil, err
		}
		return map[string]any{
			"DBImage":        cfg.DBImage,
			"DBUser":         cfg.DBUser,
			"DBPassword":     cfg.DBPassword,
			"DBName":         cfg.DBName,
			"AppImage":       cfg.AppImage,
			"AppPort":        cfg.AppPort,
			"DatabaseURL":    DatabaseURL(cfg),
			"AllowedHosts":   AllowedHosts(cfg),
			"TrustedOrigins": TrustedOrigins(cfg),
		}, nil

	case KindEnvFile:
		if err := requireFields(kind,
			field{"secret-key", cfg.SecretKey},
			field{"domain", cfg.Domain},
			field{"db-user", cfg.DBUser},
			field{"db-password", cfg.DBPassword},
			field{"db-name", cfg.DBName},
		); err != nil {
			return nil, err
		}
		return map[string]any{
			"SecretKey":      cfg.SecretKey,
			"AllowedHosts":   AllowedHosts(cfg),
			"TrustedOrigins": TrustedOrigins(cfg),
			"DBUser":         cfg.DBUser,
			"DBPassword":     cfg.DBPassword,
			"DBName":         cfg.DBName,
			"DatabaseURL":    DatabaseURL(cfg),
		}, nil

	case KindDockerfile:
		return map[string]any{}, nil

	case KindProxySite, KindProxySiteTLS:
		if err := requireFields(kind,
			field{"domain", cfg.Domain},
			field{"app-port", portString(cfg.AppPort)},
		); err != nil {
			return nil, err
		}
		return map[string]any{
			"Domain":      cfg.Domain,
			"AppPort":     cfg.AppPort,
			"ACMEWebroot": ACMEWebroot,
			"Certificate": CertificatePath(cfg.Domain),
			"Key":         CertificateKeyPath(cfg.Domain),
		}, nil

	case KindBackupScript:
		if cfg.Backup == nil {
			return nil, &MissingFieldError{Kind: kind, Field: "backup"}
		}
		if err := requireFields(kind,
			field{"install-dir", cfg.InstallDir},
			field{"home", cfg.HomeDir},
			field{"db-user", cfg.DBUser},
			field{"db-name", cfg.DBName},
			field{"s3-bucket-name", cfg.Backup.Bucket},
		); err != nil {
			return nil, err
		}
		return map[string]any{
			"InstallDir":   cfg.InstallDir,
			"DumpDir":      cfg.DumpDir(),
			"BorgRepo":     cfg.BorgRepoPath(),
			"Passphrase":   cfg.PassphrasePath(),
			"RcloneConfig": cfg.RcloneConfigPath(),
			"Remote":       RemotePath(cfg.Backup),
			"DBUser":       cfg.DBUser,
			"DBName":       cfg.DBName,
			"KeepDaily":    KeepDaily,
			"KeepWeekly":   KeepWeekly,
			"KeepMonthly":  KeepMonthly,
		}, nil

	case KindRcloneConfig:
		if cfg.Backup == nil {
			return nil, &MissingFieldError{Kind: kind, Field: "backup"}
		}
		b := cfg.Backup
		if err := requireFields(kind,
			field{"s3-provider", b.Provider},
			field{"s3-access-key", b.AccessKey},
			field{"s3-secret-key", b.SecretKey},
		); err != nil {
			return nil, err
		}
		backend, provider := config.RcloneProvider(b.Provider)
		return map[string]any{
			"Remote":    RcloneRemote,
			"Backend":   backend,
			"Provider":  provider,
			"AccessKey": b.AccessKey,
			"SecretKey": b.SecretKey,
			"Region":    b.Region,
			"Endpoint":  config.S3Endpoint(b),
		}, nil
	}

	return nil, fmt.Errorf("unknown artifact kind %q", kind)
}

func portString(port int) string {
	if port <= 0 {
		return ""
	}
	return strconv.Itoa(port)
}

// composeQuote renders s as a double-quoted YAML scalar with compose
// interpolation disabled.
func composeQuote(s string) string {
	return strconv.Quote(strings.ReplaceAll(s, "$", "$$"))
}

// shellQuote renders s as a single-quoted POSIX shell word.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// envValue renders s for a compose env_file. Plain values stay bare; others
// are single-quoted, which compose reads literally.
func envValue(s string) string {
	for _, r := range s {
		if !isPlainEnvRune(r) {
			return "'" + s + "'"
		}
	}
	return s
}

func isPlainEnvRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("_-.,:/@+=", r)
}
