package config

import (
	"bufio"
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Input stages raw settings before defaults and validation. Zero values mean
// "not supplied".
type Input struct {
	Domain        string
	Email         string
	AdminUsername string
	AdminPassword string
	InstallDir    string
	DBUser        string
	DBPassword    string
	DBName        string
	AppImage      string
	AppPort       int

	TimeoutSeconds    int
	MaxRetries        int
	RetryDelaySeconds int
	ForceContinue     bool
	NoSkipUpgrade     bool
	NoSSL             bool
	NonInteractive    bool

	EnableBackups   string // "yes", "no" or empty
	S3Provider      string
	S3AccessKey     string
	S3SecretKey     string
	S3Region        string
	S3Endpoint      string
	S3Bucket        string
	BackupFrequency string
}

// NewInput returns an Input carrying the numeric defaults.
func NewInput() Input {
	return Input{
		TimeoutSeconds:    int(DefaultTimeout / time.Second),
		MaxRetries:        DefaultMaxRetries,
		RetryDelaySeconds: int(DefaultRetryDelay / time.Second),
	}
}

// BackupsRequested reports whether backups were switched on.
func (in *Input) BackupsRequested() bool {
	return strings.EqualFold(strings.TrimSpace(in.EnableBackups), "yes")
}

// ApplyAnswers fills fields that were not supplied from saved answers.
func (in *Input) ApplyAnswers(a *Answers) {
	if a == nil {
		return
	}
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&in.Domain, a.Domain)
	fill(&in.Email, a.Email)
	fill(&in.AdminUsername, a.AdminUsername)
	fill(&in.AdminPassword, a.AdminPassword)
	fill(&in.InstallDir, a.InstallDir)
	fill(&in.DBUser, a.DBUser)
	fill(&in.DBName, a.DBName)
	fill(&in.EnableBackups, a.EnableBackups)
	fill(&in.S3Provider, a.S3Provider)
	fill(&in.S3AccessKey, a.S3AccessKey)
	fill(&in.S3SecretKey, a.S3SecretKey)
	fill(&in.S3Region, a.S3Region)
	fill(&in.S3Endpoint, a.S3Endpoint)
	fill(&in.S3Bucket, a.S3Bucket)
	fill(&in.BackupFrequency, a.BackupFrequency)
}

// BuildOptions supplies the host facts Build depends on.
type BuildOptions struct {
	// HomeDir is the operator's home directory.
	HomeDir string

	// PublicIP resolves the host's public IPv4 address. It is only called
	// when no domain was supplied.
	PublicIP func(ctx context.Context) (string, error)

	// ReadFile reads an existing environment file so secrets survive re-runs.
	// Defaults to os.ReadFile.
	ReadFile func(path string) ([]byte, error)
}

// Build applies defaults, derives host-dependent values and validates.
func Build(ctx context.Context, in Input, opts BuildOptions) (*Config, error) {
	readFile := opts.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}

	switch strings.ToLower(strings.TrimSpace(in.EnableBackups)) {
	case "", "yes", "no":
	default:
		return nil, &ValidationError{Problems: []string{"--enable-backups: must be one of yes, no"}}
	}

	cfg := &Config{
		Domain:         strings.ToLower(strings.TrimSpace(in.Domain)),
		Email:          strings.TrimSpace(in.Email),
		AdminUsername:  strings.TrimSpace(in.AdminUsername),
		AdminPassword:  in.AdminPassword,
		InstallDir:     in.InstallDir,
		HomeDir:        opts.HomeDir,
		DBUser:         in.DBUser,
		DBPassword:     in.DBPassword,
		DBName:         in.DBName,
		DBImage:        DefaultDBImage,
		AppImage:       strings.TrimSpace(in.AppImage),
		AppPort:        in.AppPort,
		Timeout:        time.Duration(in.TimeoutSeconds) * time.Second,
		MaxRetries:     in.MaxRetries,
		RetryDelay:     time.Duration(in.RetryDelaySeconds) * time.Second,
		ForceContinue:  in.ForceContinue,
		SkipUpgrade:    !in.NoSkipUpgrade,
		NoSSL:          in.NoSSL,
		NonInteractive: in.NonInteractive,
	}

	orDefault(&cfg.Email, DefaultEmail)
	orDefault(&cfg.AdminUsername, DefaultAdminUsername)
	orDefault(&cfg.AdminPassword, DefaultAdminPassword)
	orDefault(&cfg.DBUser, DefaultDBUser)
	orDefault(&cfg.DBName, DefaultDBName)
	if cfg.AppPort == 0 {
		cfg.AppPort = DefaultAppPort
	}
	if cfg.InstallDir == "" && cfg.HomeDir != "" {
		cfg.InstallDir = filepath.Join(cfg.HomeDir, DefaultInstallDir)
	}
	if cfg.InstallDir != "" {
		cfg.InstallDir = filepath.Clean(cfg.InstallDir)
	}

	if cfg.Domain == "" {
		domain, err := derivedDomain(ctx, opts.PublicIP)
		if err != nil {
			return nil, &ValidationError{Problems: []string{"--domain is required: " + err.Error()}}
		}
		cfg.Domain = domain
	}

	existing := readEnvFile(readFile, filepath.Join(cfg.InstallDir, ".env"))
	if cfg.SecretKey = existing["SECRET_KEY"]; cfg.SecretKey == "" {
		cfg.SecretKey = rand.Text() + rand.Text()
	}
	if cfg.DBPassword == "" {
		if cfg.DBPassword = existing["DB_PASSWORD"]; cfg.DBPassword == "" {
			cfg.DBPassword = rand.Text()
		}
	}

	if in.BackupsRequested() {
		cfg.Backup = buildBackup(in)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DomainForIP returns the wildcard DNS name that resolves to ip.
func DomainForIP(ip string) string {
	return "horilla." + ip + WildcardDNSSuffix
}

func derivedDomain(ctx context.Context, publicIP func(context.Context) (string, error)) (string, error) {
	if publicIP == nil {
		return "", errors.New("no public address resolver")
	}
	ip, err := publicIP(ctx)
	if err != nil {
		return "", fmt.Errorf("could not determine public IP: %w", err)
	}
	return DomainForIP(ip), nil
}

func buildBackup(in Input) *BackupConfig {
	b := &BackupConfig{
		Provider:  strings.ToLower(strings.TrimSpace(in.S3Provider)),
		AccessKey: strings.TrimSpace(in.S3AccessKey),
		SecretKey: strings.TrimSpace(in.S3SecretKey),
		Region:    strings.ToLower(strings.TrimSpace(in.S3Region)),
		Endpoint:  strings.TrimSpace(in.S3Endpoint),
		Bucket:    strings.TrimSpace(in.S3Bucket),
		Frequency: strings.ToLower(strings.TrimSpace(in.BackupFrequency)),
	}
	orDefault(&b.Provider, ProviderAWS)
	orDefault(&b.Frequency, DefaultFrequency)
	if b.Provider == ProviderAWS {
		b.Region, _ = NormalizeRegion(in.S3Region)
	}
	orDefault(&b.Region, DefaultRegion)
	if b.Endpoint != "" && !strings.Contains(b.Endpoint, "://") {
		b.Endpoint = "https://" + b.Endpoint
	}
	return b
}

// readEnvFile parses KEY=VALUE lines. Unreadable files yield an empty map.
func readEnvFile(readFile func(string) ([]byte, error), path string) map[string]string {
	values := make(map[string]string)
	data, err := readFile(path)
	if err != nil {
		return values
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"'`)
	}
	return values
}

func orDefault(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}
