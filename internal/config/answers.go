package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Answers are the operator's previous responses. They pre-fill the next run
// so a re-run after a partial failure needs no retyping.
type Answers struct {
	Domain          string `yaml:"domain,omitempty"`
	Email           string `yaml:"email,omitempty"`
	AdminUsername   string `yaml:"admin_username,omitempty"`
	AdminPassword   string `yaml:"admin_password,omitempty"`
	InstallDir      string `yaml:"install_dir,omitempty"`
	DBUser          string `yaml:"db_user,omitempty"`
	DBName          string `yaml:"db_name,omitempty"`
	EnableBackups   string `yaml:"enable_backups,omitempty"`
	S3Provider      string `yaml:"s3_provider,omitempty"`
	S3AccessKey     string `yaml:"s3_access_key,omitempty"`
	S3SecretKey     string `yaml:"s3_secret_key,omitempty"`
	S3Region        string `yaml:"s3_region,omitempty"`
	S3Endpoint      string `yaml:"s3_endpoint,omitempty"`
	S3Bucket        string `yaml:"s3_bucket_name,omitempty"`
	BackupFrequency string `yaml:"backup_frequency,omitempty"`
}

// AnswersPath returns the saved answers location under home.
func AnswersPath(home string) string {
	return filepath.Join(home, ".config", "horilla-installer", "answers.yaml")
}

// LoadAnswers reads saved answers. A missing file yields empty answers.
func LoadAnswers(path string) (*Answers, error) {
	// #nosec G304 -- path is derived from the operator's home directory
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Answers{}, nil
		}
		return nil, fmt.Errorf("failed to read saved answers: %w", err)
	}

	var a Answers
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse saved answers %s: %w", path, err)
	}
	return &a, nil
}

// SaveAnswers writes answers with owner-only permissions; they contain
// credentials.
func SaveAnswers(path string, a *Answers) error {
	data, err := yaml.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write saved answers: %w", err)
	}
	return nil
}

// AnswersFrom captures the values of a built configuration.
func AnswersFrom(cfg *Config) *Answers {
	a := &Answers{
		Domain:        cfg.Domain,
		Email:         cfg.Email,
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
		InstallDir:    cfg.InstallDir,
		DBUser:        cfg.DBUser,
		DBName:        cfg.DBName,
		EnableBackups: "no",
	}
	if b := cfg.Backup; b != nil {
		a.EnableBackups = "yes"
		a.S3Provider = b.Provider
		a.S3AccessKey = b.AccessKey
		a.S3SecretKey = b.SecretKey
		a.S3Region = b.Region
		a.S3Endpoint = b.Endpoint
		a.S3Bucket = b.Bucket
		a.BackupFrequency = b.Frequency
	}
	return a
}

// LogPath returns where interactive runs write their detailed log.
func LogPath(home string) string {
	return filepath.Join(home, ".config", "horilla-installer", "install.log")
}
