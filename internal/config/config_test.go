package config

import (
	"context"
	"errors"
	"io/fs"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnvFile(string) ([]byte, error) { return nil, fs.ErrNotExist }

func fixedIP(ip string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return ip, nil }
}

func testOptions() BuildOptions {
	return BuildOptions{
		HomeDir:  "/root",
		PublicIP: fixedIP("203.0.113.7"),
		ReadFile: noEnvFile,
	}
}

func TestBuild_NonInteractiveDefaults(t *testing.T) {
	t.Parallel()
	in := NewInput()
	in.NonInteractive = true

	cfg, err := Build(context.Background(), in, testOptions())
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^horilla\.\d+\.\d+\.\d+\.\d+\.nip\.io$`), cfg.Domain)
	assert.Equal(t, "horilla.203.0.113.7.nip.io", cfg.Domain)
	assert.Equal(t, DefaultEmail, cfg.Email)
	assert.Equal(t, DefaultAdminUsername, cfg.AdminUsername)
	assert.Equal(t, DefaultAdminPassword, cfg.AdminPassword)
	assert.Equal(t, "/root/horilla", cfg.InstallDir)
	assert.Equal(t, DefaultDBUser, cfg.DBUser)
	assert.Equal(t, DefaultDBName, cfg.DBName)
	assert.NotEmpty(t, cfg.DBPassword)
	assert.GreaterOrEqual(t, len(cfg.SecretKey), 32)
	assert.Equal(t, 600*time.Second, cfg.Timeout)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.RetryDelay)
	assert.True(t, cfg.SkipUpgrade)
	assert.False(t, cfg.ForceContinue)
	assert.Nil(t, cfg.Backup)
	assert.True(t, cfg.WildcardDNS())
	assert.False(t, cfg.WantsTLS())
	assert.True(t, cfg.BuildFromSource())
}

func TestBuild_ExplicitValuesWin(t *testing.T) {
	t.Parallel()
	in := NewInput()
	in.Domain = "HR.Example.com "
	in.Email = "ops@example.com"
	in.InstallDir = "/opt/horilla/"
	in.NoSkipUpgrade = true
	in.TimeoutSeconds = 30
	in.MaxRetries = 0
	in.RetryDelaySeconds = 0

	opts := testOptions()
	opts.PublicIP = func(context.Context) (string, error) {
		t.Fatal("public IP must not be resolved when a domain is given")
		return "", nil
	}

	cfg, err := Build(context.Background(), in, opts)
	require.NoError(t, err)

	assert.Equal(t, "hr.example.com", cfg.Domain)
	assert.Equal(t, "/opt/horilla", cfg.InstallDir)
	assert.False(t, cfg.SkipUpgrade)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Zero(t, cfg.MaxRetries)
	assert.True(t, cfg.WantsTLS())
	assert.Equal(t, "/opt/horilla/docker-compose.yml", cfg.ComposePath())
	assert.Equal(t, "/opt/horilla/.env", cfg.EnvPath())
}

func TestBuild_ReusesSecretsFromExistingEnvFile(t *testing.T) {
	t.Parallel()
	opts := testOptions()
	opts.ReadFile = func(path string) ([]byte, error) {
		assert.Equal(t, "/root/horilla/.env", path)
		return []byte("# generated\nSECRET_KEY=abcdefghijklmnopqrstuvwxyz0123456789\nDB_PASSWORD=\"s3cret\"\n"), nil
	}

	first, err := Build(context.Background(), NewInput(), opts)
	require.NoError(t, err)
	second, err := Build(context.Background(), NewInput(), opts)
	require.NoError(t, err)

	assert.Equal(t, "abcdefghijklmnopqrstuvwxyz0123456789", first.SecretKey)
	assert.Equal(t, "s3cret", first.DBPassword)
	assert.Equal(t, first, second)
}

func TestBuild_ExplicitDBPasswordBeatsEnvFile(t *testing.T) {
	t.Parallel()
	opts := testOptions()
	opts.ReadFile = func(string) ([]byte, error) { return []byte("DB_PASSWORD=old\n"), nil }
	in := NewInput()
	in.DBPassword = "new"

	cfg, err := Build(context.Background(), in, opts)
	require.NoError(t, err)
	assert.Equal(t, "new", cfg.DBPassword)
}

func TestBuild_PublicIPFailure(t *testing.T) {
	t.Parallel()
	opts := testOptions()
	opts.PublicIP = func(context.Context) (string, error) { return "", errors.New("offline") }

	_, err := Build(context.Background(), NewInput(), opts)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "--domain is required")
	assert.Contains(t, err.Error(), "offline")
}

func TestBuild_Backups(t *testing.T) {
	t.Parallel()
	in := NewInput()
	in.Domain = "hr.example.com"
	in.EnableBackups = "yes"
	in.S3AccessKey = "AKIA"
	in.S3SecretKey = "secret"
	in.S3Region = "Tokyo"
	in.S3Bucket = "horilla-backups"

	cfg, err := Build(context.Background(), in, testOptions())
	require.NoError(t, err)
	require.NotNil(t, cfg.Backup)

	assert.Equal(t, ProviderAWS, cfg.Backup.Provider)
	assert.Equal(t, "ap-northeast-1", cfg.Backup.Region)
	assert.Equal(t, FrequencyDaily, cfg.Backup.Frequency)
	assert.Equal(t, "/root/horilla-backup/backup.sh", cfg.BackupScriptPath())
}

func TestBuild_EnableBackupsMustBeYesOrNo(t *testing.T) {
	t.Parallel()
	for _, value := range []string{"true", "y", "1", "maybe"} {
		t.Run(value, func(t *testing.T) {
			t.Parallel()
			in := NewInput()
			in.NonInteractive = true
			in.Domain = "hr.example.com"
			in.EnableBackups = value
			in.S3AccessKey = "AKIA"
			in.S3SecretKey = "secret"
			in.S3Bucket = "horilla-backups"

			cfg, err := Build(context.Background(), in, testOptions())

			assert.Nil(t, cfg)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, []string{"--enable-backups: must be one of yes, no"}, verr.Problems)
		})
	}

	for _, value := range []string{"YES", " No ", ""} {
		in := NewInput()
		in.Domain = "hr.example.com"
		in.EnableBackups = value
		in.S3AccessKey = "AKIA"
		in.S3SecretKey = "secret"
		in.S3Bucket = "horilla-backups"

		cfg, err := Build(context.Background(), in, testOptions())
		require.NoError(t, err, value)
		assert.Equal(t, value == "YES", cfg.Backup != nil, value)
	}
}

func TestBuild_BackupsMissingCredentials(t *testing.T) {
	t.Parallel()
	in := NewInput()
	in.Domain = "hr.example.com"
	in.EnableBackups = "yes"
	in.S3Provider = "other"

	_, err := Build(context.Background(), in, testOptions())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Problems, "--s3-access-key is required")
	assert.Contains(t, verr.Problems, "--s3-secret-key is required")
	assert.Contains(t, verr.Problems, "--s3-bucket-name is required")
	assert.Contains(t, verr.Problems, "--s3-endpoint is required")
}

func TestBuild_EndpointGetsScheme(t *testing.T) {
	t.Parallel()
	in := NewInput()
	in.Domain = "hr.example.com"
	in.EnableBackups = "yes"
	in.S3Provider = "other"
	in.S3Endpoint = "minio.internal:9000"
	in.S3AccessKey = "key"
	in.S3SecretKey = "secret"
	in.S3Bucket = "backups"
	in.S3Region = "eu-home-1"

	cfg, err := Build(context.Background(), in, testOptions())
	require.NoError(t, err)
	assert.Equal(t, "https://minio.internal:9000", cfg.Backup.Endpoint)
	assert.Equal(t, "eu-home-1", cfg.Backup.Region)
	assert.Equal(t, "https://minio.internal:9000", S3Endpoint(cfg.Backup))
}

func TestInput_ApplyAnswers(t *testing.T) {
	t.Parallel()
	in := NewInput()
	in.Domain = "flag.example.com"
	in.ApplyAnswers(&Answers{
		Domain:        "saved.example.com",
		Email:         "saved@example.com",
		EnableBackups: "yes",
		S3Bucket:      "saved-bucket",
	})

	assert.Equal(t, "flag.example.com", in.Domain)
	assert.Equal(t, "saved@example.com", in.Email)
	assert.True(t, in.BackupsRequested())
	assert.Equal(t, "saved-bucket", in.S3Bucket)

	in.ApplyAnswers(nil)
	assert.Equal(t, "flag.example.com", in.Domain)
}
