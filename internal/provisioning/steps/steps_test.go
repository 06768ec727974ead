package steps

import (
	"slices"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/horilla-opensource/horilla-installer/internal/config"
	"github.com/horilla-opensource/horilla-installer/internal/platform/docker"
	"github.com/horilla-opensource/horilla-installer/internal/provisioning"
	testutil "github.com/horilla-opensource/horilla-installer/internal/testing"
)

func TestCertificate_Skip(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		cfg    *config.Config
		skip   bool
		reason string
	}{
		{"domain", testutil.NewConfigBuilder().Build(), false, ""},
		{"no ssl", testutil.NewConfigBuilder().WithNoSSL().Build(), true, "--force-no-ssl"},
		{"nip.io", testutil.NewConfigBuilder().WithDomain("198.51.100.4.nip.io").Build(), true, "wildcard DNS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := newSimHost(t).context(tt.cfg)
			reason, skip := (&Certificate{}).Skip(ctx)
			assert.Equal(t, tt.skip, skip)
			if tt.skip {
				assert.Contains(t, reason, tt.reason)
			}
		})
	}
}

func TestBackupSteps_SkipWithoutBackups(t *testing.T) {
	t.Parallel()
	ctx := newSimHost(t).context(testutil.NewConfigBuilder().Build())
	for _, step := range Default() {
		skipper, ok := step.(provisioning.Skipper)
		if !ok {
			continue
		}
		switch step.ID() {
		case IDBackupPackages, IDBackupRemote, IDBackupScript, IDBackupSchedule:
			_, skip := skipper.Skip(ctx)
			assert.True(t, skip, step.ID())
		}
	}
}

func TestBackupRemote_AuthErrorIsNotRetried(t *testing.T) {
	t.Parallel()
	buckets := &testutil.MockBuckets{}
	buckets.On("CreateBucket", mock.Anything, "horilla-backups").
		Return(&smithy.GenericAPIError{Code: "AccessDenied", Message: "Access Denied"})

	cfg := testutil.NewConfigBuilder().WithBackup(config.ProviderAWS, config.FrequencyDaily).Build()
	ctx := newSimHost(t).context(cfg)
	ctx.Buckets = buckets

	err := (&BackupRemote{}).Apply(ctx)

	require.ErrorContains(t, err, "rejected the backup credentials")
	buckets.AssertNumberOfCalls(t, "CreateBucket", 1)
}

func TestBackupRemote_ExistingBucketIsSatisfied(t *testing.T) {
	t.Parallel()
	cfg := testutil.NewConfigBuilder().WithBackup(config.ProviderWasabi, config.FrequencyWeekly).Build()
	ctx := newSimHost(t).context(cfg)
	buckets := testutil.NewMockBuckets()
	ctx.Buckets = buckets

	ok, err := (&BackupRemote{}).Check(ctx)

	require.NoError(t, err)
	assert.True(t, ok)
	buckets.AssertNotCalled(t, "CreateBucket", mock.Anything, mock.Anything)
}

func TestBackupScript_KeepsPassphrase(t *testing.T) {
	t.Parallel()
	sim := newSimHost(t)
	cfg := testutil.NewConfigBuilder().WithBackup(config.ProviderWasabi, config.FrequencyDaily).Build()
	sim.fs.Set(cfg.PassphrasePath(), []byte("existing-passphrase"))

	_, err := sim.run(cfg)
	require.NoError(t, err)

	got, _ := sim.fs.Content(cfg.PassphrasePath())
	assert.Equal(t, "existing-passphrase", got)
	inits := commandsWith(sim.Mutations(), "borg init")
	require.Len(t, inits, 1)
	assert.Contains(t, inits[0], cfg.BorgRepoPath())
}

func TestAdminAccount_SecretsStayOutOfArgv(t *testing.T) {
	t.Parallel()
	sim := newSimHost(t)
	cfg := testutil.NewConfigBuilder().Build()

	_, err := sim.run(cfg)
	require.NoError(t, err)

	var found bool
	for _, cmd := range sim.runner.Commands() {
		line := cmd.String()
		assert.NotContains(t, line, cfg.AdminPassword, line)
		assert.NotContains(t, line, cfg.DBPassword, line)
		if !slices.Contains(cmd.Args, "createsuperuser") {
			continue
		}
		found = true
		assert.Contains(t, line, "-e DJANGO_SUPERUSER_PASSWORD")
		assert.Contains(t, cmd.Env, "DJANGO_SUPERUSER_PASSWORD="+cfg.AdminPassword)
	}
	assert.True(t, found, "createsuperuser was not run")
}

func TestServices_RestartsAfterManifestChange(t *testing.T) {
	t.Parallel()
	sim := newSimHost(t)
	cfg := testutil.NewConfigBuilder().Build()

	_, err := sim.run(cfg)
	require.NoError(t, err)
	sim.Mutations()

	cfg.AppPort = 8100
	state, err := sim.run(cfg)

	require.NoError(t, err)
	assert.Equal(t, provisioning.StepSucceeded, state.Record(IDComposeManifest).Status)
	assert.Equal(t, provisioning.StepSucceeded, state.Record(IDServices).Status)
	assert.Len(t, commandsWith(sim.Mutations(), " up -d"), 1)
}

func TestContainerEngine_StagesRepositoryKey(t *testing.T) {
	t.Parallel()
	sim := newSimHost(t)
	cfg := testutil.NewConfigBuilder().Build()

	_, err := sim.run(cfg)
	require.NoError(t, err)

	mutations := sim.Mutations()
	fetch := commandsWith(mutations, "curl ")
	require.Len(t, fetch, 1)
	assert.Contains(t, fetch[0], "-o "+scratchDir+"/docker.asc")
	assert.NotContains(t, fetch[0], docker.KeyringPath)
	assert.Contains(t, mutations, "install -m 0644 "+scratchDir+"/docker.asc "+docker.KeyringPath)

	key, ok := sim.fs.Content(docker.KeyringPath)
	require.True(t, ok)
	assert.Contains(t, key, "PGP PUBLIC KEY")
}

func TestContainerEngine_RequiresScratchDir(t *testing.T) {
	t.Parallel()
	sim := newSimHost(t)
	ctx := sim.context(testutil.NewConfigBuilder().Build())
	ctx.TempDir = ""

	err := (&ContainerEngine{}).Apply(ctx)
	assert.ErrorContains(t, err, "no scratch directory")
	assert.Empty(t, commandsWith(sim.Mutations(), "curl "))
}
