package provisioning

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horilla-opensource/horilla-installer/internal/config"
	"github.com/horilla-opensource/horilla-installer/internal/platform/osrelease"
	"github.com/horilla-opensource/horilla-installer/internal/render"
	testutil "github.com/horilla-opensource/horilla-installer/internal/testing"
)

const ubuntuRelease = `PRETTY_NAME="Ubuntu 24.04.1 LTS"
NAME="Ubuntu"
VERSION_ID="24.04"
ID=ubuntu
ID_LIKE=debian
`

func preflightContext(t *testing.T, cfg *config.Config) (*Context, *MockObserver) {
	t.Helper()
	ctx, observer := newTestContext(t, cfg)
	ctx.Host.FS.(*testutil.MemFS).Set(osrelease.Path, []byte(ubuntuRelease))
	return ctx, observer
}

func TestPreflight_OK(t *testing.T) {
	t.Parallel()
	ctx, observer := preflightContext(t, testutil.NewConfigBuilder().WithBackup(config.ProviderWasabi, config.FrequencyDaily).Build())

	require.NoError(t, Preflight(ctx))
	assert.Empty(t, observer.EventsOf(EventPreflightIssue))
	assert.Zero(t, ctx.Host.FS.(*testutil.MemFS).Writes())
}

func TestPreflight_NotRoot(t *testing.T) {
	t.Parallel()
	ctx, _ := preflightContext(t, testutil.NewConfigBuilder().Build())
	ctx.Privileged = func() bool { return false }

	err := Preflight(ctx)

	var pre *PreconditionError
	require.ErrorAs(t, err, &pre)
	assert.Contains(t, pre.Problems[0], "must run as root")
	assert.Equal(t, ErrorPrecondition, Classify(err))
}

func TestPreflight_MissingTools(t *testing.T) {
	t.Parallel()
	ctx, _ := preflightContext(t, testutil.NewConfigBuilder().WithBackup(config.ProviderAWS, config.FrequencyWeekly).Build())
	ctx.LookPath = func(file string) (string, error) {
		if file == "crontab" {
			return "", errors.New("not found")
		}
		return "/usr/bin/" + file, nil
	}

	err := Preflight(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "crontab (package cron)")
}

func TestPreflight_UnsupportedDistroWarns(t *testing.T) {
	t.Parallel()
	ctx, observer := newTestContext(t, testutil.NewConfigBuilder().Build())
	ctx.Host.FS.(*testutil.MemFS).Set(osrelease.Path, []byte("ID=fedora\nID_LIKE=\"rhel centos\"\n"))

	require.NoError(t, Preflight(ctx))
	warnings := observer.EventsOf(EventPreflightIssue)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, `"fedora"`)
}

func TestPreflight_DebianDerivative(t *testing.T) {
	t.Parallel()
	ctx, observer := newTestContext(t, testutil.NewConfigBuilder().Build())
	ctx.Host.FS.(*testutil.MemFS).Set(osrelease.Path, []byte("ID=linuxmint\nID_LIKE=\"ubuntu debian\"\n"))

	require.NoError(t, Preflight(ctx))
	assert.Empty(t, observer.EventsOf(EventPreflightIssue))
}

func TestPreflight_TemplateErrorBeforeMutation(t *testing.T) {
	t.Parallel()
	cfg := testutil.NewConfigBuilder().Build()
	cfg.DBPassword = ""
	ctx, _ := preflightContext(t, cfg)

	err := Preflight(ctx)

	require.ErrorIs(t, err, render.ErrMissingField)
	assert.Equal(t, ErrorTemplate, Classify(err))
	assert.Empty(t, ctx.Host.Runner.(*testutil.FakeRunner).Calls())
}
