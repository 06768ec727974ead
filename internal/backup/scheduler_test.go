package backup

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horilla-opensource/horilla-installer/internal/config"
	"github.com/horilla-opensource/horilla-installer/internal/platform/host"
	testutil "github.com/horilla-opensource/horilla-installer/internal/testing"
)

const (
	script = "/root/horilla-backup/backup.sh"
	logf   = "/root/horilla-backup/backup.log"
)

func TestSchedule(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		config.FrequencyDaily:   "0 2 * * *",
		config.FrequencyWeekly:  "0 2 * * 0",
		config.FrequencyMonthly: "0 2 1 * *",
	}
	for freq, want := range tests {
		got, err := Schedule(freq)
		require.NoError(t, err)
		assert.Equal(t, want, got, freq)
	}

	_, err := Schedule("hourly")
	assert.ErrorContains(t, err, `unknown backup frequency "hourly"`)
}

func TestInstall_EmptyCrontab(t *testing.T) {
	t.Parallel()
	runner := testutil.NewFakeRunner().
		On("crontab -l", testutil.Fail(1, "no crontab for root"))
	s := NewScheduler(runner, time.Second)

	require.NoError(t, s.Install(testutil.TestContext(t), config.FrequencyDaily, script, logf))

	cmds := runner.Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, "crontab -", cmds[1].String())
	assert.Equal(t, "0 2 * * * "+script+" >> "+logf+" 2>&1\n", string(cmds[1].Stdin))
}

func TestInstall_ReplacesOtherScheduleAndKeepsForeignLines(t *testing.T) {
	t.Parallel()
	existing := strings.Join([]string{
		"MAILTO=ops@example.com",
		"*/5 * * * * /usr/local/bin/healthcheck",
		"0 2 * * * " + script + " >> " + logf + " 2>&1",
	}, "\n") + "\n"
	runner := testutil.NewFakeRunner().On("crontab -l", testutil.OK(existing))
	s := NewScheduler(runner, time.Second)

	require.NoError(t, s.Install(testutil.TestContext(t), config.FrequencyWeekly, script, logf))

	cmds := runner.Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, strings.Join([]string{
		"MAILTO=ops@example.com",
		"*/5 * * * * /usr/local/bin/healthcheck",
		"0 2 * * 0 " + script + " >> " + logf + " 2>&1",
	}, "\n")+"\n", string(cmds[1].Stdin))
}

func TestInstall_IdenticalEntryIsNoOp(t *testing.T) {
	t.Parallel()
	runner := testutil.NewFakeRunner().
		On("crontab -l", testutil.OK("0 2 1 * * "+script+" >> "+logf+" 2>&1\n"))
	s := NewScheduler(runner, time.Second)
	ctx := testutil.TestContext(t)

	installed, err := s.Installed(ctx, config.FrequencyMonthly, script, logf)
	require.NoError(t, err)
	assert.True(t, installed)

	require.NoError(t, s.Install(ctx, config.FrequencyMonthly, script, logf))
	assert.Equal(t, []string{"crontab -l", "crontab -l"}, runner.Calls(), "no write expected")
}

func TestInstall_RemovesStaleDuplicateOfSameScript(t *testing.T) {
	t.Parallel()
	weekly := "0 2 * * 0 " + script + " >> " + logf + " 2>&1"
	daily := "0 2 * * * " + script + " >> " + logf + " 2>&1"
	runner := testutil.NewFakeRunner().
		On("crontab -l", testutil.OK("MAILTO=ops@example.com\n"+weekly+"\n"+daily+"\n"))
	s := NewScheduler(runner, time.Second)
	ctx := testutil.TestContext(t)

	installed, err := s.Installed(ctx, config.FrequencyDaily, script, logf)
	require.NoError(t, err)
	assert.False(t, installed, "a second job for the script is not satisfied")

	require.NoError(t, s.Install(ctx, config.FrequencyDaily, script, logf))

	cmds := runner.Commands()
	require.Len(t, cmds, 3)
	assert.Equal(t, "crontab -", cmds[2].String())
	assert.Equal(t, "MAILTO=ops@example.com\n"+daily+"\n", string(cmds[2].Stdin))
}

func TestInstall_RepeatedIdenticalEntryIsCollapsed(t *testing.T) {
	t.Parallel()
	daily := "0 2 * * * " + script + " >> " + logf + " 2>&1"
	runner := testutil.NewFakeRunner().On("crontab -l", testutil.OK(daily+"\n"+daily+"\n"))
	s := NewScheduler(runner, time.Second)

	require.NoError(t, s.Install(testutil.TestContext(t), config.FrequencyDaily, script, logf))

	cmds := runner.Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, daily+"\n", string(cmds[1].Stdin))
}

func TestInstalled_DifferentFrequency(t *testing.T) {
	t.Parallel()
	runner := testutil.NewFakeRunner().
		On("crontab -l", testutil.OK("0 2 * * * "+script+" >> "+logf+" 2>&1\n"))

	installed, err := NewScheduler(runner, time.Second).Installed(testutil.TestContext(t), config.FrequencyWeekly, script, logf)
	require.NoError(t, err)
	assert.False(t, installed)
}

func TestInstall_Failures(t *testing.T) {
	t.Parallel()
	t.Run("read", func(t *testing.T) {
		t.Parallel()
		runner := testutil.NewFakeRunner().On("crontab -l", testutil.Fail(1, "crontab: permission denied"))
		err := NewScheduler(runner, time.Second).Install(testutil.TestContext(t), config.FrequencyDaily, script, logf)
		require.ErrorContains(t, err, "failed to read crontab")
		var cmdErr *host.CommandError
		assert.ErrorAs(t, err, &cmdErr)
	})
	t.Run("write", func(t *testing.T) {
		t.Parallel()
		runner := testutil.NewFakeRunner().
			On("crontab -l", testutil.OK("")).
			On("crontab -", testutil.Fail(1, "crontab: installing new crontab failed"))
		// "crontab -" also prefixes "crontab -l"; the later rule would shadow
		// it, so re-register the read rule last.
		runner.On("crontab -l", testutil.OK(""))

		err := NewScheduler(runner, time.Second).Install(testutil.TestContext(t), config.FrequencyDaily, script, logf)
		assert.ErrorContains(t, err, "failed to install crontab")
	})
	t.Run("unknown frequency", func(t *testing.T) {
		t.Parallel()
		runner := testutil.NewFakeRunner()
		err := NewScheduler(runner, time.Second).Install(testutil.TestContext(t), "yearly", script, logf)
		assert.Error(t, err)
		assert.Empty(t, runner.Calls())
	})
}
