package provisioning

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilIsNoOp(t *testing.T) {
	t.Parallel()
	var m *Metrics
	m.recordStep("a", StepSucceeded, time.Second)
	m.recordLockRetry("apt-get")
	m.recordRun(Completed, false)
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	m.recordStep("services", StepSucceeded, 42*time.Second)
	m.recordLockRetry("apt-get")
	m.recordRun(Completed, true)

	path := filepath.Join(t.TempDir(), "horilla_installer.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `horilla_installer_step_total{status="succeeded",step="services"} 1`)
	assert.Contains(t, out, `horilla_installer_lock_retries_total{command="apt-get"} 1`)
	assert.Contains(t, out, `horilla_installer_last_run_status{status="degraded"} 1`)
	assert.Contains(t, out, "horilla_installer_step_duration_seconds_bucket")
}
