package tactile

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX utilities")
	}
}

func TestDirectExecutor_Execute(t *testing.T) {
	skipOnWindows(t)
	executor := NewDirectExecutor()

	result, err := executor.Execute(context.Background(), Command{
		Binary:    "echo",
		Arguments: []string{"hello"},
	})
	require.NoError(t, err)

	assert.True(t, result.Success, result.Error)
	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, result.Output(), "hello")
	assert.False(t, result.Killed)
}

func TestDirectExecutor_NonZeroExitIsSuccess(t *testing.T) {
	skipOnWindows(t)
	executor := NewDirectExecutor()

	result, err := executor.Execute(context.Background(), Command{
		Binary:    "sh",
		Arguments: []string{"-c", "echo lint; exit 16"},
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 16, result.ExitCode)
	assert.Equal(t, "lint\n", result.Stdout)
}

func TestDirectExecutor_Timeout(t *testing.T) {
	skipOnWindows(t)
	executor := NewDirectExecutor()

	start := time.Now()
	result, err := executor.Execute(context.Background(), Command{
		Binary:    "sleep",
		Arguments: []string{"10"},
		Limits:    &ResourceLimits{TimeoutMs: 200},
	})
	elapsed := time.Since(start)
	require.NoError(t, err)

	assert.True(t, result.Killed, "expected command to be killed")
	assert.Contains(t, result.KillReason, "timeout")
	assert.Less(t, elapsed, 5*time.Second)
}

func TestDirectExecutor_Canceled(t *testing.T) {
	skipOnWindows(t)
	executor := NewDirectExecutor()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := executor.Execute(ctx, Command{Binary: "sleep", Arguments: []string{"10"}})
	require.NoError(t, err)
	assert.True(t, result.Killed)
}

func TestDirectExecutor_MissingBinary(t *testing.T) {
	executor := NewDirectExecutor()

	result, err := executor.Execute(context.Background(), Command{
		Binary: filepath.Join(t.TempDir(), "no-such-binary"),
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestDirectExecutor_Validate(t *testing.T) {
	executor := NewDirectExecutor()

	_, err := executor.Execute(context.Background(), Command{})
	assert.Error(t, err)
}

func TestDirectExecutor_WorkingDirectory(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("x"), 0644))

	result, err := NewDirectExecutor().Execute(context.Background(), Command{
		Binary:           "ls",
		WorkingDirectory: dir,
	})
	require.NoError(t, err)
	assert.Contains(t, result.Stdout, "marker.txt")
}

func TestDirectExecutor_Environment(t *testing.T) {
	skipOnWindows(t)
	t.Setenv("FERLINT_SECRET", "leak")

	result, err := NewDirectExecutor().Execute(context.Background(), Command{
		Binary:      "sh",
		Arguments:   []string{"-c", "echo \"$FERLINT_SECRET|$EXTRA\""},
		Environment: []string{"EXTRA=given"},
	})
	require.NoError(t, err)
	assert.Equal(t, "|given", strings.TrimSpace(result.Stdout))
}

func TestExecutorConfig_Merge(t *testing.T) {
	cfg := DefaultExecutorConfig()

	merged := cfg.Merge(Command{Binary: "pylint"})
	require.NotNil(t, merged.Limits)
	assert.Equal(t, ".", merged.WorkingDirectory)
	assert.Equal(t, int64(30000), merged.Limits.TimeoutMs)
	assert.Equal(t, cfg.MaxOutputBytes, merged.Limits.MaxOutputBytes)

	capped := cfg.Merge(Command{Binary: "pylint", Limits: &ResourceLimits{TimeoutMs: int64(time.Hour / time.Millisecond)}})
	assert.Equal(t, int64(cfg.MaxTimeout/time.Millisecond), capped.Limits.TimeoutMs)

	limits := &ResourceLimits{TimeoutMs: 5}
	cfg.Merge(Command{Binary: "pylint", Limits: limits})
	assert.Equal(t, int64(0), limits.MaxOutputBytes, "Merge must not mutate the caller's limits")
}

func TestLimitedWriter(t *testing.T) {
	var buf bytes.Buffer
	lw := &limitedWriter{w: &buf, max: 4}

	n, err := lw.Write([]byte("abcdef"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, "abcd", buf.String())
	assert.True(t, lw.truncated)
	assert.Equal(t, int64(2), lw.discarded)

	n, err = lw.Write([]byte("gh"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(4), lw.discarded)
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "pylint", Command{Binary: "pylint"}.CommandString())
	assert.Equal(t, "pylint -r n x.py", Command{Binary: "pylint", Arguments: []string{"-r", "n", "x.py"}}.CommandString())
}

func TestDirectExecutor_TimeoutKillsProcessGroup(t *testing.T) {
	skipOnWindows(t)

	start := time.Now()
	result, err := NewDirectExecutor().Execute(context.Background(), Command{
		Binary:    "sh",
		Arguments: []string{"-c", "sleep 10 & sleep 10; wait"},
		Limits:    &ResourceLimits{TimeoutMs: 200},
	})
	require.NoError(t, err)

	assert.True(t, result.Killed)
	assert.Less(t, time.Since(start), 5*time.Second, "forked children must not keep the command alive")
}

func TestDirectExecutor_ReportsUsage(t *testing.T) {
	skipOnWindows(t)

	result, err := NewDirectExecutor().Execute(context.Background(), Command{Binary: "true"})
	require.NoError(t, err)

	require.NotNil(t, result.Usage)
	assert.GreaterOrEqual(t, result.Usage.TotalCPUTimeMs(), int64(0))
}
