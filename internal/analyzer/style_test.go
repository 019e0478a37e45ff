package analyzer

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"ferlint/internal/tactile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	result *tactile.ExecutionResult
	err    error
	got    tactile.Command
}

func (f *fakeExecutor) Execute(_ context.Context, cmd tactile.Command) (*tactile.ExecutionResult, error) {
	f.got = cmd
	return f.result, f.err
}

func TestPylintChecker_BuildsCommand(t *testing.T) {
	exec := &fakeExecutor{result: &tactile.ExecutionResult{Success: true, ExitCode: 16, Stdout: "two_fer.py:1: convention (C0114, missing-module-docstring, ) Missing module docstring\n"}}
	checker := NewPylintChecker(exec, []string{"pylint", "--reports=n"}, 3*time.Second, 4096)

	out, err := checker.Check(context.Background(), "/sub/two_fer.py")
	require.NoError(t, err)

	assert.Equal(t, exec.result.Stdout, out, "non-zero exit from pylint is not a failure")
	assert.Equal(t, "pylint", exec.got.Binary)
	assert.Equal(t, []string{"--reports=n", "/sub/two_fer.py"}, exec.got.Arguments)
	require.NotNil(t, exec.got.Limits)
	assert.Equal(t, int64(3000), exec.got.Limits.TimeoutMs)
	assert.Equal(t, int64(4096), exec.got.Limits.MaxOutputBytes)
}

func TestPylintChecker_DoesNotAliasCommand(t *testing.T) {
	command := make([]string, 1, 8)
	command[0] = "pylint"
	exec := &fakeExecutor{result: &tactile.ExecutionResult{Success: true}}
	checker := NewPylintChecker(exec, command, time.Second, 0)

	_, err := checker.Check(context.Background(), "a.py")
	require.NoError(t, err)
	_, err = checker.Check(context.Background(), "b.py")
	require.NoError(t, err)

	assert.Equal(t, []string{"b.py"}, exec.got.Arguments)
	assert.Equal(t, []string{"pylint"}, command)
}

func TestPylintChecker_Failures(t *testing.T) {
	tests := []struct {
		name   string
		exec   *fakeExecutor
		cancel bool
		is     error
	}{
		{
			name: "executor rejects command",
			exec: &fakeExecutor{err: errors.New("binary is required")},
		},
		{
			name: "binary did not start",
			exec: &fakeExecutor{result: &tactile.ExecutionResult{Success: false, Error: "exec: \"pylint\": executable file not found in $PATH"}},
		},
		{
			name: "timed out",
			exec: &fakeExecutor{result: &tactile.ExecutionResult{Success: true, Killed: true, KillReason: "timeout after 30s"}},
		},
		{
			name:   "canceled",
			exec:   &fakeExecutor{result: &tactile.ExecutionResult{Success: true, Killed: true, KillReason: "context canceled"}},
			cancel: true,
			is:     context.Canceled,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.cancel {
				cancel()
			}

			checker := NewPylintChecker(tt.exec, []string{"pylint"}, time.Second, 0)
			out, err := checker.Check(ctx, "two_fer.py")

			require.Error(t, err)
			assert.Empty(t, out)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestPylintChecker_EmptyCommand(t *testing.T) {
	_, err := NewPylintChecker(&fakeExecutor{}, nil, time.Second, 0).Check(context.Background(), "x.py")
	assert.Error(t, err)
}

func TestPylintChecker_RealExecutor(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	// Stand-in linter: echoes the path it was given and exits non-zero like pylint does.
	checker := NewPylintChecker(nil, []string{"sh", "-c", `echo "linted $0"; exit 4`}, 5*time.Second, 1024)

	out, err := checker.Check(context.Background(), "two_fer.py")
	require.NoError(t, err)
	assert.Equal(t, "linted two_fer.py\n", out)
}
