package analyzer

import (
	"context"
	"fmt"
	"time"

	"ferlint/internal/tactile"
)

// StyleChecker produces raw, uninterpreted style feedback for a file.
type StyleChecker interface {
	Check(ctx context.Context, path string) (string, error)
}

// CommandExecutor runs an external command.
type CommandExecutor interface {
	Execute(ctx context.Context, cmd tactile.Command) (*tactile.ExecutionResult, error)
}

// PylintChecker runs pylint as a subprocess and returns its stdout.
type PylintChecker struct {
	executor  CommandExecutor
	command   []string
	timeout   time.Duration
	maxOutput int64
}

// NewPylintChecker creates a checker for command (binary first); the file
// path is appended as the last argument on every run.
func NewPylintChecker(executor CommandExecutor, command []string, timeout time.Duration, maxOutput int64) *PylintChecker {
	if executor == nil {
		executor = tactile.NewDirectExecutor()
	}
	return &PylintChecker{
		executor:  executor,
		command:   append([]string(nil), command...),
		timeout:   timeout,
		maxOutput: maxOutput,
	}
}

// Check runs the linter on path. pylint signals findings through non-zero
// exit codes, so only start failures, timeouts and cancellation are errors.
func (c *PylintChecker) Check(ctx context.Context, path string) (string, error) {
	if len(c.command) == 0 {
		return "", fmt.Errorf("style check: no command configured")
	}

	args := append(append([]string(nil), c.command[1:]...), path)
	result, err := c.executor.Execute(ctx, tactile.Command{
		Binary:    c.command[0],
		Arguments: args,
		Limits: &tactile.ResourceLimits{
			TimeoutMs:      c.timeout.Milliseconds(),
			MaxOutputBytes: c.maxOutput,
		},
	})
	if err != nil {
		return "", fmt.Errorf("style check: %w", err)
	}
	if !result.Success {
		return "", fmt.Errorf("style check: %s failed to run: %s", c.command[0], result.Error)
	}
	if result.Killed {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("style check: %w", ctxErr)
		}
		return "", fmt.Errorf("style check: %s killed: %s", c.command[0], result.KillReason)
	}
	return result.Stdout, nil
}
