package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ferlint/internal/tactile"
	"ferlint/internal/world"
)

// SyntaxChecker confirms that a file compiles. A rejection wraps
// world.ErrMalformedSource; any other error means the check could not run.
type SyntaxChecker interface {
	CheckSyntax(ctx context.Context, path string) error
}

// syntaxRejectedExit is the exit code the configured command uses for a
// file that does not compile.
const syntaxRejectedExit = 3

// PythonSyntaxChecker asks CPython to parse the file without running it.
type PythonSyntaxChecker struct {
	executor CommandExecutor
	command  []string
	timeout  time.Duration
}

// NewPythonSyntaxChecker creates a checker for command (binary first); the
// file path is appended as the last argument.
func NewPythonSyntaxChecker(executor CommandExecutor, command []string, timeout time.Duration) *PythonSyntaxChecker {
	if executor == nil {
		executor = tactile.NewDirectExecutor()
	}
	return &PythonSyntaxChecker{
		executor: executor,
		command:  append([]string(nil), command...),
		timeout:  timeout,
	}
}

// CheckSyntax returns nil when CPython accepts the file.
func (c *PythonSyntaxChecker) CheckSyntax(ctx context.Context, path string) error {
	if len(c.command) == 0 {
		return fmt.Errorf("syntax check: no command configured")
	}

	args := append(append([]string(nil), c.command[1:]...), path)
	result, err := c.executor.Execute(ctx, tactile.Command{
		Binary:    c.command[0],
		Arguments: args,
		Limits:    &tactile.ResourceLimits{TimeoutMs: c.timeout.Milliseconds()},
	})
	if err != nil {
		return fmt.Errorf("syntax check: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("syntax check: %s failed to run: %s", c.command[0], result.Error)
	}
	if result.Killed {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("syntax check: %w", ctxErr)
		}
		return fmt.Errorf("syntax check: %s killed: %s", c.command[0], result.KillReason)
	}

	switch result.ExitCode {
	case 0:
		return nil
	case syntaxRejectedExit:
		return fmt.Errorf("%w: %s", world.ErrMalformedSource, strings.TrimSpace(result.Stdout))
	default:
		return fmt.Errorf("syntax check: %s exited %d: %s", c.command[0], result.ExitCode, strings.TrimSpace(result.Output()))
	}
}
