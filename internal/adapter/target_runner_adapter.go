// Package adapter contains infrastructure adapters for the crash-triage pipeline.
package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	m "crashtriage.dev/pkg/crashtriage/internal/model"
)

// TargetRunnerAdapter abstracts execution of statements against the target.
type TargetRunnerAdapter interface {
	// Run feeds statements to the target on stdin. A positive timeout bounds
	// the wait and yields TimedOut on expiry; zero waits until the process exits.
	Run(ctx context.Context, statements string, timeout time.Duration) (m.ExecutionResult, error)
}

// waitDelay bounds how long Run waits for output pipes after the process is killed.
const waitDelay = 2 * time.Second

// ShellRunnerAdapter runs a SQL shell binary in non-interactive batch mode.
type ShellRunnerAdapter struct {
	shell string
}

// NewShellRunnerAdapter constructs a ShellRunnerAdapter for the given shell binary.
func NewShellRunnerAdapter(shell string) *ShellRunnerAdapter {
	return &ShellRunnerAdapter{shell: shell}
}

// Run executes statements with `<shell> --batch -init /dev/null`.
func (a *ShellRunnerAdapter) Run(ctx context.Context, statements string, timeout time.Duration) (m.ExecutionResult, error) {
	runCtx := ctx

	if timeout > 0 {
		var cancel context.CancelFunc

		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, a.shell, "--batch", "-init", "/dev/null")
	cmd.Stdin = strings.NewReader(statements)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return m.ExecutionResult{TimedOut: true}, nil
	}

	if err := ctx.Err(); err != nil {
		return m.ExecutionResult{}, err
	}

	result := m.ExecutionResult{
		Stdout: decodeOutput(stdout.Bytes()),
		Stderr: decodeOutput(stderr.Bytes()),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return m.ExecutionResult{}, fmt.Errorf("run %s: %w", a.shell, err)
		}

		result.ExitCode = exitCode(exitErr)
	}

	return result, nil
}

// exitCode maps a signal death to the negated signal number.
func exitCode(exitErr *exec.ExitError) int {
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return -int(status.Signal())
	}

	return exitErr.ExitCode()
}

// decodeOutput drops invalid UTF-8 sequences and surrounding whitespace.
func decodeOutput(raw []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(raw), ""))
}
