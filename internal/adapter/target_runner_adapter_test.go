package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeShell creates an executable stand-in for the target shell.
func writeShell(t *testing.T, script string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "shell")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))

	return path
}

func TestShellRunnerAdapter_Run_Success(t *testing.T) {
	shell := writeShell(t, `[ "$1" = "--batch" ] || exit 3
[ "$2" = "-init" ] || exit 3
cat
`)
	adapter := NewShellRunnerAdapter(shell)

	res, err := adapter.Run(context.Background(), "select 42;\n", time.Minute)
	require.NoError(t, err)

	assert.Equal(t, 0, res.ExitCode)
	assert.False(t, res.TimedOut)
	assert.Equal(t, "select 42;", res.Stdout)
	assert.Empty(t, res.Stderr)
}

func TestShellRunnerAdapter_Run_ErrorExit(t *testing.T) {
	shell := writeShell(t, `echo "INTERNAL Error: boom" >&2
exit 1
`)
	adapter := NewShellRunnerAdapter(shell)

	res, err := adapter.Run(context.Background(), "select 1;", 0)
	require.NoError(t, err)

	assert.Equal(t, 1, res.ExitCode)
	assert.Equal(t, "INTERNAL Error: boom", res.Stderr)
}

func TestShellRunnerAdapter_Run_Signal(t *testing.T) {
	shell := writeShell(t, `kill -SEGV $$
`)
	adapter := NewShellRunnerAdapter(shell)

	res, err := adapter.Run(context.Background(), "select 1;", time.Minute)
	require.NoError(t, err)

	assert.Equal(t, -11, res.ExitCode)
}

func TestShellRunnerAdapter_Run_Timeout(t *testing.T) {
	shell := writeShell(t, `echo partial
exec sleep 10
`)
	adapter := NewShellRunnerAdapter(shell)

	res, err := adapter.Run(context.Background(), "select 1;", 100*time.Millisecond)
	require.NoError(t, err)

	assert.True(t, res.TimedOut)
	assert.Empty(t, res.Stdout)
	assert.Empty(t, res.Stderr)
}

func TestShellRunnerAdapter_Run_MissingBinary(t *testing.T) {
	adapter := NewShellRunnerAdapter(filepath.Join(t.TempDir(), "does_not_exist"))

	_, err := adapter.Run(context.Background(), "select 1;", time.Second)
	require.Error(t, err)
}

func TestShellRunnerAdapter_Run_Cancelled(t *testing.T) {
	shell := writeShell(t, `exec sleep 10
`)
	adapter := NewShellRunnerAdapter(shell)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := adapter.Run(ctx, "select 1;", time.Second)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDecodeOutput_DropsInvalidUTF8(t *testing.T) {
	assert.Equal(t, "abc", decodeOutput([]byte{' ', 'a', 0xff, 'b', 'c', '\n'}))
}
