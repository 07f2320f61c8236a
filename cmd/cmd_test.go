package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"crashtriage.dev/pkg/crashtriage/internal/domain"
)

const testToken = "0123456789012345678901234567890123456789"

// resetConfig restores viper to its defaults for the duration of the test.
func resetConfig(t *testing.T) {
	t.Helper()

	viper.Reset()
	initConfig()
	t.Cleanup(func() {
		viper.Reset()
		initConfig()
	})
}

// newTestRoot builds a root command with a fresh subcommand and the workflow replaced by wf.
func newTestRoot(t *testing.T, wf domain.Workflow, newSub func() *cobra.Command) (*cobra.Command, *bytes.Buffer) {
	t.Helper()

	resetConfig(t)

	cmd := newRootCmd()
	cmd.AddCommand(newSub())

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = wf
	t.Cleanup(func() { workflow = originalWorkflow })

	return cmd, out
}

// withLogFile prefixes args with a log file inside a temp dir.
func withLogFile(t *testing.T, args ...string) []string {
	t.Helper()

	return append(args, "--"+logFileFlagName, filepath.Join(t.TempDir(), "test.log"))
}
