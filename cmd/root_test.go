package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainmocks "crashtriage.dev/pkg/crashtriage/internal/domain/mocks"
	m "crashtriage.dev/pkg/crashtriage/internal/model"
)

func TestRootCmd_ShowsHelp(t *testing.T) {
	cmd, out := newTestRoot(t, nil, newVersionCmd)

	cmd.SetArgs(withLogFile(t))
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "crashtriage")
	assert.Contains(t, out.String(), "sweep")
}

func TestRootCmd_ConfigReadErrorIsFatal(t *testing.T) {
	original := configReadErr
	configReadErr = errors.New("read crashtriage.yaml: yaml: line 2: did not find expected key")
	t.Cleanup(func() { configReadErr = original })

	cmd, _ := newTestRoot(t, nil, newVersionCmd)

	cmd.SetArgs(withLogFile(t, "version"))
	require.ErrorContains(t, cmd.Execute(), "crashtriage.yaml")
}

func TestResolveWorkflow_PrefersOverride(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)

	original := workflow
	workflow = mockWorkflow
	t.Cleanup(func() { workflow = original })

	assert.Same(t, mockWorkflow, resolveWorkflow(&cobra.Command{}, nil, false))
}

func TestResolveWorkflow_WiresAdapters(t *testing.T) {
	original := workflow
	workflow = nil
	t.Cleanup(func() { workflow = original })

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetContext(context.Background())

	cfg := m.RunConfig{
		Campaign: m.CampaignConfig{Shell: "/bin/duckdb"},
		Tracker:  m.TrackerConfig{APIURL: "https://api.github.com", Owner: "o", Repo: "r", Token: testToken},
	}

	assert.NotNil(t, resolveWorkflow(cmd, &cfg, true))
	assert.NotNil(t, resolveWorkflow(cmd, &cfg, false))
	assert.NotNil(t, resolveWorkflow(cmd, nil, false))
}
