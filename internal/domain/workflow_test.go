package domain_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	adaptermocks "crashtriage.dev/pkg/crashtriage/internal/adapter/mocks"
	controllermocks "crashtriage.dev/pkg/crashtriage/internal/controller/mocks"
	"crashtriage.dev/pkg/crashtriage/internal/domain"
	domainmocks "crashtriage.dev/pkg/crashtriage/internal/domain/mocks"
	m "crashtriage.dev/pkg/crashtriage/internal/model"
)

func validRunID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func TestWorkflow_Sweep_SavesReport(t *testing.T) {
	store := adaptermocks.NewMockReportStore(t)
	ui := controllermocks.NewMockUI(t)
	orchestrator := domainmocks.NewMockOrchestrator(t)

	result := m.SweepResult{
		Retained: map[string]m.TrackedIssue{"t": {Number: 1, Title: "t"}},
		Closed:   []int{2},
	}

	ui.On("DisplayRunStart", mock.Anything, mock.MatchedBy(validRunID), m.ModeSweep, false).Once()
	orchestrator.On("Sweep", mock.Anything, domain.SweepArgs{MaxPages: 3, MaxAttempts: 5}).Return(result, nil).Once()
	ui.On("DisplaySweepResult", mock.Anything, result).Once()
	store.On("SaveReport", m.Path("out/report.yaml"), mock.MatchedBy(func(report m.RunReport) bool {
		return validRunID(report.RunID) &&
			report.Mode == m.ModeSweep &&
			report.Sweep != nil &&
			len(report.Sweep.Closed) == 1 &&
			report.Fuzz == nil &&
			!report.FinishedAt.Before(report.StartedAt)
	})).Return(nil).Once()

	wf := domain.NewWorkflow(store, ui, orchestrator, nil)

	err := wf.Sweep(context.Background(), domain.RunSweepArgs{
		SweepArgs: domain.SweepArgs{MaxPages: 3, MaxAttempts: 5},
		Report:    "out/report.yaml",
	})
	require.NoError(t, err)
}

func TestWorkflow_Sweep_OrchestratorError(t *testing.T) {
	store := adaptermocks.NewMockReportStore(t)
	ui := controllermocks.NewMockUI(t)
	orchestrator := domainmocks.NewMockOrchestrator(t)

	ui.On("DisplayRunStart", mock.Anything, mock.Anything, m.ModeSweep, true).Once()
	orchestrator.On("Sweep", mock.Anything, mock.Anything).Return(m.SweepResult{}, errors.New("boom")).Once()

	wf := domain.NewWorkflow(store, ui, orchestrator, nil)

	err := wf.Sweep(context.Background(), domain.RunSweepArgs{SweepArgs: domain.SweepArgs{DryRun: true}, Report: "r.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	store.AssertNotCalled(t, "SaveReport", mock.Anything, mock.Anything)
}

func TestWorkflow_Fuzz_WithoutReportPath(t *testing.T) {
	store := adaptermocks.NewMockReportStore(t)
	ui := controllermocks.NewMockUI(t)
	orchestrator := domainmocks.NewMockOrchestrator(t)

	args := domain.FuzzArgs{Campaign: m.CampaignConfig{Seed: 4}, MaxAttempts: 2}
	result := m.FuzzResult{Outcome: m.OutcomeFiled, Seed: 4, FiledIssue: 10}

	ui.On("DisplayRunStart", mock.Anything, mock.Anything, m.ModeFuzz, false).Once()
	orchestrator.On("FuzzAndFile", mock.Anything, args).Return(result, nil).Once()
	ui.On("DisplayFuzzResult", mock.Anything, result).Once()

	wf := domain.NewWorkflow(store, ui, orchestrator, nil)

	require.NoError(t, wf.Fuzz(context.Background(), domain.RunFuzzArgs{FuzzArgs: args}))
}

func TestWorkflow_Fuzz_SaveError(t *testing.T) {
	store := adaptermocks.NewMockReportStore(t)
	ui := controllermocks.NewMockUI(t)
	orchestrator := domainmocks.NewMockOrchestrator(t)

	ui.On("DisplayRunStart", mock.Anything, mock.Anything, m.ModeFuzz, false).Once()
	orchestrator.On("FuzzAndFile", mock.Anything, mock.Anything).Return(m.FuzzResult{Outcome: m.OutcomeSuccess}, nil).Once()
	ui.On("DisplayFuzzResult", mock.Anything, mock.Anything).Once()
	store.On("SaveReport", m.Path("r.yaml"), mock.Anything).Return(errors.New("disk full")).Once()

	wf := domain.NewWorkflow(store, ui, orchestrator, nil)

	err := wf.Fuzz(context.Background(), domain.RunFuzzArgs{Report: "r.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save report")
}

func TestWorkflow_List(t *testing.T) {
	ui := controllermocks.NewMockUI(t)
	tracker := adaptermocks.NewMockTrackerAdapter(t)

	issues := []m.TrackedIssue{{Number: 1, Title: "a"}, {Number: 2, Title: "b"}}

	tracker.On("ListOpenIssues", mock.Anything, 1).Return(issues, nil).Once()
	tracker.On("ListOpenIssues", mock.Anything, 2).Return([]m.TrackedIssue{}, nil).Once()
	ui.On("DisplayIssues", mock.Anything, issues).Once()

	wf := domain.NewWorkflow(adaptermocks.NewMockReportStore(t), ui, domainmocks.NewMockOrchestrator(t), tracker)

	require.NoError(t, wf.List(context.Background(), domain.ListArgs{MaxPages: 5}))
}

func TestWorkflow_List_RequiresTracker(t *testing.T) {
	wf := domain.NewWorkflow(
		adaptermocks.NewMockReportStore(t),
		controllermocks.NewMockUI(t),
		domainmocks.NewMockOrchestrator(t),
		nil,
	)

	require.Error(t, wf.List(context.Background(), domain.ListArgs{}))
}

func TestWorkflow_View(t *testing.T) {
	store := adaptermocks.NewMockReportStore(t)
	ui := controllermocks.NewMockUI(t)

	report := m.RunReport{RunID: "abc", Mode: m.ModeFuzz}

	store.On("LoadReport", m.Path("r.yaml")).Return(report, nil).Once()
	ui.On("DisplayReport", mock.Anything, report).Once()

	wf := domain.NewWorkflow(store, ui, domainmocks.NewMockOrchestrator(t), nil)

	require.NoError(t, wf.View(context.Background(), domain.ViewArgs{Report: "r.yaml"}))
}

func TestWorkflow_View_LoadError(t *testing.T) {
	store := adaptermocks.NewMockReportStore(t)

	store.On("LoadReport", m.Path("missing.yaml")).Return(m.RunReport{}, errors.New("not found")).Once()

	wf := domain.NewWorkflow(store, controllermocks.NewMockUI(t), domainmocks.NewMockOrchestrator(t), nil)

	require.Error(t, wf.View(context.Background(), domain.ViewArgs{Report: "missing.yaml"}))
}

func TestWorkflow_Fuzz_ContextLoggerCarriesRunID(t *testing.T) {
	var buf bytes.Buffer

	original := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(original) })

	store := adaptermocks.NewMockReportStore(t)
	ui := controllermocks.NewMockUI(t)
	orchestrator := domainmocks.NewMockOrchestrator(t)

	var runID string

	ui.On("DisplayRunStart", mock.Anything, mock.Anything, m.ModeFuzz, false).
		Run(func(args mock.Arguments) { runID = args.String(1) }).
		Once()
	orchestrator.On("FuzzAndFile", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			domain.LoggerFromContext(ctx).Info("inside pipeline")
		}).
		Return(m.FuzzResult{Outcome: m.OutcomeSuccess}, nil).
		Once()
	ui.On("DisplayFuzzResult", mock.Anything, mock.Anything).Once()

	wf := domain.NewWorkflow(store, ui, orchestrator, nil)

	require.NoError(t, wf.Fuzz(context.Background(), domain.RunFuzzArgs{}))
	require.True(t, validRunID(runID))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)

	for _, line := range lines {
		assert.Contains(t, line, "run="+runID)
	}

	assert.Contains(t, buf.String(), "inside pipeline")
}
