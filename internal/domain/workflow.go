package domain

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"crashtriage.dev/pkg/crashtriage/internal/adapter"
	"crashtriage.dev/pkg/crashtriage/internal/controller"
	m "crashtriage.dev/pkg/crashtriage/internal/model"
)

// RunSweepArgs contains the arguments for a sweep run.
type RunSweepArgs struct {
	SweepArgs
	Report m.Path
}

// RunFuzzArgs contains the arguments for a fuzz-and-file run.
type RunFuzzArgs struct {
	FuzzArgs
	Report m.Path
}

// ListArgs contains the arguments for listing open issues.
type ListArgs struct {
	MaxPages int
}

// ViewArgs contains the arguments for viewing a saved report.
type ViewArgs struct {
	Report m.Path
}

// Workflow is the entry point used by the CLI commands.
type Workflow interface {
	Sweep(ctx context.Context, args RunSweepArgs) error
	Fuzz(ctx context.Context, args RunFuzzArgs) error
	List(ctx context.Context, args ListArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.ReportStore
	controller.UI
	Orchestrator
	tracker adapter.TrackerAdapter
	newRunID func() string
	now      func() time.Time
}

// NewWorkflow creates a new Workflow with the provided dependencies.
// tracker may be nil, in which case List fails.
func NewWorkflow(
	reportStore adapter.ReportStore,
	ui controller.UI,
	orchestrator Orchestrator,
	tracker adapter.TrackerAdapter,
) Workflow {
	return &workflow{
		ReportStore:  reportStore,
		UI:           ui,
		Orchestrator: orchestrator,
		tracker:      tracker,
		newRunID:     uuid.NewString,
		now:          time.Now,
	}
}

func (w *workflow) Sweep(ctx context.Context, args RunSweepArgs) error {
	ctx, report := w.startRun(ctx, m.ModeSweep, args.DryRun)

	result, err := w.Orchestrator.Sweep(ctx, args.SweepArgs)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	LoggerFromContext(ctx).Info("Sweep finished",
		"retained", len(result.Retained),
		"closed", len(result.Closed),
		"labeled", len(result.Labeled))

	report.Sweep = &result
	w.DisplaySweepResult(ctx, result)

	return w.finishRun(ctx, report, args.Report)
}

func (w *workflow) Fuzz(ctx context.Context, args RunFuzzArgs) error {
	ctx, report := w.startRun(ctx, m.ModeFuzz, args.DryRun)

	result, err := w.FuzzAndFile(ctx, args.FuzzArgs)
	if err != nil {
		return fmt.Errorf("fuzz: %w", err)
	}

	LoggerFromContext(ctx).Info("Fuzz run finished", "outcome", result.Outcome)

	report.Fuzz = &result
	w.DisplayFuzzResult(ctx, result)

	return w.finishRun(ctx, report, args.Report)
}

func (w *workflow) List(ctx context.Context, args ListArgs) error {
	if w.tracker == nil {
		return fmt.Errorf("list requires a tracker")
	}

	issues, err := ListOpenIssues(ctx, w.tracker, args.MaxPages)
	if err != nil {
		return err
	}

	w.DisplayIssues(ctx, issues)

	return nil
}

func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	report, err := w.LoadReport(args.Report)
	if err != nil {
		return fmt.Errorf("load report: %w", err)
	}

	w.DisplayReport(ctx, report)

	return nil
}

// startRun assigns a run ID and returns a context whose logger carries it.
func (w *workflow) startRun(ctx context.Context, mode m.RunMode, dryRun bool) (context.Context, m.RunReport) {
	report := m.RunReport{
		RunID:     w.newRunID(),
		Mode:      mode,
		DryRun:    dryRun,
		StartedAt: w.now(),
	}

	logger := LoggerFromContext(ctx).With(slog.String("run", report.RunID))
	ctx = ContextWithLogger(ctx, logger)

	logger.Info("Starting run", "mode", mode, "dryRun", dryRun)
	w.DisplayRunStart(ctx, report.RunID, mode, dryRun)

	return ctx, report
}

func (w *workflow) finishRun(ctx context.Context, report m.RunReport, path m.Path) error {
	report.FinishedAt = w.now()

	if path == "" {
		return nil
	}

	if err := w.SaveReport(path, report); err != nil {
		return fmt.Errorf("save report: %w", err)
	}

	LoggerFromContext(ctx).Debug("Saved run report", "path", path)

	return nil
}
