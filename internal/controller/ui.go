// Package controller provides output adapters for displaying triage results.
package controller

import (
	"context"

	m "crashtriage.dev/pkg/crashtriage/internal/model"
)

// UI defines how run progress and results are presented.
type UI interface {
	DisplayRunStart(ctx context.Context, runID string, mode m.RunMode, dryRun bool)
	DisplaySweepResult(ctx context.Context, result m.SweepResult)
	DisplayFuzzResult(ctx context.Context, result m.FuzzResult)
	DisplayIssues(ctx context.Context, issues []m.TrackedIssue)
	DisplayReport(ctx context.Context, report m.RunReport)
}
