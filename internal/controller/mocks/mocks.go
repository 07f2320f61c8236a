// Package mocks provides testify mocks for the controller interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	m "crashtriage.dev/pkg/crashtriage/internal/model"
)

// MockUI mocks controller.UI.
type MockUI struct {
	mock.Mock
}

// NewMockUI creates a mock that asserts its expectations on cleanup.
func NewMockUI(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUI {
	mk := &MockUI{}
	mk.Test(t)
	t.Cleanup(func() { mk.AssertExpectations(t) })

	return mk
}

// DisplayRunStart implements controller.UI.
func (mk *MockUI) DisplayRunStart(ctx context.Context, runID string, mode m.RunMode, dryRun bool) {
	mk.Called(ctx, runID, mode, dryRun)
}

// DisplaySweepResult implements controller.UI.
func (mk *MockUI) DisplaySweepResult(ctx context.Context, result m.SweepResult) {
	mk.Called(ctx, result)
}

// DisplayFuzzResult implements controller.UI.
func (mk *MockUI) DisplayFuzzResult(ctx context.Context, result m.FuzzResult) {
	mk.Called(ctx, result)
}

// DisplayIssues implements controller.UI.
func (mk *MockUI) DisplayIssues(ctx context.Context, issues []m.TrackedIssue) {
	mk.Called(ctx, issues)
}

// DisplayReport implements controller.UI.
func (mk *MockUI) DisplayReport(ctx context.Context, report m.RunReport) {
	mk.Called(ctx, report)
}
