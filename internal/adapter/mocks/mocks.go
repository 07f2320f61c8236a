// Package mocks provides testify mocks for the adapter interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	m "crashtriage.dev/pkg/crashtriage/internal/model"
)

// MockTargetRunnerAdapter mocks adapter.TargetRunnerAdapter.
type MockTargetRunnerAdapter struct {
	mock.Mock
}

// NewMockTargetRunnerAdapter creates a mock that asserts its expectations on cleanup.
func NewMockTargetRunnerAdapter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTargetRunnerAdapter {
	mk := &MockTargetRunnerAdapter{}
	mk.Test(t)
	t.Cleanup(func() { mk.AssertExpectations(t) })

	return mk
}

// Run implements adapter.TargetRunnerAdapter.
func (mk *MockTargetRunnerAdapter) Run(ctx context.Context, statements string, timeout time.Duration) (m.ExecutionResult, error) {
	args := mk.Called(ctx, statements, timeout)

	return args.Get(0).(m.ExecutionResult), args.Error(1)
}

// MockTrackerAdapter mocks adapter.TrackerAdapter.
type MockTrackerAdapter struct {
	mock.Mock
}

// NewMockTrackerAdapter creates a mock that asserts its expectations on cleanup.
func NewMockTrackerAdapter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTrackerAdapter {
	mk := &MockTrackerAdapter{}
	mk.Test(t)
	t.Cleanup(func() { mk.AssertExpectations(t) })

	return mk
}

// ListOpenIssues implements adapter.TrackerAdapter.
func (mk *MockTrackerAdapter) ListOpenIssues(ctx context.Context, page int) ([]m.TrackedIssue, error) {
	args := mk.Called(ctx, page)

	issues, _ := args.Get(0).([]m.TrackedIssue)

	return issues, args.Error(1)
}

// SearchOpenIssues implements adapter.TrackerAdapter.
func (mk *MockTrackerAdapter) SearchOpenIssues(ctx context.Context, title string) ([]m.TrackedIssue, error) {
	args := mk.Called(ctx, title)

	issues, _ := args.Get(0).([]m.TrackedIssue)

	return issues, args.Error(1)
}

// CreateIssue implements adapter.TrackerAdapter.
func (mk *MockTrackerAdapter) CreateIssue(ctx context.Context, title, body string) (m.TrackedIssue, error) {
	args := mk.Called(ctx, title, body)

	return args.Get(0).(m.TrackedIssue), args.Error(1)
}

// CloseIssue implements adapter.TrackerAdapter.
func (mk *MockTrackerAdapter) CloseIssue(ctx context.Context, number int) error {
	return mk.Called(ctx, number).Error(0)
}

// LabelIssue implements adapter.TrackerAdapter.
func (mk *MockTrackerAdapter) LabelIssue(ctx context.Context, number int, label string) error {
	return mk.Called(ctx, number, label).Error(0)
}

// MockCampaignLogAdapter mocks adapter.CampaignLogAdapter.
type MockCampaignLogAdapter struct {
	mock.Mock
}

// NewMockCampaignLogAdapter creates a mock that asserts its expectations on cleanup.
func NewMockCampaignLogAdapter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCampaignLogAdapter {
	mk := &MockCampaignLogAdapter{}
	mk.Test(t)
	t.Cleanup(func() { mk.AssertExpectations(t) })

	return mk
}

// ReadLastStatement implements adapter.CampaignLogAdapter.
func (mk *MockCampaignLogAdapter) ReadLastStatement(path m.Path) (string, error) {
	args := mk.Called(path)

	return args.String(0), args.Error(1)
}

// ReadCompleteLog implements adapter.CampaignLogAdapter.
func (mk *MockCampaignLogAdapter) ReadCompleteLog(path m.Path) (string, error) {
	args := mk.Called(path)

	return args.String(0), args.Error(1)
}

// MockReportStore mocks adapter.ReportStore.
type MockReportStore struct {
	mock.Mock
}

// NewMockReportStore creates a mock that asserts its expectations on cleanup.
func NewMockReportStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockReportStore {
	mk := &MockReportStore{}
	mk.Test(t)
	t.Cleanup(func() { mk.AssertExpectations(t) })

	return mk
}

// SaveReport implements adapter.ReportStore.
func (mk *MockReportStore) SaveReport(path m.Path, report m.RunReport) error {
	return mk.Called(path, report).Error(0)
}

// LoadReport implements adapter.ReportStore.
func (mk *MockReportStore) LoadReport(path m.Path) (m.RunReport, error) {
	args := mk.Called(path)

	return args.Get(0).(m.RunReport), args.Error(1)
}
