// Package mocks provides testify mocks for the domain interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"crashtriage.dev/pkg/crashtriage/internal/domain"
	m "crashtriage.dev/pkg/crashtriage/internal/model"
)

// MockWorkflow mocks domain.Workflow.
type MockWorkflow struct {
	mock.Mock
}

// NewMockWorkflow creates a mock that asserts its expectations on cleanup.
func NewMockWorkflow(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWorkflow {
	mk := &MockWorkflow{}
	mk.Test(t)
	t.Cleanup(func() { mk.AssertExpectations(t) })

	return mk
}

// Sweep implements domain.Workflow.
func (mk *MockWorkflow) Sweep(ctx context.Context, args domain.RunSweepArgs) error {
	return mk.Called(ctx, args).Error(0)
}

// Fuzz implements domain.Workflow.
func (mk *MockWorkflow) Fuzz(ctx context.Context, args domain.RunFuzzArgs) error {
	return mk.Called(ctx, args).Error(0)
}

// List implements domain.Workflow.
func (mk *MockWorkflow) List(ctx context.Context, args domain.ListArgs) error {
	return mk.Called(ctx, args).Error(0)
}

// View implements domain.Workflow.
func (mk *MockWorkflow) View(ctx context.Context, args domain.ViewArgs) error {
	return mk.Called(ctx, args).Error(0)
}

// MockOrchestrator mocks domain.Orchestrator.
type MockOrchestrator struct {
	mock.Mock
}

// NewMockOrchestrator creates a mock that asserts its expectations on cleanup.
func NewMockOrchestrator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockOrchestrator {
	mk := &MockOrchestrator{}
	mk.Test(t)
	t.Cleanup(func() { mk.AssertExpectations(t) })

	return mk
}

// Sweep implements domain.Orchestrator.
func (mk *MockOrchestrator) Sweep(ctx context.Context, args domain.SweepArgs) (m.SweepResult, error) {
	ret := mk.Called(ctx, args)

	return ret.Get(0).(m.SweepResult), ret.Error(1)
}

// FuzzAndFile implements domain.Orchestrator.
func (mk *MockOrchestrator) FuzzAndFile(ctx context.Context, args domain.FuzzArgs) (m.FuzzResult, error) {
	ret := mk.Called(ctx, args)

	return ret.Get(0).(m.FuzzResult), ret.Error(1)
}
