package handler_test

import (
	"context"

	"github.com/runsight/runsight/internal/model"
	"github.com/runsight/runsight/internal/service"
)

type mockQueryService struct {
	recentEventsFn     func(ctx context.Context, limit int) ([]model.Event, error)
	workflowStatusesFn func(ctx context.Context, name string) ([]model.WorkflowStatus, error)
	analyzeChangesFn   func(ctx context.Context, params service.AnalyzeParams) (*model.ChangeSummary, error)

	recentEventsCalls   int
	analyzeChangesCalls int
	capturedLimit       int
	capturedName        string
	capturedParams      service.AnalyzeParams
}

func (m *mockQueryService) RecentEvents(ctx context.Context, limit int) ([]model.Event, error) {
	m.recentEventsCalls++
	m.capturedLimit = limit
	if m.recentEventsFn != nil {
		return m.recentEventsFn(ctx, limit)
	}
	return []model.Event{}, nil
}

func (m *mockQueryService) WorkflowStatuses(ctx context.Context, name string) ([]model.WorkflowStatus, error) {
	m.capturedName = name
	if m.workflowStatusesFn != nil {
		return m.workflowStatusesFn(ctx, name)
	}
	return []model.WorkflowStatus{}, nil
}

func (m *mockQueryService) AnalyzeChanges(ctx context.Context, params service.AnalyzeParams) (*model.ChangeSummary, error) {
	m.analyzeChangesCalls++
	m.capturedParams = params
	if m.analyzeChangesFn != nil {
		return m.analyzeChangesFn(ctx, params)
	}
	return &model.ChangeSummary{}, nil
}
