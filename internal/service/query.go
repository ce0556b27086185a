package service

import (
	"context"
	"fmt"

	"github.com/runsight/runsight/internal/model"
	"github.com/runsight/runsight/internal/store"
)

// QueryService is the read-side façade shared by the HTTP API and the
// query CLI. It composes the store snapshot with the status and analysis
// services and holds no state of its own.
type QueryService interface {
	// RecentEvents returns up to limit events, most recent first. A
	// non-positive or oversized limit yields the whole log.
	RecentEvents(ctx context.Context, limit int) ([]model.Event, error)

	WorkflowStatuses(ctx context.Context, name string) ([]model.WorkflowStatus, error)

	AnalyzeChanges(ctx context.Context, params AnalyzeParams) (*model.ChangeSummary, error)
}

type queryService struct {
	store    store.EventLogStore
	status   StatusService
	analysis AnalysisService
}

func NewQueryService(eventLog store.EventLogStore, status StatusService, analysis AnalysisService) QueryService {
	return &queryService{
		store:    eventLog,
		status:   status,
		analysis: analysis,
	}
}

func (s *queryService) RecentEvents(ctx context.Context, limit int) ([]model.Event, error) {
	events, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading event log: %w", err)
	}

	if limit <= 0 || limit > len(events) {
		limit = len(events)
	}

	out := make([]model.Event, 0, limit)
	for i := len(events) - 1; i >= len(events)-limit; i-- {
		out = append(out, events[i])
	}
	return out, nil
}

func (s *queryService) WorkflowStatuses(ctx context.Context, name string) ([]model.WorkflowStatus, error) {
	return s.status.WorkflowStatuses(ctx, name)
}

func (s *queryService) AnalyzeChanges(ctx context.Context, params AnalyzeParams) (*model.ChangeSummary, error) {
	return s.analysis.Analyze(ctx, params)
}
