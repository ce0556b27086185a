package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/runsight/runsight/common/logger"
	"github.com/runsight/runsight/internal/mapper"
	"github.com/runsight/runsight/internal/model"
	"github.com/runsight/runsight/internal/store"
)

type StatusService interface {
	// WorkflowStatuses derives per-workflow statuses from the current event
	// log. A non-empty name restricts the result to that workflow.
	WorkflowStatuses(ctx context.Context, name string) ([]model.WorkflowStatus, error)
}

type statusService struct {
	store  store.EventLogStore
	mapper mapper.EventMapper
	logger *slog.Logger
}

func NewStatusService(eventLog store.EventLogStore, eventMapper mapper.EventMapper, logger *slog.Logger) StatusService {
	if logger == nil {
		logger = slog.Default()
	}
	return &statusService{
		store:  eventLog,
		mapper: eventMapper,
		logger: logger,
	}
}

func (s *statusService) WorkflowStatuses(ctx context.Context, name string) ([]model.WorkflowStatus, error) {
	if name != "" {
		ctx = logger.WithLogFields(ctx, logger.LogFields{Workflow: logger.Ptr(name)})
	}

	events, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading event log: %w", err)
	}

	statuses := ComputeStatuses(s.mapper, events, name)
	s.logger.DebugContext(ctx, "workflow status computed",
		"events", len(events),
		"workflows", len(statuses),
	)
	return statuses, nil
}

// ComputeStatuses groups events by workflow name and reduces each group to
// its latest state. Events carrying no workflow name are ignored; duplicate
// deliveries simply raise the run count. Latest means greatest received_at,
// with ties won by the later log position. The result is sorted by name.
func ComputeStatuses(m mapper.EventMapper, events []model.Event, name string) []model.WorkflowStatus {
	type group struct {
		conclusion string
		latest     model.Event
		count      int
	}
	groups := make(map[string]*group)

	for _, ev := range events {
		wf, ok := m.WorkflowName(ev.Payload)
		if !ok {
			continue
		}
		if name != "" && wf != name {
			continue
		}

		g, exists := groups[wf]
		if !exists {
			g = &group{}
			groups[wf] = g
		}
		g.count++
		// Not-before keeps the later log position on equal timestamps.
		if !ev.ReceivedAt.Before(g.latest.ReceivedAt) {
			g.latest = ev
			g.conclusion = m.Conclusion(ev.Payload, ev.Action)
		}
	}

	statuses := make([]model.WorkflowStatus, 0, len(groups))
	for wf, g := range groups {
		statuses = append(statuses, model.WorkflowStatus{
			Name:             wf,
			LatestConclusion: g.conclusion,
			LatestEventAt:    g.latest.ReceivedAt,
			RunCount:         g.count,
		})
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Name < statuses[j].Name
	})

	return statuses
}
