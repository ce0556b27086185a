package dto

import "github.com/runsight/runsight/internal/model"

// RecentEventsResponse is the payload for GET /api/v1/events.
type RecentEventsResponse struct {
	Events []model.Event `json:"events"`
	Count  int           `json:"count"`
}

// WorkflowStatusResponse is the payload for GET /api/v1/workflows/status.
type WorkflowStatusResponse struct {
	Workflows []model.WorkflowStatus `json:"workflows"`
	Count     int                    `json:"count"`
}
