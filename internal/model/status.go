package model

import "time"

// WorkflowStatus is the derived latest-state view of one named workflow.
// It is recomputed from the event log on every read and never persisted, so
// it cannot drift from the log.
type WorkflowStatus struct {
	Name             string    `json:"name"`
	LatestConclusion string    `json:"latest_conclusion"`
	LatestEventAt    time.Time `json:"latest_event_at"`
	RunCount         int       `json:"run_count"` // events considered for this workflow
}
