package mapper

import (
	"github.com/runsight/runsight/internal/model"
)

// EventFields are the envelope fields lifted out of a webhook payload for
// quick filtering. Extraction is opportunistic: absent or oddly-typed fields
// stay empty and never fail ingestion.
type EventFields struct {
	Action     string
	Repository string
	Sender     string
}

// EventMapper extracts envelope and workflow fields from webhook payloads.
type EventMapper interface {
	Fields(payload model.Payload) EventFields
	WorkflowName(payload model.Payload) (string, bool)
	Conclusion(payload model.Payload, action string) string
}
