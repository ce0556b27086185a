package model

import "time"

// EventType is the webhook event tag carried in the X-GitHub-Event header.
// The set is open: unrecognized tags are stored as-is, never rejected.
type EventType = string

const (
	EventTypeWorkflowRun EventType = "workflow_run"
	EventTypeCheckRun    EventType = "check_run"
	EventTypeUnknown     EventType = "unknown"
)

// Event is one immutable ingested CI/CD notification. Events are appended to
// the event log exactly once and never mutated afterwards.
type Event struct {
	ID         int64     `json:"id"`
	DeliveryID string    `json:"delivery_id,omitempty"` // X-GitHub-Delivery GUID when present
	ReceivedAt time.Time `json:"received_at"`           // stamped at acceptance, not trusted from payload
	EventType  string    `json:"event_type"`
	Action     string    `json:"action,omitempty"`
	Repository string    `json:"repository,omitempty"` // repository.full_name
	Sender     string    `json:"sender,omitempty"`     // sender.login
	Payload    Payload   `json:"payload"`              // full original body, retained verbatim
}

// Payload is the schema-less decoded webhook body. Accessors return an
// ok-bool instead of failing so callers can probe for fields that newer or
// unrecognized event shapes may not carry.
type Payload map[string]any

// String walks the given key path and returns the string value at its end.
// Missing keys, intermediate non-objects, and non-string leaves all report
// absence.
func (p Payload) String(path ...string) (string, bool) {
	if len(path) == 0 {
		return "", false
	}
	current := p
	for _, key := range path[:len(path)-1] {
		next, ok := current.Object(key)
		if !ok {
			return "", false
		}
		current = next
	}
	value, ok := current[path[len(path)-1]].(string)
	if !ok {
		return "", false
	}
	return value, true
}

// Object returns the nested object stored under key.
func (p Payload) Object(key string) (Payload, bool) {
	switch value := p[key].(type) {
	case Payload:
		return value, true
	case map[string]any:
		return Payload(value), true
	default:
		return nil, false
	}
}
