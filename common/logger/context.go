package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Fields flow through context enrichment, enabling zero-touch logging where delivery
// context (event_id, delivery_id, etc.) is automatically included in all log statements.
type LogFields struct {
	EventID    *int64  // Store-assigned event ID
	DeliveryID *string // X-GitHub-Delivery header value
	EventType  *string // Event type (e.g., "workflow_run", "check_run")
	Workflow   *string // Workflow name the event belongs to
	Component  string  // Component name (OTel semantic convention style, e.g., "runsight.analysis")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
// Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

// mergeFields merges two LogFields, preferring non-nil/non-empty values from 'new'.
func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.EventID != nil {
		result.EventID = new.EventID
	}
	if new.DeliveryID != nil {
		result.DeliveryID = new.DeliveryID
	}
	if new.EventType != nil {
		result.EventType = new.EventType
	}
	if new.Workflow != nil {
		result.Workflow = new.Workflow
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{EventID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
// Useful for logging potentially long strings like payloads or error messages.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
