package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"

	"github.com/runsight/runsight/common/id"
	"github.com/runsight/runsight/internal/mapper"
	"github.com/runsight/runsight/internal/model"
	"github.com/runsight/runsight/internal/store"
)

type IngestParams struct {
	// Body is the raw webhook request body.
	Body []byte
	// EventType is the X-GitHub-Event header value; empty becomes "unknown".
	EventType string
	// DeliveryID is the X-GitHub-Delivery header value; may be empty.
	DeliveryID string
}

type IngestResult struct {
	Event    *model.Event
	Position int
}

type IngestService interface {
	Ingest(ctx context.Context, params IngestParams) (*IngestResult, error)
}

var ErrInvalidPayload = errors.New("payload is not a JSON object")

type ingestService struct {
	store  store.EventLogStore
	mapper mapper.EventMapper
	logger *slog.Logger
}

func NewIngestService(eventLog store.EventLogStore, eventMapper mapper.EventMapper, logger *slog.Logger) IngestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ingestService{
		store:  eventLog,
		mapper: eventMapper,
		logger: logger,
	}
}

// Ingest normalizes a webhook delivery into an Event and appends it to the
// log. Exactly one append happens per accepted call; duplicate deliveries are
// stored again, not deduplicated.
func (s *ingestService) Ingest(ctx context.Context, params IngestParams) (*IngestResult, error) {
	if len(params.Body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidPayload)
	}

	var payload model.Payload
	if err := json.Unmarshal(params.Body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: null payload", ErrInvalidPayload)
	}

	eventType := params.EventType
	if eventType == "" {
		eventType = model.EventTypeUnknown
	}

	fields := s.mapper.Fields(payload)

	event := &model.Event{
		ID:         id.New(),
		DeliveryID: params.DeliveryID,
		ReceivedAt: time.Now().UTC(),
		EventType:  eventType,
		Action:     fields.Action,
		Repository: fields.Repository,
		Sender:     fields.Sender,
		Payload:    payload,
	}

	position, err := s.store.Append(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("appending event: %w", err)
	}

	s.logger.InfoContext(ctx, "event received",
		"event_id", event.ID,
		"event_type", event.EventType,
		"repository", event.Repository,
		"position", position,
	)

	return &IngestResult{Event: event, Position: position}, nil
}
