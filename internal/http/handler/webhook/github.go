package webhook

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/runsight/runsight/common/logger"
	"github.com/runsight/runsight/internal/service"
)

// GitHubWebhookHandler receives GitHub webhook deliveries and hands them to
// the ingest service. Deliveries are accepted as-is: no signature check, no
// event-type allowlist.
type GitHubWebhookHandler struct {
	ingest service.IngestService
}

func NewGitHubWebhookHandler(ingest service.IngestService) *GitHubWebhookHandler {
	return &GitHubWebhookHandler{ingest: ingest}
}

func (h *GitHubWebhookHandler) HandleEvent(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		slog.WarnContext(c.Request.Context(), "failed to read webhook body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	eventType := c.GetHeader("X-GitHub-Event")
	deliveryID := c.GetHeader("X-GitHub-Delivery")

	fields := logger.LogFields{Component: "webhook"}
	if eventType != "" {
		fields.EventType = logger.Ptr(eventType)
	}
	if deliveryID != "" {
		fields.DeliveryID = logger.Ptr(deliveryID)
	}
	ctx := logger.WithLogFields(c.Request.Context(), fields)

	result, err := h.ingest.Ingest(ctx, service.IngestParams{
		Body:       body,
		EventType:  eventType,
		DeliveryID: deliveryID,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidPayload) {
			slog.WarnContext(ctx, "webhook payload rejected",
				"error", err,
				"body", logger.Truncate(string(body), 256),
			)
			c.JSON(http.StatusBadRequest, gin.H{"error": "payload must be a JSON object"})
			return
		}
		slog.ErrorContext(ctx, "failed to store webhook event", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store event"})
		return
	}

	slog.InfoContext(ctx, "github webhook processed",
		"event_id", result.Event.ID,
		"event_type", result.Event.EventType,
		"position", result.Position,
	)
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
