package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/runsight/runsight/internal/http/dto"
	"github.com/runsight/runsight/internal/service"
)

// EventHandler serves the read side of the event log: recent deliveries and
// per-workflow status rollups.
type EventHandler struct {
	query service.QueryService
}

func NewEventHandler(query service.QueryService) *EventHandler {
	return &EventHandler{query: query}
}

// Recent returns the most recent events, newest first. An absent, zero or
// out-of-range limit returns everything the log holds.
func (h *EventHandler) Recent(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = parsed
	}

	events, err := h.query.RecentEvents(c.Request.Context(), limit)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to read events", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read events"})
		return
	}

	c.JSON(http.StatusOK, dto.RecentEventsResponse{
		Events: events,
		Count:  len(events),
	})
}

// WorkflowStatus returns the status rollup for every workflow seen so far,
// or for a single workflow when the name query parameter is set.
func (h *EventHandler) WorkflowStatus(c *gin.Context) {
	name := c.Query("name")

	statuses, err := h.query.WorkflowStatuses(c.Request.Context(), name)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to compute workflow status", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute workflow status"})
		return
	}

	c.JSON(http.StatusOK, dto.WorkflowStatusResponse{
		Workflows: statuses,
		Count:     len(statuses),
	})
}
