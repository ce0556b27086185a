package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/runsight/runsight/internal/git"
	"github.com/runsight/runsight/internal/service"
)

// ChangeHandler exposes git change analysis over HTTP. Analysis failures are
// mapped onto distinct status codes so callers can tell a bad ref from a
// broken checkout from a slow repository.
type ChangeHandler struct {
	query service.QueryService
}

func NewChangeHandler(query service.QueryService) *ChangeHandler {
	return &ChangeHandler{query: query}
}

func (h *ChangeHandler) Analyze(c *gin.Context) {
	base := c.Query("base")
	if base == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "base query parameter is required"})
		return
	}

	includeDiff := false
	if raw := c.Query("include_diff"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "include_diff must be a boolean"})
			return
		}
		includeDiff = parsed
	}

	maxDiffLines := 0
	if raw := c.Query("max_diff_lines"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_diff_lines must be an integer"})
			return
		}
		maxDiffLines = parsed
	}

	summary, err := h.query.AnalyzeChanges(c.Request.Context(), service.AnalyzeParams{
		BaseRef:      base,
		IncludeDiff:  includeDiff,
		MaxDiffLines: maxDiffLines,
	})
	if err != nil {
		h.writeAnalysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *ChangeHandler) writeAnalysisError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, service.ErrBaseRefRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "base query parameter is required"})
	case errors.Is(err, git.ErrUnknownRef):
		slog.WarnContext(ctx, "change analysis rejected", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown git ref"})
	case errors.Is(err, git.ErrNotARepository):
		slog.WarnContext(ctx, "change analysis rejected", "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "directory is not a git repository"})
	case errors.Is(err, git.ErrTimeout):
		slog.ErrorContext(ctx, "change analysis timed out", "error", err)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "git operation timed out"})
	default:
		slog.ErrorContext(ctx, "change analysis failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "git invocation failed"})
	}
}
