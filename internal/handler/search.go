package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/driftmind/driftmind/internal/errors"
	"github.com/driftmind/driftmind/internal/logger"
	"github.com/driftmind/driftmind/internal/orchestrator"
	"github.com/driftmind/driftmind/internal/types"
	"github.com/driftmind/driftmind/internal/types/interfaces"
)

// SearchHandler exposes the Search Orchestrator over HTTP (spec.md §6).
type SearchHandler struct {
	orchestrator interfaces.SearchOrchestrator
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(orchestrator interfaces.SearchOrchestrator) *SearchHandler {
	return &SearchHandler{orchestrator: orchestrator}
}

// Search godoc
// @Summary      Search documents
// @Description  Runs the retrieval pipeline (expand, embed, hybrid fetch, score, filter, diversify, history-enhance, optionally answer) over ingested documents
// @Tags         search
// @Accept       json
// @Produce      json
// @Param        request  body      types.SearchRequest   true  "search request"
// @Success      200      {object}  types.SearchResponse
// @Failure      400      {object}  map[string]interface{}
// @Router       /search [post]
func (h *SearchHandler) Search(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(c.Request.Context(), "invalid search request", "error", err)
		c.Error(apperrors.NewBadRequestError(err.Error()))
		return
	}

	// Re-validate before delegating so a validation failure (400) can be
	// told apart from a pipeline failure (500): the orchestrator never
	// returns a Go error, only a SearchResponse with success=false, which
	// doesn't carry enough information on its own (spec.md §6, §7).
	if err := orchestrator.ValidateRequest(req); err != nil {
		c.Error(apperrors.NewBadRequestError(err.Error()))
		return
	}

	resp := h.orchestrator.Search(c.Request.Context(), req)
	if !resp.Success {
		c.Error(apperrors.NewInternalServerError(resp.Message))
		return
	}
	c.JSON(200, resp)
}
