package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/driftmind/driftmind/internal/analytics"
	apperrors "github.com/driftmind/driftmind/internal/errors"
)

// AnalyticsHandler exposes the local usage analytics export (SPEC_FULL
// "Local usage analytics"). Ambient observability only: never consulted for ranking.
type AnalyticsHandler struct {
	sink *analytics.Sink
}

// NewAnalyticsHandler creates an AnalyticsHandler. sink may be nil when
// analytics is disabled (config.Analytics.Enabled == false).
func NewAnalyticsHandler(sink *analytics.Sink) *AnalyticsHandler {
	return &AnalyticsHandler{sink: sink}
}

// Export godoc
// @Summary      Export search telemetry
// @Description  Streams every recorded search event as a Parquet file
// @Tags         system
// @Produce      application/octet-stream
// @Success      200
// @Failure      404  {object}  map[string]interface{}
// @Router       /system/analytics/export [get]
func (h *AnalyticsHandler) Export(c *gin.Context) {
	if h.sink == nil {
		c.Error(apperrors.NewNotFoundError("analytics is not enabled"))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="search_events.parquet"`)
	c.Status(200)
	c.Writer.Header().Set("Content-Type", "application/octet-stream")
	if err := h.sink.ExportParquet(c.Request.Context(), c.Writer); err != nil {
		c.Error(apperrors.NewInternalServerError("export analytics: " + err.Error()))
	}
}
