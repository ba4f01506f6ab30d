package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	apperrors "github.com/driftmind/driftmind/internal/errors"
	"github.com/driftmind/driftmind/internal/types"
	"github.com/driftmind/driftmind/internal/types/interfaces"
)

// documentLister is the subset of *registry.Registry this handler needs,
// declared locally so it can be faked in tests without a real database.
type documentLister interface {
	List(ctx context.Context) ([]types.DocumentSummary, error)
}

// DocumentsHandler exposes document listing and deletion (spec.md §6, §8).
type DocumentsHandler struct {
	pipeline interfaces.IngestPipeline
	registry documentLister
}

// NewDocumentsHandler creates a DocumentsHandler.
func NewDocumentsHandler(pipeline interfaces.IngestPipeline, reg documentLister) *DocumentsHandler {
	return &DocumentsHandler{pipeline: pipeline, registry: reg}
}

// List godoc
// @Summary      List ingested documents
// @Description  Returns every document's summary (name, type, size, chunk count, last updated)
// @Tags         documents
// @Produce      json
// @Success      200  {object}  types.DocumentListResponse
// @Router       /documents [get]
func (h *DocumentsHandler) List(c *gin.Context) {
	summaries, err := h.registry.List(c.Request.Context())
	if err != nil {
		c.Error(apperrors.NewInternalServerError("list documents: " + err.Error()))
		return
	}

	c.JSON(200, gin.H{
		"documents": summaries,
		"total":     len(summaries),
	})
}

// Delete godoc
// @Summary      Delete a document
// @Description  Removes a document's index entries, blobs and registry summary. Deleting an already-deleted or unknown document id is not an error.
// @Tags         documents
// @Produce      json
// @Param        id  path  string  true  "document id"
// @Success      200  {object}  map[string]interface{}
// @Router       /documents/{id} [delete]
func (h *DocumentsHandler) Delete(c *gin.Context) {
	documentID := c.Param("id")
	if documentID == "" {
		c.Error(apperrors.NewBadRequestError("document id is required"))
		return
	}

	if err := h.pipeline.DeleteDocument(c.Request.Context(), documentID); err != nil {
		ae := apperrors.As(err)
		c.JSON(ae.Status, gin.H{"code": ae.Status, "msg": ae.Message, "success": false})
		return
	}

	c.JSON(200, gin.H{"code": 0, "msg": "success", "success": true})
}
