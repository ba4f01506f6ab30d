package handler

import (
	"mime/multipart"

	"github.com/gin-gonic/gin"

	apperrors "github.com/driftmind/driftmind/internal/errors"
	"github.com/driftmind/driftmind/internal/ingest"
	"github.com/driftmind/driftmind/internal/logger"
	"github.com/driftmind/driftmind/internal/types"
	"github.com/driftmind/driftmind/internal/types/interfaces"
)

// UploadHandler implements the Ingest Pipeline's HTTP surface: synchronous
// upload for small files and an async queue + polling path for large ones
// (SPEC_FULL §4.2 supplement, config.Ingest.AsyncThresholdMB).
type UploadHandler struct {
	pipeline       interfaces.IngestPipeline
	asyncQueue     *ingest.AsyncQueue
	asyncThreshold int64 // bytes
}

// NewUploadHandler creates an UploadHandler. asyncQueue may be nil, in
// which case every upload is processed synchronously regardless of size.
func NewUploadHandler(pipeline interfaces.IngestPipeline, asyncQueue *ingest.AsyncQueue, asyncThresholdMB int) *UploadHandler {
	return &UploadHandler{
		pipeline:       pipeline,
		asyncQueue:     asyncQueue,
		asyncThreshold: int64(asyncThresholdMB) * 1024 * 1024,
	}
}

// Upload godoc
// @Summary      Upload and ingest a document
// @Description  Validates, stores, extracts, chunks, embeds and indexes an uploaded file. Files at or above the configured async threshold are queued and return a pollable task_id instead.
// @Tags         ingest
// @Accept       multipart/form-data
// @Produce      json
// @Param        file        formData  file    true   "file to ingest"
// @Param        document_id formData  string  false  "caller-desired document id"
// @Param        metadata    formData  string  false  "free-form metadata string stored alongside each chunk"
// @Success      200  {object}  types.UploadResponse
// @Failure      400  {object}  map[string]interface{}
// @Router       /upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(apperrors.NewBadRequestError("file is required: " + err.Error()))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperrors.NewInternalServerError("open uploaded file: " + err.Error()))
		return
	}
	defer file.Close()

	req := interfaces.IngestRequest{
		FileName:          fileHeader.Filename,
		ContentType:       contentTypeOf(fileHeader),
		Size:              fileHeader.Size,
		Body:              file,
		DesiredDocumentID: c.PostForm("document_id"),
		UserMetadata:      c.PostForm("metadata"),
	}

	if h.asyncQueue != nil && h.asyncThreshold > 0 && fileHeader.Size >= h.asyncThreshold {
		taskID, err := h.asyncQueue.Enqueue(c.Request.Context(), req)
		if err != nil {
			c.Error(apperrors.NewInternalServerError("enqueue ingest task: " + err.Error()))
			return
		}
		c.JSON(202, types.UploadResponse{Success: true, TaskID: taskID})
		return
	}

	resp, err := h.pipeline.Ingest(c.Request.Context(), req)
	if err != nil {
		ae := apperrors.As(err)
		logger.Error(c.Request.Context(), "ingest failed", "error", ae.Error())
		c.JSON(ae.Status, gin.H{"code": ae.Status, "msg": ae.Message, "success": false})
		return
	}
	c.JSON(200, resp)
}

// UploadTaskStatus godoc
// @Summary      Poll an async ingest task
// @Description  Returns the current state of a queued ingest task
// @Tags         ingest
// @Produce      json
// @Param        id  path  string  true  "task id"
// @Success      200  {object}  types.IngestTaskStatus
// @Failure      404  {object}  map[string]interface{}
// @Router       /upload/tasks/{id} [get]
func (h *UploadHandler) UploadTaskStatus(c *gin.Context) {
	if h.asyncQueue == nil {
		c.Error(apperrors.NewNotFoundError("async ingest is not enabled"))
		return
	}

	taskID := c.Param("id")
	status, err := h.asyncQueue.Status(c.Request.Context(), taskID)
	if err != nil {
		c.Error(apperrors.NewInternalServerError("read task status: " + err.Error()))
		return
	}
	if status == nil {
		c.Error(apperrors.NewNotFoundError("unknown task id"))
		return
	}
	c.JSON(200, status)
}

func contentTypeOf(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
