package handler

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/driftmind/driftmind/internal/config"
	"github.com/driftmind/driftmind/internal/download"
	apperrors "github.com/driftmind/driftmind/internal/errors"
	"github.com/driftmind/driftmind/internal/logger"
	"github.com/driftmind/driftmind/internal/types"
	"github.com/driftmind/driftmind/internal/types/interfaces"
)

// DownloadHandler mints download tokens and streams the original blob back
// to a holder of a valid one (spec.md §6 download endpoints).
type DownloadHandler struct {
	tokens  interfaces.DownloadTokenService
	index   interfaces.IndexGateway
	blob    interfaces.BlobGateway
	blobCfg config.BlobConfig
}

// NewDownloadHandler creates a DownloadHandler.
func NewDownloadHandler(tokens interfaces.DownloadTokenService, index interfaces.IndexGateway, blob interfaces.BlobGateway, blobCfg config.BlobConfig) *DownloadHandler {
	return &DownloadHandler{tokens: tokens, index: index, blob: blob, blobCfg: blobCfg}
}

// MintToken godoc
// @Summary      Mint a download token
// @Description  Issues a short-lived token scoped to one document's original file
// @Tags         download
// @Accept       json
// @Produce      json
// @Param        request  body      types.DownloadTokenRequest  true  "token request"
// @Success      200      {object}  types.DownloadTokenResponse
// @Failure      400      {object}  map[string]interface{}
// @Router       /download/token [post]
func (h *DownloadHandler) MintToken(c *gin.Context) {
	var req types.DownloadTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError(err.Error()))
		return
	}

	exists, err := h.index.DocumentExists(c.Request.Context(), req.DocumentID)
	if err != nil {
		c.Error(apperrors.NewInternalServerError("check document exists: " + err.Error()))
		return
	}
	if !exists {
		c.Error(apperrors.NewNotFoundError("document not found"))
		return
	}

	token, expiresAt, err := h.tokens.Mint(req.DocumentID, time.Duration(req.ExpirationMinutes)*time.Minute)
	if err != nil {
		c.Error(apperrors.NewBadRequestError(err.Error()))
		return
	}

	c.JSON(200, types.DownloadTokenResponse{Token: token, ExpiresAt: expiresAt})
}

// DownloadFile godoc
// @Summary      Download a document's original file
// @Description  Streams the original file's bytes given a valid download token
// @Tags         download
// @Accept       json
// @Produce      octet-stream
// @Param        request  body  types.DownloadFileRequest  true  "download request"
// @Success      200
// @Failure      400  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      410  {object}  map[string]interface{}
// @Router       /download/file [post]
func (h *DownloadHandler) DownloadFile(c *gin.Context) {
	var req types.DownloadFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError(err.Error()))
		return
	}

	documentID, err := h.tokens.Verify(req.Token)
	if err != nil {
		if errors.Is(err, download.ErrTokenExpired) {
			c.Error(apperrors.NewGoneError("download token expired"))
		} else {
			c.Error(apperrors.NewUnauthorizedError("invalid download token"))
		}
		return
	}

	chunk0s, err := h.index.GetChunk0s(c.Request.Context(), []string{documentID})
	if err != nil {
		c.Error(apperrors.NewInternalServerError("look up document: " + err.Error()))
		return
	}
	chunk0, ok := chunk0s[documentID]
	if !ok || chunk0.BlobPath == "" {
		c.Error(apperrors.NewNotFoundError("document not found"))
		return
	}

	reader, err := h.blob.Download(c.Request.Context(), h.blobCfg.Container, chunk0.BlobPath)
	if err != nil {
		c.Error(apperrors.NewInternalServerError("download blob: " + err.Error()))
		return
	}
	defer reader.Close()

	contentType := chunk0.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", chunk0.OriginalFileName))
	c.Status(200)
	c.Writer.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		logger.Warn(c.Request.Context(), "stream download failed", "error", err.Error())
	}
}
