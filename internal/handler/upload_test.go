package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/driftmind/driftmind/internal/errors"
	"github.com/driftmind/driftmind/internal/types"
	"github.com/driftmind/driftmind/internal/types/interfaces"
)

type fakeIngestPipeline struct {
	ingestResp *types.UploadResponse
	ingestErr  error
}

func (f *fakeIngestPipeline) Ingest(ctx context.Context, req interfaces.IngestRequest) (*types.UploadResponse, error) {
	return f.ingestResp, f.ingestErr
}

func (f *fakeIngestPipeline) DeleteDocument(ctx context.Context, documentID string) error {
	return nil
}

func newMultipartUpload(t *testing.T, fieldName, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(fieldName, fileName)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func newMultipartContext(method, path string, body *bytes.Buffer, contentType string) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, path, body)
	c.Request.Header.Set("Content-Type", contentType)
	return c, rec
}

func TestUpload_SynchronousIngestSucceeds(t *testing.T) {
	body, contentType := newMultipartUpload(t, "file", "doc.txt", "hello")
	c, rec := newMultipartContext(http.MethodPost, "/upload", body, contentType)

	h := NewUploadHandler(&fakeIngestPipeline{ingestResp: &types.UploadResponse{Success: true, DocumentID: "doc-1"}}, nil, 0)
	h.Upload(c)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "doc-1")
}

func TestUpload_MissingFileIsBadRequest(t *testing.T) {
	c, _ := newMultipartContext(http.MethodPost, "/upload", &bytes.Buffer{}, "multipart/form-data; boundary=x")

	h := NewUploadHandler(&fakeIngestPipeline{}, nil, 0)
	h.Upload(c)

	require.Len(t, c.Errors, 1)
}

func TestUpload_PipelineFailureMapsToErrorEnvelope(t *testing.T) {
	body, contentType := newMultipartUpload(t, "file", "doc.txt", "hello")
	c, rec := newMultipartContext(http.MethodPost, "/upload", body, contentType)

	h := NewUploadHandler(&fakeIngestPipeline{ingestErr: apperrors.NewBadRequestError("bad file")}, nil, 0)
	h.Upload(c)

	assert.Equal(t, 400, rec.Code)
}

func TestUploadTaskStatus_QueueDisabledIsNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/upload/tasks/abc", nil)

	h := NewUploadHandler(&fakeIngestPipeline{}, nil, 0)
	h.UploadTaskStatus(c)

	require.Len(t, c.Errors, 1)
	ae := apperrors.As(c.Errors.Last().Err)
	assert.Equal(t, apperrors.KindNotFound, ae.Kind)
}
