package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/driftmind/driftmind/internal/errors"
	"github.com/driftmind/driftmind/internal/types"
	"github.com/driftmind/driftmind/internal/types/interfaces"
)

type fakeRegistry struct {
	summaries []types.DocumentSummary
	err       error
}

func (f *fakeRegistry) List(ctx context.Context) ([]types.DocumentSummary, error) {
	return f.summaries, f.err
}

type stubPipeline struct {
	deletedID string
	deleteErr error
}

func (s *stubPipeline) Ingest(ctx context.Context, req interfaces.IngestRequest) (*types.UploadResponse, error) {
	return nil, nil
}

func (s *stubPipeline) DeleteDocument(ctx context.Context, documentID string) error {
	s.deletedID = documentID
	return s.deleteErr
}

func TestDocumentsList_ReturnsSummaries(t *testing.T) {
	reg := &fakeRegistry{summaries: []types.DocumentSummary{{DocumentID: "d1"}, {DocumentID: "d2"}}}
	h := NewDocumentsHandler(&stubPipeline{}, reg)
	c, rec := newTestContext(nil, http.MethodGet, "/documents")

	h.List(c)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":2`)
}

func TestDocumentsDelete_MissingIDReturnsError(t *testing.T) {
	h := NewDocumentsHandler(&stubPipeline{}, &fakeRegistry{})
	c, _ := newTestContext(nil, http.MethodDelete, "/documents/")

	h.Delete(c)

	require.Len(t, c.Errors, 1)
	ae := apperrors.As(c.Errors.Last().Err)
	assert.Equal(t, apperrors.KindValidationFailed, ae.Kind)
}

func TestDocumentsDelete_Succeeds(t *testing.T) {
	stub := &stubPipeline{}
	h := NewDocumentsHandler(stub, &fakeRegistry{})
	c, rec := newTestContext(nil, http.MethodDelete, "/documents/doc-1")
	c.Params = append(c.Params, gin.Param{Key: "id", Value: "doc-1"})

	h.Delete(c)

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "doc-1", stub.deletedID)
}
