package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/driftmind/driftmind/internal/errors"
	"github.com/driftmind/driftmind/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeOrchestrator struct {
	response *types.SearchResponse
}

func (f *fakeOrchestrator) Search(ctx context.Context, req types.SearchRequest) *types.SearchResponse {
	return f.response
}

func newTestContext(body []byte, method, path string) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, path, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, rec
}

func TestSearch_ReturnsOrchestratorResponse(t *testing.T) {
	h := NewSearchHandler(&fakeOrchestrator{response: &types.SearchResponse{Query: "q", Success: true, TotalResults: 2}})
	c, rec := newTestContext([]byte(`{"query":"q"}`), http.MethodPost, "/search")

	h.Search(c)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_results":2`)
}

func TestSearch_InvalidJSONIsBadRequest(t *testing.T) {
	h := NewSearchHandler(&fakeOrchestrator{})
	c, _ := newTestContext([]byte(`not json`), http.MethodPost, "/search")

	h.Search(c)

	require.Len(t, c.Errors, 1)
	ae := apperrors.As(c.Errors.Last().Err)
	assert.Equal(t, 400, ae.Status)
}

func TestSearch_EmptyQueryIsBadRequestWithoutCallingOrchestrator(t *testing.T) {
	h := NewSearchHandler(&fakeOrchestrator{response: &types.SearchResponse{Success: true}})
	c, _ := newTestContext([]byte(`{"query":""}`), http.MethodPost, "/search")

	h.Search(c)

	require.Len(t, c.Errors, 1)
	ae := apperrors.As(c.Errors.Last().Err)
	assert.Equal(t, 400, ae.Status)
}

func TestSearch_MaxResultsOutOfRangeIsBadRequest(t *testing.T) {
	h := NewSearchHandler(&fakeOrchestrator{response: &types.SearchResponse{Success: true}})
	c, _ := newTestContext([]byte(`{"query":"q","max_results":51}`), http.MethodPost, "/search")

	h.Search(c)

	require.Len(t, c.Errors, 1)
	ae := apperrors.As(c.Errors.Last().Err)
	assert.Equal(t, 400, ae.Status)
}

func TestSearch_OrchestratorFailureMapsTo500(t *testing.T) {
	h := NewSearchHandler(&fakeOrchestrator{response: &types.SearchResponse{Query: "q", Success: false, Message: "upstream timed out"}})
	c, _ := newTestContext([]byte(`{"query":"q"}`), http.MethodPost, "/search")

	h.Search(c)

	require.Len(t, c.Errors, 1)
	ae := apperrors.As(c.Errors.Last().Err)
	assert.Equal(t, 500, ae.Status)
}
