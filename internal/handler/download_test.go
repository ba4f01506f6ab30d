package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftmind/driftmind/internal/config"
	"github.com/driftmind/driftmind/internal/download"
	apperrors "github.com/driftmind/driftmind/internal/errors"
	"github.com/driftmind/driftmind/internal/types"
)

type fakeTokens struct {
	mintToken string
	mintExp   time.Time
	mintErr   error
	verifyDoc string
	verifyErr error
}

func (f *fakeTokens) Mint(documentID string, expiration time.Duration) (string, time.Time, error) {
	return f.mintToken, f.mintExp, f.mintErr
}

func (f *fakeTokens) Verify(token string) (string, error) {
	return f.verifyDoc, f.verifyErr
}

type fakeIndexGateway struct {
	existsResult bool
	existsErr    error
	chunk0s      map[string]types.DocumentChunk
	chunk0sErr   error
}

func (f *fakeIndexGateway) Initialize(ctx context.Context) error { return nil }
func (f *fakeIndexGateway) IndexChunks(ctx context.Context, chunks []types.DocumentChunk) (int, int, error) {
	return 0, 0, nil
}
func (f *fakeIndexGateway) KeywordSearch(ctx context.Context, query string, top int) ([]types.IndexHit, error) {
	return nil, nil
}
func (f *fakeIndexGateway) VectorSearch(ctx context.Context, vector []float32, top int) ([]types.IndexHit, error) {
	return nil, nil
}
func (f *fakeIndexGateway) HybridSearch(ctx context.Context, query string, vector []float32, top int, filterDocumentID string) ([]types.IndexHit, error) {
	return nil, nil
}
func (f *fakeIndexGateway) GetChunk0s(ctx context.Context, documentIDs []string) (map[string]types.DocumentChunk, error) {
	return f.chunk0s, f.chunk0sErr
}
func (f *fakeIndexGateway) DocumentExists(ctx context.Context, documentID string) (bool, error) {
	return f.existsResult, f.existsErr
}
func (f *fakeIndexGateway) DeleteDocument(ctx context.Context, documentID string) (bool, error) {
	return true, nil
}
func (f *fakeIndexGateway) GetChunkCount(ctx context.Context, documentID string) (int, error) {
	return 0, nil
}
func (f *fakeIndexGateway) GetLastUpdated(ctx context.Context, documentID string) (time.Time, error) {
	return time.Time{}, nil
}
func (f *fakeIndexGateway) GetTopChunks(ctx context.Context, documentID string, n int) ([]types.DocumentChunk, error) {
	return nil, nil
}
func (f *fakeIndexGateway) GetAdjacentChunks(ctx context.Context, documentID string, chunkIndex, k int) ([]types.DocumentChunk, error) {
	return nil, nil
}

type fakeBlobGateway struct {
	downloadBody string
	downloadErr  error
}

func (f *fakeBlobGateway) Upload(ctx context.Context, container, key, contentType string, metadata map[string]string, body io.Reader, size int64) (string, error) {
	return key, nil
}
func (f *fakeBlobGateway) Download(ctx context.Context, container, key string) (io.ReadCloser, error) {
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return io.NopCloser(bytes.NewReader([]byte(f.downloadBody))), nil
}
func (f *fakeBlobGateway) Delete(ctx context.Context, container, key string) error { return nil }
func (f *fakeBlobGateway) Exists(ctx context.Context, container, key string) (bool, error) {
	return true, nil
}

func TestMintToken_ReturnsTokenForExistingDocument(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	tokens := &fakeTokens{mintToken: "tok-123", mintExp: exp}
	index := &fakeIndexGateway{existsResult: true}
	h := NewDownloadHandler(tokens, index, &fakeBlobGateway{}, config.BlobConfig{})
	c, rec := newTestContext([]byte(`{"document_id":"doc-1","expiration_minutes":5}`), http.MethodPost, "/download/token")

	h.MintToken(c)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "tok-123")
}

func TestMintToken_UnknownDocumentIsNotFound(t *testing.T) {
	tokens := &fakeTokens{}
	index := &fakeIndexGateway{existsResult: false}
	h := NewDownloadHandler(tokens, index, &fakeBlobGateway{}, config.BlobConfig{})
	c, _ := newTestContext([]byte(`{"document_id":"doc-1"}`), http.MethodPost, "/download/token")

	h.MintToken(c)

	require.Len(t, c.Errors, 1)
}

func TestDownloadFile_StreamsBlobForValidToken(t *testing.T) {
	tokens := &fakeTokens{verifyDoc: "doc-1"}
	index := &fakeIndexGateway{chunk0s: map[string]types.DocumentChunk{
		"doc-1": {BlobPath: "originals/doc-1", ContentType: "text/plain", OriginalFileName: "a.txt"},
	}}
	blob := &fakeBlobGateway{downloadBody: "hello world"}
	h := NewDownloadHandler(tokens, index, blob, config.BlobConfig{})
	c, rec := newTestContext([]byte(`{"token":"tok-123"}`), http.MethodPost, "/download/file")

	h.DownloadFile(c)

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "hello world", rec.Body.String())
}

func TestDownloadFile_InvalidTokenIsUnauthorized(t *testing.T) {
	tokens := &fakeTokens{verifyErr: errors.New("malformed token")}
	h := NewDownloadHandler(tokens, &fakeIndexGateway{}, &fakeBlobGateway{}, config.BlobConfig{})
	c, _ := newTestContext([]byte(`{"token":"bad"}`), http.MethodPost, "/download/file")

	h.DownloadFile(c)

	require.Len(t, c.Errors, 1)
	ae := apperrors.As(c.Errors.Last().Err)
	assert.Equal(t, 401, ae.Status)
}

func TestDownloadFile_ExpiredTokenIsGone(t *testing.T) {
	tokens := &fakeTokens{verifyErr: download.ErrTokenExpired}
	h := NewDownloadHandler(tokens, &fakeIndexGateway{}, &fakeBlobGateway{}, config.BlobConfig{})
	c, _ := newTestContext([]byte(`{"token":"expired"}`), http.MethodPost, "/download/file")

	h.DownloadFile(c)

	require.Len(t, c.Errors, 1)
	ae := apperrors.As(c.Errors.Last().Err)
	assert.Equal(t, 410, ae.Status)
}

func TestDownloadFile_UnknownDocumentIsNotFound(t *testing.T) {
	tokens := &fakeTokens{verifyDoc: "doc-1"}
	index := &fakeIndexGateway{chunk0s: map[string]types.DocumentChunk{}}
	h := NewDownloadHandler(tokens, index, &fakeBlobGateway{}, config.BlobConfig{})
	c, _ := newTestContext([]byte(`{"token":"tok-123"}`), http.MethodPost, "/download/file")

	h.DownloadFile(c)

	require.Len(t, c.Errors, 1)
}
