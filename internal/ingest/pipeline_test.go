package ingest

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftmind/driftmind/internal/config"
	apperrors "github.com/driftmind/driftmind/internal/errors"
	"github.com/driftmind/driftmind/internal/types"
	"github.com/driftmind/driftmind/internal/types/interfaces"
)

type fakeBlob struct {
	objects map[string][]byte
	failOn  string
}

func newFakeBlob() *fakeBlob { return &fakeBlob{objects: map[string][]byte{}} }

func (b *fakeBlob) Upload(ctx context.Context, container, key, contentType string, metadata map[string]string, body io.Reader, size int64) (string, error) {
	if key == b.failOn {
		return "", assertErr("forced upload failure")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	b.objects[key] = data
	return key, nil
}

func (b *fakeBlob) Download(ctx context.Context, container, key string) (io.ReadCloser, error) {
	data, ok := b.objects[key]
	if !ok {
		return nil, apperrors.NewNotFoundError("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *fakeBlob) Delete(ctx context.Context, container, key string) error {
	delete(b.objects, key)
	return nil
}

func (b *fakeBlob) Exists(ctx context.Context, container, key string) (bool, error) {
	_, ok := b.objects[key]
	return ok, nil
}

type fakeIndex struct {
	chunks    map[string][]types.DocumentChunk
	existing  map[string]bool
	failIndex bool
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{chunks: map[string][]types.DocumentChunk{}, existing: map[string]bool{}}
}

func (i *fakeIndex) Initialize(ctx context.Context) error { return nil }

func (i *fakeIndex) IndexChunks(ctx context.Context, chunks []types.DocumentChunk) (int, int, error) {
	if i.failIndex {
		return 0, len(chunks), assertErr("forced index failure")
	}
	if len(chunks) == 0 {
		return 0, 0, nil
	}
	docID := chunks[0].DocumentID
	i.chunks[docID] = append(i.chunks[docID], chunks...)
	i.existing[docID] = true
	return len(chunks), 0, nil
}

func (i *fakeIndex) KeywordSearch(ctx context.Context, query string, top int) ([]types.IndexHit, error) {
	return nil, nil
}
func (i *fakeIndex) VectorSearch(ctx context.Context, vector []float32, top int) ([]types.IndexHit, error) {
	return nil, nil
}
func (i *fakeIndex) HybridSearch(ctx context.Context, query string, vector []float32, top int, filterDocumentID string) ([]types.IndexHit, error) {
	return nil, nil
}

func (i *fakeIndex) GetChunk0s(ctx context.Context, documentIDs []string) (map[string]types.DocumentChunk, error) {
	out := map[string]types.DocumentChunk{}
	for _, id := range documentIDs {
		for _, c := range i.chunks[id] {
			if c.ChunkIndex == 0 {
				out[id] = c
			}
		}
	}
	return out, nil
}

func (i *fakeIndex) DocumentExists(ctx context.Context, documentID string) (bool, error) {
	return i.existing[documentID], nil
}

func (i *fakeIndex) DeleteDocument(ctx context.Context, documentID string) (bool, error) {
	delete(i.chunks, documentID)
	delete(i.existing, documentID)
	return true, nil
}

func (i *fakeIndex) GetChunkCount(ctx context.Context, documentID string) (int, error) {
	return len(i.chunks[documentID]), nil
}
func (i *fakeIndex) GetLastUpdated(ctx context.Context, documentID string) (time.Time, error) {
	return time.Time{}, nil
}
func (i *fakeIndex) GetTopChunks(ctx context.Context, documentID string, n int) ([]types.DocumentChunk, error) {
	return i.chunks[documentID], nil
}
func (i *fakeIndex) GetAdjacentChunks(ctx context.Context, documentID string, chunkIndex, k int) ([]types.DocumentChunk, error) {
	return nil, nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}
func (fakeEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}
func (fakeEmbedder) Dimensions() int    { return 3 }
func (fakeEmbedder) ModelName() string { return "fake" }

type fakeChunker struct{}

func (fakeChunker) Chunk(text string, chunkSize, chunkOverlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return []string{text}
}

type fakeExtractor struct{}

func (fakeExtractor) Extract(ctx context.Context, fileName, contentType string, body io.Reader) (string, bool, error) {
	raw, err := io.ReadAll(body)
	return string(raw), true, err
}

type assertErrType string

func (e assertErrType) Error() string { return string(e) }
func assertErr(msg string) error      { return assertErrType(msg) }

func newTestPipeline(blobGW *fakeBlob, index *fakeIndex) *Pipeline {
	return New(blobGW, index, fakeEmbedder{}, fakeChunker{}, fakeExtractor{}, nil,
		config.BlobConfig{Container: "docs", MaxFileSizeInMB: 10},
		config.IngestConfig{},
	)
}

func TestIngest_HappyPath(t *testing.T) {
	p := newTestPipeline(newFakeBlob(), newFakeIndex())
	resp, err := p.Ingest(context.Background(), interfaces.IngestRequest{
		FileName:    "notes.txt",
		ContentType: "text/plain",
		Body:        strings.NewReader("hello world, this is a test document"),
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.DocumentID)
	assert.Equal(t, 1, resp.ChunksCreated)
}

func TestIngest_RejectsDisallowedExtension(t *testing.T) {
	blobCfg := config.BlobConfig{Container: "docs", AllowedExt: []string{"txt", "md"}}
	p := New(newFakeBlob(), newFakeIndex(), fakeEmbedder{}, fakeChunker{}, fakeExtractor{}, nil, blobCfg, config.IngestConfig{})
	_, err := p.Ingest(context.Background(), interfaces.IngestRequest{
		FileName: "virus.exe",
		Body:     strings.NewReader("binary"),
	})
	require.Error(t, err)
	ae := apperrors.As(err)
	assert.Equal(t, apperrors.KindValidationFailed, ae.Kind)
}

func TestIngest_DuplicateDesiredIDReturnsConflict(t *testing.T) {
	index := newFakeIndex()
	index.existing["doc-1"] = true
	p := newTestPipeline(newFakeBlob(), index)
	_, err := p.Ingest(context.Background(), interfaces.IngestRequest{
		FileName:          "a.txt",
		DesiredDocumentID: "doc-1",
		Body:              strings.NewReader("content"),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.As(err).Kind)
}

func TestIngest_EmptyExtractedTextRejected(t *testing.T) {
	p := newTestPipeline(newFakeBlob(), newFakeIndex())
	_, err := p.Ingest(context.Background(), interfaces.IngestRequest{
		FileName: "empty.txt",
		Body:     strings.NewReader("   "),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidationFailed, apperrors.As(err).Kind)
}

func TestIngest_IndexFailureRollsBackUploadedBlob(t *testing.T) {
	blobGW := newFakeBlob()
	index := newFakeIndex()
	index.failIndex = true
	p := newTestPipeline(blobGW, index)

	_, err := p.Ingest(context.Background(), interfaces.IngestRequest{
		FileName: "notes.txt",
		Body:     strings.NewReader("some real content here"),
	})
	require.Error(t, err)
	assert.Empty(t, blobGW.objects, "uploaded blob should have been rolled back")
}

func TestDeleteDocument_RemovesChunksAndBlobs(t *testing.T) {
	blobGW := newFakeBlob()
	index := newFakeIndex()
	p := newTestPipeline(blobGW, index)

	resp, err := p.Ingest(context.Background(), interfaces.IngestRequest{
		FileName: "notes.txt",
		Body:     strings.NewReader("some real content here"),
	})
	require.NoError(t, err)

	require.NoError(t, p.DeleteDocument(context.Background(), resp.DocumentID))
	exists, err := index.DocumentExists(context.Background(), resp.DocumentID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeleteDocument_NonExistentIsNotAnError(t *testing.T) {
	p := newTestPipeline(newFakeBlob(), newFakeIndex())
	assert.NoError(t, p.DeleteDocument(context.Background(), "never-existed"))
}
