// Package ingest implements the Ingest Pipeline (spec.md §4.2): an ordered,
// all-or-nothing sequence from an uploaded file to indexed, embedded chunks,
// with rollback.go cleaning up anything already written on any later-step
// failure.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/driftmind/driftmind/internal/blob"
	"github.com/driftmind/driftmind/internal/common"
	"github.com/driftmind/driftmind/internal/config"
	apperrors "github.com/driftmind/driftmind/internal/errors"
	"github.com/driftmind/driftmind/internal/registry"
	"github.com/driftmind/driftmind/internal/security"
	"github.com/driftmind/driftmind/internal/tracing"
	"github.com/driftmind/driftmind/internal/types"
	"github.com/driftmind/driftmind/internal/types/interfaces"
)

const stage = "ingest"

// Pipeline implements interfaces.IngestPipeline, wiring together the Blob
// Gateway, Text Extractor, Chunker, Embedder and Index Gateway in the order
// spec.md §4.2 describes.
type Pipeline struct {
	blob      interfaces.BlobGateway
	index     interfaces.IndexGateway
	embedder  interfaces.Embedder
	chunker   interfaces.Chunker
	extractor interfaces.TextExtractor
	registry  *registry.Registry

	blobCfg   config.BlobConfig
	ingestCfg config.IngestConfig
}

// New builds a Pipeline from its collaborators.
func New(
	blobGW interfaces.BlobGateway,
	index interfaces.IndexGateway,
	embedder interfaces.Embedder,
	chunker interfaces.Chunker,
	extractor interfaces.TextExtractor,
	reg *registry.Registry,
	blobCfg config.BlobConfig,
	ingestCfg config.IngestConfig,
) *Pipeline {
	if ingestCfg.DefaultChunkSize <= 0 {
		ingestCfg.DefaultChunkSize = 300
	}
	if ingestCfg.DefaultChunkOverlap <= 0 {
		ingestCfg.DefaultChunkOverlap = 20
	}
	if ingestCfg.MaxIDGenerationTries <= 0 {
		ingestCfg.MaxIDGenerationTries = 5
	}
	return &Pipeline{
		blob:      blobGW,
		index:     index,
		embedder:  embedder,
		chunker:   chunker,
		extractor: extractor,
		registry:  reg,
		blobCfg:   blobCfg,
		ingestCfg: ingestCfg,
	}
}

// Ingest runs spec.md §4.2's ordered steps a-h, rolling back everything
// already written as soon as a later step fails.
func (p *Pipeline) Ingest(ctx context.Context, req interfaces.IngestRequest) (resp *types.UploadResponse, err error) {
	ctx, endSpan := tracing.StartSpan(ctx, "ingest", "ingest", attribute.String("file_name", req.FileName))
	defer func() { endSpan(err) }()

	// Buffer the body up front: it is read twice (once for the original
	// blob upload, once for text extraction), and the caller's io.Reader
	// cannot be rewound.
	raw, err := readAll(req.Body)
	if err != nil {
		return nil, apperrors.Wrap(fmt.Errorf("read upload body: %w", err))
	}
	if req.Size <= 0 {
		req.Size = int64(len(raw))
	}

	// step (a): validate type and size.
	if err := p.validateFile(req.FileName, req.Size); err != nil {
		return nil, err
	}
	meta, ok := security.ValidateInput(req.UserMetadata)
	if !ok {
		return nil, apperrors.NewBadRequestError("metadata contains invalid characters")
	}
	req.UserMetadata = meta

	documentID, err := p.resolveDocumentID(ctx, req.DesiredDocumentID)
	if err != nil {
		return nil, err
	}

	rb := newRollback(p)
	defer rb.run(ctx)

	chunkSize, chunkOverlap := req.ChunkSize, req.ChunkOverlap
	if chunkSize <= 0 {
		chunkSize = p.ingestCfg.DefaultChunkSize
	}
	if chunkOverlap <= 0 {
		chunkOverlap = p.ingestCfg.DefaultChunkOverlap
	}

	objectKey := blob.ObjectKey(documentID, req.FileName)
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// step (b): upload the original to blob storage.
	blobPath, err := p.blob.Upload(ctx, p.blobCfg.Container, objectKey, contentType, map[string]string{
		"documentId":             documentID,
		"originalFileName":       blob.SanitizeFileName(req.FileName),
		"originalFileNameBase64": blob.EncodeOriginalFileName(req.FileName),
		"uploadedAt":             time.Now().UTC().Format(time.RFC3339),
	}, bytes.NewReader(raw), req.Size)
	if err != nil {
		return nil, apperrors.NewUpstreamError("upload original file", err)
	}
	rb.blobKeys = append(rb.blobKeys, objectKey)
	common.PipelineInfo(ctx, stage, "uploaded original", map[string]interface{}{"document_id": documentID, "blob_path": blobPath})

	// step (c): extract text.
	text, isNativeText, err := p.extractor.Extract(ctx, req.FileName, contentType, bytes.NewReader(raw))
	if err != nil {
		return nil, apperrors.NewGenerationFailedError("extract text: " + err.Error())
	}

	// step (d): non-native-text originals also get their extracted text
	// uploaded as a second blob.
	var textContentBlobPath string
	if !isNativeText {
		textKey := blob.TextContentKey(documentID, req.FileName)
		textContentBlobPath, err = p.blob.Upload(ctx, p.blobCfg.Container, textKey, "text/plain; charset=utf-8", map[string]string{
			"documentId": documentID,
		}, strings.NewReader(text), int64(len(text)))
		if err != nil {
			return nil, apperrors.NewUpstreamError("upload extracted text", err)
		}
		rb.blobKeys = append(rb.blobKeys, textKey)
	}

	// step (e): chunk.
	pieces := p.chunker.Chunk(text, chunkSize, chunkOverlap)
	if len(pieces) == 0 {
		return nil, apperrors.NewBadRequestError("no extractable text content in file")
	}

	// step (f): embed each chunk.
	vectors, err := p.embedder.BatchEmbed(ctx, pieces)
	if err != nil {
		return nil, apperrors.NewUpstreamError("embed chunks", err)
	}
	if len(vectors) != len(pieces) {
		return nil, apperrors.NewInternalServerError("embedder returned a mismatched vector count")
	}

	now := time.Now().UTC()
	chunks := make([]types.DocumentChunk, 0, len(pieces))
	for i, content := range pieces {
		chunk := types.DocumentChunk{
			ID:         types.ChunkID(documentID, i),
			DocumentID: documentID,
			ChunkIndex: i,
			Content:    content,
			Embedding:  vectors[i],
			Metadata:   req.UserMetadata,
			CreatedAt:  now,
		}
		if i == 0 {
			chunk.OriginalFileName = req.FileName
			chunk.ContentType = contentType
			chunk.FileSizeBytes = req.Size
			chunk.BlobPath = blobPath
			chunk.BlobContainer = p.blobCfg.Container
			chunk.TextContentBlobPath = textContentBlobPath
		}
		chunks = append(chunks, chunk)
	}

	// step (g): upload the chunk batch to the index.
	successCount, failureCount, err := p.index.IndexChunks(ctx, chunks)
	if err != nil || failureCount > 0 {
		if err == nil {
			err = fmt.Errorf("%d of %d chunks failed to index", failureCount, len(chunks))
		}
		return nil, apperrors.NewUpstreamError("index chunks", err)
	}
	rb.documentIndexed = true
	rb.documentID = documentID

	// step (h): verify the blobs this document's chunk-0 depends on still
	// exist; if not, the index entries are now dangling and must be undone.
	if err := p.verifyBlobs(ctx, blobPath, textContentBlobPath); err != nil {
		return nil, apperrors.NewTransientError("verify uploaded blobs", err)
	}

	if p.registry != nil {
		sample := content0(pieces)
		if regErr := p.registry.Upsert(ctx, chunks[0], len(chunks), sample); regErr != nil {
			common.PipelineWarn(ctx, stage, "registry upsert failed", map[string]interface{}{"document_id": documentID, "error": regErr.Error()})
		}
	}

	rb.committed = true
	common.PipelineInfo(ctx, stage, "ingest complete", map[string]interface{}{"document_id": documentID, "chunks": successCount})

	return &types.UploadResponse{
		Success:       true,
		DocumentID:    documentID,
		ChunksCreated: successCount,
	}, nil
}

// DeleteDocument removes a document's index entries, blobs and registry
// entry (spec.md §8's round-trip/idempotence contract: deleting an
// already-deleted or never-existing document is not an error).
func (p *Pipeline) DeleteDocument(ctx context.Context, documentID string) (err error) {
	ctx, endSpan := tracing.StartSpan(ctx, "ingest", "delete_document", attribute.String("document_id", documentID))
	defer func() { endSpan(err) }()

	chunk0s, err := p.index.GetChunk0s(ctx, []string{documentID})
	if err != nil {
		return apperrors.NewUpstreamError("look up document before delete", err)
	}
	chunk0, found := chunk0s[documentID]

	if _, err := p.index.DeleteDocument(ctx, documentID); err != nil {
		return apperrors.NewUpstreamError("delete document chunks", err)
	}

	if found {
		if chunk0.BlobPath != "" {
			if err := p.blob.Delete(ctx, p.blobCfg.Container, chunk0.BlobPath); err != nil {
				common.PipelineWarn(ctx, stage, "delete original blob failed", map[string]interface{}{"document_id": documentID, "error": err.Error()})
			}
		}
		if chunk0.TextContentBlobPath != "" {
			if err := p.blob.Delete(ctx, p.blobCfg.Container, chunk0.TextContentBlobPath); err != nil {
				common.PipelineWarn(ctx, stage, "delete text blob failed", map[string]interface{}{"document_id": documentID, "error": err.Error()})
			}
		}
	}

	if p.registry != nil {
		if err := p.registry.Delete(ctx, documentID); err != nil {
			common.PipelineWarn(ctx, stage, "registry delete failed", map[string]interface{}{"document_id": documentID, "error": err.Error()})
		}
	}

	return nil
}

// resolveDocumentID honors a caller-desired document ID if it is free,
// otherwise generates a fresh uuid, retrying on collision up to
// MaxIDGenerationTries (spec.md §4.2).
func (p *Pipeline) resolveDocumentID(ctx context.Context, desired string) (string, error) {
	if desired != "" {
		exists, err := p.index.DocumentExists(ctx, desired)
		if err != nil {
			return "", apperrors.NewUpstreamError("check document id uniqueness", err)
		}
		if exists {
			return "", apperrors.NewConflictError("document id already exists: " + desired)
		}
		return desired, nil
	}

	tries := p.ingestCfg.MaxIDGenerationTries
	for i := 0; i < tries; i++ {
		candidate := uuid.NewString()
		exists, err := p.index.DocumentExists(ctx, candidate)
		if err != nil {
			return "", apperrors.NewUpstreamError("check document id uniqueness", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", apperrors.NewGenerationFailedError(fmt.Sprintf("could not generate a unique document id in %d tries", tries))
}

// verifyBlobs confirms every required blob is still present after indexing,
// catching the race where a concurrent delete removed a blob mid-ingest.
func (p *Pipeline) verifyBlobs(ctx context.Context, paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		ok, err := p.blob.Exists(ctx, p.blobCfg.Container, path)
		if err != nil {
			return fmt.Errorf("check blob exists %q: %w", path, err)
		}
		if !ok {
			return fmt.Errorf("blob %q vanished during ingest", path)
		}
	}
	return nil
}

func readAll(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	return io.ReadAll(r)
}

func content0(pieces []string) string {
	if len(pieces) == 0 {
		return ""
	}
	if len(pieces[0]) > 500 {
		return pieces[0][:500]
	}
	return pieces[0]
}
