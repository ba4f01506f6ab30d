// Package types holds the data model shared across every component:
// DocumentChunk, SearchResult, SearchRequest and friends (spec.md §3).
package types

import (
	"strconv"
	"time"
)

// DocumentChunk is the unit of retrieval. Per-document metadata
// (OriginalFileName, ContentType, FileSizeBytes, BlobPath, BlobContainer,
// TextContentBlobPath) is carried ONLY on ChunkIndex == 0; invariant 2.
type DocumentChunk struct {
	ID         string `json:"id"`          // "<documentId>_<chunkIndex>"
	DocumentID string `json:"document_id"`
	ChunkIndex int    `json:"chunk_index"` // 0-based, dense, no gaps

	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"` // length == D for every chunk
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Chunk-0-only fields. Left zero-valued on every other chunk.
	OriginalFileName   string `json:"original_file_name,omitempty"`
	ContentType        string `json:"content_type,omitempty"`
	FileSizeBytes      int64  `json:"file_size_bytes,omitempty"`
	BlobPath           string `json:"blob_path,omitempty"`
	BlobContainer      string `json:"blob_container,omitempty"`
	TextContentBlobPath string `json:"text_content_blob_path,omitempty"`
}

// IsRoot reports whether this chunk is chunk 0, the sole authority for
// per-document metadata (invariant 2).
func (c *DocumentChunk) IsRoot() bool {
	return c.ChunkIndex == 0
}

// StripDocumentMetadata clears the chunk-0-only fields, so a chunk with
// index > 0 it is applied to satisfies invariant 2.
func (c *DocumentChunk) StripDocumentMetadata() {
	c.OriginalFileName = ""
	c.ContentType = ""
	c.FileSizeBytes = 0
	c.BlobPath = ""
	c.BlobContainer = ""
	c.TextContentBlobPath = ""
}

// ChunkID builds the stable, globally-unique id for (documentID, chunkIndex).
func ChunkID(documentID string, chunkIndex int) string {
	return documentID + "_" + strconv.Itoa(chunkIndex)
}
