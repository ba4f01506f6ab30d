// Package interfaces declares the contracts between the Search Orchestrator
// core and its external collaborators, so the orchestrator, ingest pipeline
// and handlers depend only on these interfaces and never on a concrete
// backend (§9 "Dependency-injection container" design note).
package interfaces

import (
	"context"
	"io"
	"time"

	"github.com/driftmind/driftmind/internal/types"
)

// IndexGateway is the contract with the external hybrid (keyword + vector)
// search backend (spec.md §4.6).
type IndexGateway interface {
	// Initialize ensures the index exists with ChunkSchema; if an existing
	// index lacks a field it is ALTER-added without data loss.
	Initialize(ctx context.Context) error

	// IndexChunks uploads/replaces by ID. Must not partially succeed silently.
	IndexChunks(ctx context.Context, chunks []types.DocumentChunk) (successCount, failureCount int, err error)

	KeywordSearch(ctx context.Context, query string, top int) ([]types.IndexHit, error)
	VectorSearch(ctx context.Context, vector []float32, top int) ([]types.IndexHit, error)

	// HybridSearch returns hits ranked by a backend fusion of lexical and
	// ANN retrieval. May return up to min(top*3, 100) hits.
	HybridSearch(ctx context.Context, query string, vector []float32, top int, filterDocumentID string) ([]types.IndexHit, error)

	// GetChunk0s returns the chunk-0 of each present documentID in ONE call.
	GetChunk0s(ctx context.Context, documentIDs []string) (map[string]types.DocumentChunk, error)

	DocumentExists(ctx context.Context, documentID string) (bool, error)

	// DeleteDocument deletes all chunks of the document; returns true iff
	// all deletes succeeded.
	DeleteDocument(ctx context.Context, documentID string) (bool, error)

	GetChunkCount(ctx context.Context, documentID string) (int, error)
	GetLastUpdated(ctx context.Context, documentID string) (time.Time, error)
	GetTopChunks(ctx context.Context, documentID string, n int) ([]types.DocumentChunk, error)
	GetAdjacentChunks(ctx context.Context, documentID string, chunkIndex, k int) ([]types.DocumentChunk, error)
}

// BlobGateway stores originals and extracted text, and fetches by key
// (spec.md §4, Blob Gateway row).
type BlobGateway interface {
	// Upload stores an object under container/key, with the given content
	// type and metadata (documentId, originalFileName, etc per §6), and
	// returns the final key actually used.
	Upload(ctx context.Context, container, key, contentType string, metadata map[string]string, body io.Reader, size int64) (string, error)
	Download(ctx context.Context, container, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, container, key string) error
	Exists(ctx context.Context, container, key string) (bool, error)
}

// Embedder maps text to a fixed-dimension float vector, with batching and
// an embedding cache (spec.md §5).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	BatchEmbed(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	ModelName() string
}

// Chunker splits text into overlapping, sentence-aware chunks (spec.md §4,
// Chunker row).
type Chunker interface {
	Chunk(text string, chunkSize, chunkOverlap int) []string
}

// TextExtractor pulls plain text out of an uploaded file (spec.md §1: "file
// text extraction" is an external collaborator specified only via this
// interface; full-text rendering of PDFs is an explicit Non-goal).
type TextExtractor interface {
	// Extract returns the plain-text content and whether the original is
	// already natively text (§4.2 step d: non-native-text originals get
	// their extracted text uploaded as a second blob).
	Extract(ctx context.Context, fileName, contentType string, body io.Reader) (text string, isNativeText bool, err error)
}

// RelevanceScorer is the pure (content, query, vectorScore) -> combined
// score function of spec.md §4.3.
type RelevanceScorer interface {
	Score(content, query string, vectorScore *float64) float64
}

// HistoryAnalyzer implements spec.md §4.4: the follow-up predicate, keyword
// extraction, document-reference extraction and related-topic detection.
type HistoryAnalyzer interface {
	IsFollowUp(query string) bool
	ExtractKeywords(history []types.ChatHistoryEntry) []string
	ExtractDocumentReferences(history []types.ChatHistoryEntry) []string
	IsRelatedTopic(ctx context.Context, query string, history []types.ChatHistoryEntry, embed func(string) ([]float32, error)) (bool, error)
}

// ChatGateway composes context and calls the chat LLM, with and without
// chat history (spec.md §4.7).
type ChatGateway interface {
	Answer(ctx context.Context, query string, results []*types.SearchResult) (string, error)
	AnswerWithHistory(ctx context.Context, query string, results []*types.SearchResult, history []types.ChatHistoryEntry) (string, error)
	// ExpandQuery reformulates query given chat history (§4.1 step 2).
	ExpandQuery(ctx context.Context, query string, history []types.ChatHistoryEntry) (string, error)
}

// DownloadTokenService mints/verifies short-lived tokens bound to a document.
type DownloadTokenService interface {
	Mint(documentID string, expiration time.Duration) (token string, expiresAt time.Time, err error)
	Verify(token string) (documentID string, err error)
}

// IngestPipeline validates, stores and indexes an uploaded file end-to-end
// (spec.md §4.2).
type IngestPipeline interface {
	Ingest(ctx context.Context, req IngestRequest) (*types.UploadResponse, error)
	DeleteDocument(ctx context.Context, documentID string) error
}

// IngestRequest is the input to IngestPipeline.Ingest.
type IngestRequest struct {
	FileName          string
	ContentType       string
	Size              int64
	Body              io.Reader
	DesiredDocumentID string
	UserMetadata      string
	ChunkSize         int
	ChunkOverlap      int
}

// SearchOrchestrator is the CORE component: end-to-end query handling.
type SearchOrchestrator interface {
	Search(ctx context.Context, req types.SearchRequest) *types.SearchResponse
}
