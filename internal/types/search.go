package types

// ChatRole is the role of one ChatHistoryEntry.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatHistoryEntry is one turn of prior conversation, oldest-to-newest.
type ChatHistoryEntry struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// SearchRequest is the input to Orchestrator.Search (spec.md §4.1).
type SearchRequest struct {
	Query                string             `json:"query" binding:"required"`
	MaxResults           int                `json:"max_results"`
	UseSemanticSearch    bool               `json:"use_semantic_search"`
	DocumentID           string             `json:"document_id,omitempty"`
	EnableQueryExpansion bool               `json:"enable_query_expansion"`
	IncludeAnswer        bool               `json:"include_answer"`
	ChatHistory          []ChatHistoryEntry `json:"chat_history,omitempty"`
}

// SearchResult is the transient, per-request projection of a matched chunk.
type SearchResult struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	Metadata   string    `json:"metadata,omitempty"`

	Score       float64 `json:"score"`        // combined, in [0, ~2.5] after boosts
	VectorScore float64 `json:"vector_score"` // raw backend score

	// Hydrated chunk-0 metadata (§4.1 step 5).
	OriginalFileName    string `json:"original_file_name,omitempty"`
	ContentType         string `json:"content_type,omitempty"`
	FileSizeBytes       int64  `json:"file_size_bytes,omitempty"`
	BlobPath            string `json:"blob_path,omitempty"`
	BlobContainer       string `json:"blob_container,omitempty"`
	TextContentBlobPath string `json:"text_content_blob_path,omitempty"`
}

// SearchResponse is the output of Orchestrator.Search.
type SearchResponse struct {
	Query          string         `json:"query"`
	ExpandedQuery  string         `json:"expanded_query,omitempty"`
	Results        []*SearchResult `json:"results"`
	GeneratedAnswer string         `json:"generated_answer,omitempty"`
	TotalResults   int            `json:"total_results"`
	Success        bool           `json:"success"`
	Message        string         `json:"message,omitempty"`
}

// NoInformationFoundMessage is the fixed sentence returned verbatim when
// retrieval yields no results and no usable history (Glossary).
const NoInformationFoundMessage = "I could not find any relevant information to answer this question. Please try rephrasing your query or asking about a different topic."
