package types

import "time"

// UploadResponse is returned by Ingest.Ingest (spec.md §4.2).
type UploadResponse struct {
	Success       bool   `json:"success"`
	DocumentID    string `json:"document_id,omitempty"`
	ChunksCreated int    `json:"chunks_created"`
	Message       string `json:"message,omitempty"`
	// TaskID is set instead of DocumentID/ChunksCreated when the upload was
	// queued for async processing (SPEC_FULL §4.2 supplement).
	TaskID string `json:"task_id,omitempty"`
}

// IngestTaskStatus is the state of a queued async ingest task.
type IngestTaskStatus struct {
	TaskID    string    `json:"task_id"`
	State     string    `json:"state"` // pending | processing | succeeded | failed
	Result    *UploadResponse `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentSummary is one row of GET /documents.
type DocumentSummary struct {
	DocumentID       string    `json:"document_id"`
	OriginalFileName string    `json:"original_file_name"`
	ContentType      string    `json:"content_type"`
	FileSizeBytes    int64     `json:"file_size_bytes"`
	ChunkCount       int       `json:"chunk_count"`
	LastUpdated      time.Time `json:"last_updated"`
	SampleChunks     []string  `json:"sample_chunks,omitempty"`
}

// DocumentListResponse is the response to GET/POST /documents.
type DocumentListResponse struct {
	Documents []DocumentSummary `json:"documents"`
	Total     int               `json:"total"`
}
