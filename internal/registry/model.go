// Package registry maintains a lightweight, queryable summary of each
// ingested document (spec.md §3's "registry.DocumentRecord" optimization
// cache; the Index Gateway remains the source of truth for chunk data).
// Grounded on the same gorm+postgres+golang-migrate stack as
// internal/index/postgres.
package registry

import "time"

// DocumentRecord is the gorm model backing GET /documents, written by ingest
// and by document deletion; nothing rebuilds or repairs it from the index, so
// it is never authoritative on its own.
type DocumentRecord struct {
	DocumentID       string `gorm:"primaryKey;column:document_id"`
	OriginalFileName string `gorm:"column:original_file_name"`
	ContentType      string `gorm:"column:content_type"`
	FileSizeBytes    int64  `gorm:"column:file_size_bytes"`
	ChunkCount       int    `gorm:"column:chunk_count"`
	LastUpdated      time.Time `gorm:"column:last_updated;index"`
	SampleChunk0     string `gorm:"column:sample_chunk0"`
}

func (DocumentRecord) TableName() string { return "document_registry" }
