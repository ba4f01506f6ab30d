// Package postgres implements the Index Gateway (spec.md §4.6) against
// Postgres + pgvector, grounded on the teacher's gorm.io/gorm +
// gorm.io/driver/postgres + pgvector/pgvector-go go.mod stack and
// golang-migrate/migrate/v4-driven DDL (also backing internal/registry).
package postgres

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// chunkRow is the gorm model backing the chunk table; field names follow
// the declarative ChunkSchema (spec.md §3).
type chunkRow struct {
	ID         string `gorm:"primaryKey;column:id"`
	DocumentID string `gorm:"column:document_id;index"`
	ChunkIndex int    `gorm:"column:chunk_index;index"`

	Content   string          `gorm:"column:content"`
	Embedding pgvector.Vector `gorm:"column:embedding;type:vector"`
	Metadata  string          `gorm:"column:metadata"`
	CreatedAt time.Time       `gorm:"column:created_at;index"`

	OriginalFileName    string `gorm:"column:original_file_name"`
	ContentType         string `gorm:"column:content_type"`
	FileSizeBytes       int64  `gorm:"column:file_size_bytes"`
	BlobPath            string `gorm:"column:blob_path"`
	BlobContainer       string `gorm:"column:blob_container"`
	TextContentBlobPath string `gorm:"column:text_content_blob_path"`
}

func (chunkRow) TableName() string { return "document_chunks" }
