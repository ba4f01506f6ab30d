package registry

import (
	"context"
	"embed"
	"fmt"

	"github.com/driftmind/driftmind/internal/migrate"
	"github.com/driftmind/driftmind/internal/types"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Registry caches document summaries for fast listing, avoiding a full
// index scan on every GET /documents call.
type Registry struct {
	db *gorm.DB
}

// New opens a registry backed by the given gorm connection and dsn (shared
// with, or separate from, internal/index/postgres's connection), applying
// document_registry's migrations via golang-migrate.
func New(db *gorm.DB, dsn string) (*Registry, error) {
	if err := migrate.Run(dsn, migrations, "migrations"); err != nil {
		return nil, fmt.Errorf("migrate document_registry: %w", err)
	}
	return &Registry{db: db}, nil
}

// Upsert records or refreshes a document's summary after a successful ingest.
func (r *Registry) Upsert(ctx context.Context, chunk0 types.DocumentChunk, chunkCount int, sampleContent string) error {
	record := DocumentRecord{
		DocumentID:       chunk0.DocumentID,
		OriginalFileName: chunk0.OriginalFileName,
		ContentType:      chunk0.ContentType,
		FileSizeBytes:    chunk0.FileSizeBytes,
		ChunkCount:       chunkCount,
		LastUpdated:      chunk0.CreatedAt,
		SampleChunk0:     sampleContent,
	}
	return r.db.WithContext(ctx).Save(&record).Error
}

// Delete removes a document's summary (called alongside index deletion).
func (r *Registry) Delete(ctx context.Context, documentID string) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentID).Delete(&DocumentRecord{}).Error
}

// List returns every registered document summary, most-recently-updated first.
func (r *Registry) List(ctx context.Context) ([]types.DocumentSummary, error) {
	var records []DocumentRecord
	if err := r.db.WithContext(ctx).Order("last_updated DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	summaries := make([]types.DocumentSummary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, types.DocumentSummary{
			DocumentID:       rec.DocumentID,
			OriginalFileName: rec.OriginalFileName,
			ContentType:      rec.ContentType,
			FileSizeBytes:    rec.FileSizeBytes,
			ChunkCount:       rec.ChunkCount,
			LastUpdated:      rec.LastUpdated,
			SampleChunks:     []string{rec.SampleChunk0},
		})
	}
	return summaries, nil
}
