package postgres

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/driftmind/driftmind/internal/migrate"
	"github.com/driftmind/driftmind/internal/types"
	"github.com/pgvector/pgvector-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Gateway implements interfaces.IndexGateway against Postgres + pgvector.
type Gateway struct {
	db           *gorm.DB
	dsn          string
	embeddingDim int
}

// NewGateway opens a gorm connection to dsn. Schema creation happens in
// Initialize, run once at startup via internal/migrate.
func NewGateway(dsn string, embeddingDim int) (*Gateway, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &Gateway{db: db, dsn: dsn, embeddingDim: embeddingDim}, nil
}

// Initialize applies document_chunks's migrations (pgvector extension,
// table, hnsw index) via golang-migrate.
func (g *Gateway) Initialize(ctx context.Context) error {
	return migrate.Run(g.dsn, migrations, "migrations")
}

func toRow(c types.DocumentChunk) chunkRow {
	return chunkRow{
		ID:                  c.ID,
		DocumentID:          c.DocumentID,
		ChunkIndex:          c.ChunkIndex,
		Content:             c.Content,
		Embedding:           pgvector.NewVector(c.Embedding),
		Metadata:            c.Metadata,
		CreatedAt:           c.CreatedAt,
		OriginalFileName:    c.OriginalFileName,
		ContentType:         c.ContentType,
		FileSizeBytes:       c.FileSizeBytes,
		BlobPath:            c.BlobPath,
		BlobContainer:       c.BlobContainer,
		TextContentBlobPath: c.TextContentBlobPath,
	}
}

func (r chunkRow) toChunk() types.DocumentChunk {
	return types.DocumentChunk{
		ID:                  r.ID,
		DocumentID:          r.DocumentID,
		ChunkIndex:          r.ChunkIndex,
		Content:             r.Content,
		Embedding:           r.Embedding.Slice(),
		Metadata:            r.Metadata,
		CreatedAt:           r.CreatedAt,
		OriginalFileName:    r.OriginalFileName,
		ContentType:         r.ContentType,
		FileSizeBytes:       r.FileSizeBytes,
		BlobPath:            r.BlobPath,
		BlobContainer:       r.BlobContainer,
		TextContentBlobPath: r.TextContentBlobPath,
	}
}

func (g *Gateway) IndexChunks(ctx context.Context, chunks []types.DocumentChunk) (int, int, error) {
	if len(chunks) == 0 {
		return 0, 0, nil
	}
	rows := make([]chunkRow, 0, len(chunks))
	for _, c := range chunks {
		rows = append(rows, toRow(c))
	}

	err := g.db.WithContext(ctx).Save(&rows).Error
	if err != nil {
		return 0, len(chunks), fmt.Errorf("upsert chunks: %w", err)
	}
	return len(chunks), 0, nil
}

func (g *Gateway) KeywordSearch(ctx context.Context, query string, top int) ([]types.IndexHit, error) {
	var rows []chunkRow
	err := g.db.WithContext(ctx).
		Where("to_tsvector('english', content) @@ plainto_tsquery('english', ?)", query).
		Order(gorm.Expr("ts_rank(to_tsvector('english', content), plainto_tsquery('english', ?)) DESC", query)).
		Limit(top).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	return rowsToHits(rows), nil
}

func (g *Gateway) VectorSearch(ctx context.Context, vector []float32, top int) ([]types.IndexHit, error) {
	vec := pgvector.NewVector(vector)
	var rows []chunkRow
	err := g.db.WithContext(ctx).
		Order(gorm.Expr("embedding <=> ?", vec)).
		Limit(top).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return rowsToHits(rows), nil
}

func (g *Gateway) HybridSearch(ctx context.Context, query string, vector []float32, top int, filterDocumentID string) ([]types.IndexHit, error) {
	fetch := top * 3
	if fetch > 100 {
		fetch = 100
	}
	vec := pgvector.NewVector(vector)

	tx := g.db.WithContext(ctx).Model(&chunkRow{}).
		Select("*, (1 - (embedding <=> ?)) + ts_rank(to_tsvector('english', content), plainto_tsquery('english', ?)) AS fusion_score", vec, query).
		Order("fusion_score DESC").
		Limit(fetch)
	if filterDocumentID != "" {
		tx = tx.Where("document_id = ?", filterDocumentID)
	}

	type rowWithScore struct {
		chunkRow
		FusionScore float64
	}
	var rows []rowWithScore
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("hybrid search: %w", err)
	}

	hits := make([]types.IndexHit, 0, len(rows))
	for _, r := range rows {
		hits = append(hits, types.IndexHit{Chunk: r.chunkRow.toChunk(), Score: r.FusionScore, VectorScore: r.FusionScore})
	}
	return hits, nil
}

func rowsToHits(rows []chunkRow) []types.IndexHit {
	hits := make([]types.IndexHit, 0, len(rows))
	for _, r := range rows {
		hits = append(hits, types.IndexHit{Chunk: r.toChunk()})
	}
	return hits
}

func (g *Gateway) GetChunk0s(ctx context.Context, documentIDs []string) (map[string]types.DocumentChunk, error) {
	if len(documentIDs) == 0 {
		return map[string]types.DocumentChunk{}, nil
	}
	var rows []chunkRow
	err := g.db.WithContext(ctx).
		Where("document_id IN ? AND chunk_index = 0", documentIDs).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("get chunk0s: %w", err)
	}
	result := make(map[string]types.DocumentChunk, len(rows))
	for _, r := range rows {
		result[r.DocumentID] = r.toChunk()
	}
	return result, nil
}

func (g *Gateway) DocumentExists(ctx context.Context, documentID string) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&chunkRow{}).Where("document_id = ?", documentID).Count(&count).Error
	return count > 0, err
}

func (g *Gateway) DeleteDocument(ctx context.Context, documentID string) (bool, error) {
	err := g.db.WithContext(ctx).Where("document_id = ?", documentID).Delete(&chunkRow{}).Error
	return err == nil, err
}

func (g *Gateway) GetChunkCount(ctx context.Context, documentID string) (int, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&chunkRow{}).Where("document_id = ?", documentID).Count(&count).Error
	return int(count), err
}

func (g *Gateway) GetLastUpdated(ctx context.Context, documentID string) (time.Time, error) {
	var row chunkRow
	err := g.db.WithContext(ctx).Where("document_id = ?", documentID).Order("created_at DESC").First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return row.CreatedAt, nil
}

func (g *Gateway) GetTopChunks(ctx context.Context, documentID string, n int) ([]types.DocumentChunk, error) {
	var rows []chunkRow
	err := g.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("chunk_index ASC").
		Limit(n).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	chunks := make([]types.DocumentChunk, 0, len(rows))
	for _, r := range rows {
		chunks = append(chunks, r.toChunk())
	}
	return chunks, nil
}

func (g *Gateway) GetAdjacentChunks(ctx context.Context, documentID string, chunkIndex, k int) ([]types.DocumentChunk, error) {
	var rows []chunkRow
	err := g.db.WithContext(ctx).
		Where("document_id = ? AND chunk_index BETWEEN ? AND ?", documentID, chunkIndex-k, chunkIndex+k).
		Order("chunk_index ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	chunks := make([]types.DocumentChunk, 0, len(rows))
	for _, r := range rows {
		chunks = append(chunks, r.toChunk())
	}
	return chunks, nil
}
