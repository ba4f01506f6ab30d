// Package qdrant implements the Index Gateway (spec.md §4.6) against Qdrant,
// adapting the teacher's qdrantRepository/QdrantVectorEmbedding shape
// (internal/application/repository/retriever/qdrant/structs.go) from its
// knowledge-base point payload to this spec's DocumentChunk schema.
package qdrant

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/driftmind/driftmind/internal/types"
	"github.com/qdrant/go-client/qdrant"
)

// chunkPayload is the Qdrant point payload shape for one DocumentChunk,
// generalizing the teacher's QdrantVectorEmbedding struct to this domain.
type chunkPayload struct {
	DocumentID          string `json:"document_id"`
	ChunkIndex           int    `json:"chunk_index"`
	Content              string `json:"content"`
	Metadata             string `json:"metadata"`
	CreatedAt            string `json:"created_at"`
	OriginalFileName     string `json:"original_file_name"`
	ContentType          string `json:"content_type"`
	FileSizeBytes        int64  `json:"file_size_bytes"`
	BlobPath             string `json:"blob_path"`
	BlobContainer        string `json:"blob_container"`
	TextContentBlobPath  string `json:"text_content_blob_path"`
}

// Gateway implements interfaces.IndexGateway against Qdrant, grounded on the
// teacher's qdrantRepository struct (client + collection name +
// initialized-collections cache).
type Gateway struct {
	client                 *qdrant.Client
	collectionName         string
	embeddingDim            int
	initializedCollections sync.Map
}

// NewGateway builds a Gateway from host/port/API-key.
func NewGateway(host string, port int, apiKey, collectionName string, embeddingDim int) (*Gateway, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}
	return &Gateway{client: client, collectionName: collectionName, embeddingDim: embeddingDim}, nil
}

func (g *Gateway) Initialize(ctx context.Context) error {
	if _, ok := g.initializedCollections.Load(g.embeddingDim); ok {
		return nil
	}

	exists, err := g.client.CollectionExists(ctx, g.collectionName)
	if err != nil {
		return fmt.Errorf("check collection exists: %w", err)
	}
	if !exists {
		err = g.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: g.collectionName,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(g.embeddingDim),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("create collection: %w", err)
		}
	}
	g.initializedCollections.Store(g.embeddingDim, true)
	return nil
}

func toPayload(c types.DocumentChunk) map[string]*qdrant.Value {
	p := chunkPayload{
		DocumentID:          c.DocumentID,
		ChunkIndex:          c.ChunkIndex,
		Content:             c.Content,
		Metadata:            c.Metadata,
		CreatedAt:           c.CreatedAt.Format(time.RFC3339),
		OriginalFileName:    c.OriginalFileName,
		ContentType:         c.ContentType,
		FileSizeBytes:       c.FileSizeBytes,
		BlobPath:            c.BlobPath,
		BlobContainer:       c.BlobContainer,
		TextContentBlobPath: c.TextContentBlobPath,
	}
	raw, _ := json.Marshal(p)
	var m map[string]interface{}
	_ = json.Unmarshal(raw, &m)

	out := make(map[string]*qdrant.Value, len(m)+1)
	out["id"] = qdrant.NewValueString(c.ID)
	for k, v := range m {
		switch tv := v.(type) {
		case string:
			out[k] = qdrant.NewValueString(tv)
		case float64:
			out[k] = qdrant.NewValueDouble(tv)
		}
	}
	return out
}

func fromPayload(id string, payload map[string]*qdrant.Value, vector []float32) types.DocumentChunk {
	get := func(key string) string {
		if v, ok := payload[key]; ok {
			return v.GetStringValue()
		}
		return ""
	}
	getInt := func(key string) int {
		if v, ok := payload[key]; ok {
			return int(v.GetDoubleValue())
		}
		return 0
	}
	createdAt, _ := time.Parse(time.RFC3339, get("created_at"))

	return types.DocumentChunk{
		ID:                  get("id"),
		DocumentID:          get("document_id"),
		ChunkIndex:          getInt("chunk_index"),
		Content:             get("content"),
		Embedding:           vector,
		Metadata:            get("metadata"),
		CreatedAt:           createdAt,
		OriginalFileName:    get("original_file_name"),
		ContentType:         get("content_type"),
		FileSizeBytes:       int64(getInt("file_size_bytes")),
		BlobPath:            get("blob_path"),
		BlobContainer:       get("blob_container"),
		TextContentBlobPath: get("text_content_blob_path"),
	}
}

func (g *Gateway) IndexChunks(ctx context.Context, chunks []types.DocumentChunk) (int, int, error) {
	if len(chunks) == 0 {
		return 0, 0, nil
	}
	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for _, c := range chunks {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(c.ID),
			Vectors: qdrant.NewVectors(c.Embedding...),
			Payload: toPayload(c),
		})
	}

	_, err := g.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: g.collectionName,
		Points:         points,
	})
	if err != nil {
		return 0, len(chunks), fmt.Errorf("upsert points: %w", err)
	}
	return len(chunks), 0, nil
}

func (g *Gateway) VectorSearch(ctx context.Context, vector []float32, top int) ([]types.IndexHit, error) {
	return g.hybridInternal(ctx, "", vector, top, "")
}

// KeywordSearch always returns an error: Qdrant has no native lexical index.
// HybridSearch on this backend runs vector search only.
func (g *Gateway) KeywordSearch(ctx context.Context, query string, top int) ([]types.IndexHit, error) {
	return nil, fmt.Errorf("qdrant gateway does not support standalone keyword search; use HybridSearch")
}

func (g *Gateway) HybridSearch(ctx context.Context, query string, vector []float32, top int, filterDocumentID string) ([]types.IndexHit, error) {
	fetch := top * 3
	if fetch > 100 {
		fetch = 100
	}
	return g.hybridInternal(ctx, query, vector, fetch, filterDocumentID)
}

func (g *Gateway) hybridInternal(ctx context.Context, query string, vector []float32, top int, filterDocumentID string) ([]types.IndexHit, error) {
	req := &qdrant.QueryPoints{
		CollectionName: g.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          ptrUint64(uint64(top)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	}
	if filterDocumentID != "" {
		req.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("document_id", filterDocumentID),
			},
		}
	}

	resp, err := g.client.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}

	hits := make([]types.IndexHit, 0, len(resp))
	for _, point := range resp {
		var vec []float32
		if point.GetVectors() != nil {
			vec = point.GetVectors().GetVector().GetData()
		}
		chunk := fromPayload(point.GetId().GetUuid(), point.GetPayload(), vec)
		hits = append(hits, types.IndexHit{Chunk: chunk, Score: float64(point.GetScore()), VectorScore: float64(point.GetScore())})
	}
	return hits, nil
}

func ptrUint64(v uint64) *uint64 { return &v }

func (g *Gateway) GetChunk0s(ctx context.Context, documentIDs []string) (map[string]types.DocumentChunk, error) {
	result := make(map[string]types.DocumentChunk, len(documentIDs))
	for _, docID := range documentIDs {
		points, err := g.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: g.collectionName,
			Filter: &qdrant.Filter{
				Must: []*qdrant.Condition{
					qdrant.NewMatch("document_id", docID),
					qdrant.NewMatchInt("chunk_index", 0),
				},
			},
			Limit:       ptrUint32(1),
			WithPayload: qdrant.NewWithPayload(true),
			WithVectors: qdrant.NewWithVectors(true),
		})
		if err != nil {
			return nil, fmt.Errorf("scroll chunk0 for %s: %w", docID, err)
		}
		if len(points) == 0 {
			continue
		}
		var vec []float32
		if points[0].GetVectors() != nil {
			vec = points[0].GetVectors().GetVector().GetData()
		}
		result[docID] = fromPayload(points[0].GetId().GetUuid(), points[0].GetPayload(), vec)
	}
	return result, nil
}

func ptrUint32(v uint32) *uint32 { return &v }

func (g *Gateway) DocumentExists(ctx context.Context, documentID string) (bool, error) {
	count, err := g.GetChunkCount(ctx, documentID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (g *Gateway) DeleteDocument(ctx context.Context, documentID string) (bool, error) {
	_, err := g.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: g.collectionName,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("document_id", documentID)},
		}),
	})
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	return true, nil
}

func (g *Gateway) GetChunkCount(ctx context.Context, documentID string) (int, error) {
	count, err := g.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: g.collectionName,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("document_id", documentID)},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("count points: %w", err)
	}
	return int(count), nil
}

func (g *Gateway) GetLastUpdated(ctx context.Context, documentID string) (time.Time, error) {
	chunks, err := g.GetTopChunks(ctx, documentID, 1)
	if err != nil || len(chunks) == 0 {
		return time.Time{}, err
	}
	return chunks[0].CreatedAt, nil
}

func (g *Gateway) GetTopChunks(ctx context.Context, documentID string, n int) ([]types.DocumentChunk, error) {
	points, err := g.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: g.collectionName,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("document_id", documentID)},
		},
		Limit:       ptrUint32(uint32(n)),
		WithPayload: qdrant.NewWithPayload(true),
		WithVectors: qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("scroll top chunks: %w", err)
	}
	chunks := make([]types.DocumentChunk, 0, len(points))
	for _, p := range points {
		var vec []float32
		if p.GetVectors() != nil {
			vec = p.GetVectors().GetVector().GetData()
		}
		chunks = append(chunks, fromPayload(p.GetId().GetUuid(), p.GetPayload(), vec))
	}
	return chunks, nil
}

func (g *Gateway) GetAdjacentChunks(ctx context.Context, documentID string, chunkIndex, k int) ([]types.DocumentChunk, error) {
	all, err := g.GetTopChunks(ctx, documentID, 10000)
	if err != nil {
		return nil, err
	}
	low, high := chunkIndex-k, chunkIndex+k
	result := make([]types.DocumentChunk, 0, 2*k+1)
	for _, c := range all {
		if c.ChunkIndex >= low && c.ChunkIndex <= high {
			result = append(result, c)
		}
	}
	return result, nil
}
