package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/driftmind/driftmind/internal/logger"
	"github.com/driftmind/driftmind/internal/types"
	elasticsearch8 "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// GatewayV8 implements interfaces.IndexGateway against Elasticsearch 8.x.
type GatewayV8 struct {
	client       *elasticsearch8.Client
	indexName    string
	embeddingDim int
}

// NewGatewayV8 builds a GatewayV8 from addresses and basic-auth credentials.
func NewGatewayV8(addresses []string, username, password, indexName string, embeddingDim int) (*GatewayV8, error) {
	client, err := elasticsearch8.NewClient(elasticsearch8.Config{
		Addresses: addresses,
		Username:  username,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch v8 client: %w", err)
	}
	return &GatewayV8{client: client, indexName: indexName, embeddingDim: embeddingDim}, nil
}

func (g *GatewayV8) Initialize(ctx context.Context) error {
	existsResp, err := esapi.IndicesExistsRequest{Index: []string{g.indexName}}.Do(ctx, g.client)
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	defer existsResp.Body.Close()

	if existsResp.StatusCode == 200 {
		return g.ensureMappingFields(ctx)
	}

	body, err := json.Marshal(buildMapping(g.embeddingDim))
	if err != nil {
		return err
	}
	createResp, err := esapi.IndicesCreateRequest{Index: g.indexName, Body: bytes.NewReader(body)}.Do(ctx, g.client)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer createResp.Body.Close()
	if createResp.IsError() {
		return fmt.Errorf("create index: %s", createResp.String())
	}
	return nil
}

// ensureMappingFields ALTER-adds any schema field missing from the existing
// index's mapping, without touching existing data (spec.md §4.6).
func (g *GatewayV8) ensureMappingFields(ctx context.Context) error {
	body, err := json.Marshal(buildMapping(g.embeddingDim)["mappings"])
	if err != nil {
		return err
	}
	resp, err := esapi.IndicesPutMappingRequest{Index: []string{g.indexName}, Body: bytes.NewReader(body)}.Do(ctx, g.client)
	if err != nil {
		return fmt.Errorf("update mapping: %w", err)
	}
	defer resp.Body.Close()
	if resp.IsError() {
		logger.Warn(ctx, "elasticsearch mapping update reported an error", "response", resp.String())
	}
	return nil
}

func (g *GatewayV8) IndexChunks(ctx context.Context, chunks []types.DocumentChunk) (int, int, error) {
	if len(chunks) == 0 {
		return 0, 0, nil
	}

	var buf bytes.Buffer
	for _, c := range chunks {
		meta := map[string]interface{}{"index": map[string]interface{}{"_index": g.indexName, "_id": c.ID}}
		metaLine, _ := json.Marshal(meta)
		docLine, _ := json.Marshal(chunkToDoc(c))
		buf.Write(metaLine)
		buf.WriteByte('\n')
		buf.Write(docLine)
		buf.WriteByte('\n')
	}

	resp, err := esapi.BulkRequest{Body: bytes.NewReader(buf.Bytes()), Refresh: "true"}.Do(ctx, g.client)
	if err != nil {
		return 0, len(chunks), fmt.Errorf("bulk index: %w", err)
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return 0, len(chunks), fmt.Errorf("bulk index: %s", resp.String())
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				Status int `json:"status"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&bulkResp); err != nil {
		return 0, len(chunks), fmt.Errorf("decode bulk response: %w", err)
	}

	success, failure := 0, 0
	for _, item := range bulkResp.Items {
		if item.Index.Status >= 200 && item.Index.Status < 300 {
			success++
		} else {
			failure++
		}
	}
	return success, failure, nil
}

func (g *GatewayV8) search(ctx context.Context, query map[string]interface{}) ([]types.IndexHit, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := esapi.SearchRequest{Index: []string{g.indexName}, Body: bytes.NewReader(body)}.Do(ctx, g.client)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return nil, fmt.Errorf("search: %s", resp.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]types.IndexHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, types.IndexHit{Chunk: h.Source.toChunk(), Score: h.Score, VectorScore: h.Score})
	}
	return hits, nil
}

func (g *GatewayV8) KeywordSearch(ctx context.Context, query string, top int) ([]types.IndexHit, error) {
	return g.search(ctx, keywordQuery(query, top, ""))
}

func (g *GatewayV8) VectorSearch(ctx context.Context, vector []float32, top int) ([]types.IndexHit, error) {
	return g.search(ctx, vectorQuery(vector, top, ""))
}

func (g *GatewayV8) HybridSearch(ctx context.Context, query string, vector []float32, top int, filterDocumentID string) ([]types.IndexHit, error) {
	fetch := top * 3
	if fetch > 100 {
		fetch = 100
	}
	return g.search(ctx, hybridQuery(query, vector, fetch, filterDocumentID))
}

func (g *GatewayV8) GetChunk0s(ctx context.Context, documentIDs []string) (map[string]types.DocumentChunk, error) {
	if len(documentIDs) == 0 {
		return map[string]types.DocumentChunk{}, nil
	}
	hits, err := g.search(ctx, chunk0sQuery(documentIDs))
	if err != nil {
		return nil, err
	}
	result := make(map[string]types.DocumentChunk, len(hits))
	for _, h := range hits {
		result[h.Chunk.DocumentID] = h.Chunk
	}
	return result, nil
}

func (g *GatewayV8) DocumentExists(ctx context.Context, documentID string) (bool, error) {
	count, err := g.GetChunkCount(ctx, documentID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (g *GatewayV8) DeleteDocument(ctx context.Context, documentID string) (bool, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{"term": map[string]interface{}{"document_id": documentID}},
	})
	resp, err := g.client.DeleteByQuery([]string{g.indexName}, bytes.NewReader(body), func(r *esapi.DeleteByQueryRequest) {
		r.Context = ctx
	})
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	defer resp.Body.Close()
	return !resp.IsError(), nil
}

func (g *GatewayV8) GetChunkCount(ctx context.Context, documentID string) (int, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{"term": map[string]interface{}{"document_id": documentID}},
	})
	resp, err := esapi.CountRequest{Index: []string{g.indexName}, Body: bytes.NewReader(body)}.Do(ctx, g.client)
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	defer resp.Body.Close()
	var parsed struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, err
	}
	return parsed.Count, nil
}

func (g *GatewayV8) GetLastUpdated(ctx context.Context, documentID string) (time.Time, error) {
	chunks, err := g.GetTopChunks(ctx, documentID, 1)
	if err != nil || len(chunks) == 0 {
		return time.Time{}, err
	}
	return chunks[0].CreatedAt, nil
}

func (g *GatewayV8) GetTopChunks(ctx context.Context, documentID string, n int) ([]types.DocumentChunk, error) {
	hits, err := g.search(ctx, map[string]interface{}{
		"size":  n,
		"query": map[string]interface{}{"term": map[string]interface{}{"document_id": documentID}},
		"sort":  []map[string]interface{}{{"chunk_index": "asc"}},
	})
	if err != nil {
		return nil, err
	}
	chunks := make([]types.DocumentChunk, 0, len(hits))
	for _, h := range hits {
		chunks = append(chunks, h.Chunk)
	}
	return chunks, nil
}

func (g *GatewayV8) GetAdjacentChunks(ctx context.Context, documentID string, chunkIndex, k int) ([]types.DocumentChunk, error) {
	low, high := chunkIndex-k, chunkIndex+k
	hits, err := g.search(ctx, map[string]interface{}{
		"size": 2*k + 1,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []map[string]interface{}{
					{"term": map[string]interface{}{"document_id": documentID}},
					{"range": map[string]interface{}{"chunk_index": map[string]interface{}{"gte": low, "lte": high}}},
				},
			},
		},
		"sort": []map[string]interface{}{{"chunk_index": "asc"}},
	})
	if err != nil {
		return nil, err
	}
	chunks := make([]types.DocumentChunk, 0, len(hits))
	for _, h := range hits {
		chunks = append(chunks, h.Chunk)
	}
	return chunks, nil
}
